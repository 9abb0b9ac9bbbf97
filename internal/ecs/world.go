// Package ecs adapts the donburi entity-component store to the game's needs:
// a creation sequence for deterministic ordering, nil-safe component access
// and singleton lookup.
package ecs

import (
	"cmp"
	"slices"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeoncrawl/internal/event"
)

// Entity is an opaque identifier issued by the store.
type Entity = donburi.Entity

// Null is the sentinel for "no entity".
var Null = donburi.Null

// World owns a donburi world and stamps every entity it creates with a
// monotonically increasing sequence number.
type World struct {
	w   donburi.World
	seq uint64
	bus *event.Bus
	log *zap.Logger
}

// Option configures a World.
type Option func(*World)

// WithBus publishes entity lifecycle events on bus.
func WithBus(bus *event.Bus) Option {
	return func(w *World) { w.bus = bus }
}

// WithLogger sets the world's logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWorld creates an empty world.
func NewWorld(opts ...Option) *World {
	w := &World{
		w:   donburi.NewWorld(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Donburi exposes the underlying store for queries the adapter does not cover.
func (w *World) Donburi() donburi.World {
	return w.w
}

// Spawn creates an entity with the given components plus its creation stamp.
// kind is informational and travels with the EntityCreated event.
func (w *World) Spawn(kind string, components ...donburi.IComponentType) Entity {
	components = append(components, SpawnComponent)
	e := w.w.Create(components...)

	w.seq++
	SpawnComponent.SetValue(w.w.Entry(e), Spawn{Seq: w.seq, Kind: kind})

	w.log.Debug("entity spawned", zap.String("kind", kind), zap.Uint64("seq", w.seq))
	event.Publish(w.bus, event.EntityCreated{Entity: e, Kind: kind})
	return e
}

// Destroy removes e from the store. It returns false if e was not alive.
func (w *World) Destroy(e Entity) bool {
	if !w.Alive(e) {
		return false
	}
	w.w.Remove(e)
	event.Publish(w.bus, event.EntityDestroyed{Entity: e})
	return true
}

// Alive reports whether e refers to a live entity.
func (w *World) Alive(e Entity) bool {
	return e != Null && w.w.Valid(e)
}

// Has reports whether e is alive and carries component c.
func (w *World) Has(e Entity, c donburi.IComponentType) bool {
	if !w.Alive(e) {
		return false
	}
	return w.w.Entry(e).HasComponent(c)
}

// Seq returns e's creation sequence number, or 0 for unknown entities.
func (w *World) Seq(e Entity) uint64 {
	if s, ok := Get(w, e, SpawnComponent); ok {
		return s.Seq
	}
	return 0
}

// Kind returns the kind e was spawned with.
func (w *World) Kind(e Entity) string {
	if s, ok := Get(w, e, SpawnComponent); ok {
		return s.Kind
	}
	return ""
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.w.Len()
}

// Get returns e's component c, or false if e is gone or lacks it.
func Get[T any](w *World, e Entity, c *donburi.ComponentType[T]) (*T, bool) {
	if !w.Has(e, c) {
		return nil, false
	}
	return c.Get(w.w.Entry(e)), true
}

// Set overwrites e's component c. It returns false if e is gone or lacks it.
func Set[T any](w *World, e Entity, c *donburi.ComponentType[T], v T) bool {
	if !w.Has(e, c) {
		return false
	}
	c.SetValue(w.w.Entry(e), v)
	return true
}

// Add attaches component c to e with value v, replacing any existing value.
func Add[T any](w *World, e Entity, c *donburi.ComponentType[T], v T) bool {
	if !w.Alive(e) {
		return false
	}
	entry := w.w.Entry(e)
	if !entry.HasComponent(c) {
		entry.AddComponent(c)
	}
	c.SetValue(entry, v)
	return true
}

// Entities returns every live entity carrying all of comps, ordered by
// creation sequence.
func Entities(w *World, comps ...donburi.IComponentType) []Entity {
	type stamped struct {
		e   Entity
		seq uint64
	}

	var found []stamped
	query.NewQuery(filter.Contains(comps...)).Each(w.w, func(entry *donburi.Entry) {
		var seq uint64
		if entry.HasComponent(SpawnComponent) {
			seq = SpawnComponent.Get(entry).Seq
		}
		found = append(found, stamped{e: entry.Entity(), seq: seq})
	})

	slices.SortStableFunc(found, func(a, b stamped) int {
		return cmp.Compare(a.seq, b.seq)
	})

	out := make([]Entity, len(found))
	for i, s := range found {
		out[i] = s.e
	}
	return out
}

// Each calls fn for every entity holding c, in creation order. fn may mutate
// the component through the pointer but must not create or destroy entities.
func Each[T any](w *World, c *donburi.ComponentType[T], fn func(Entity, *T)) {
	for _, e := range Entities(w, c) {
		fn(e, c.Get(w.w.Entry(e)))
	}
}

// First returns the earliest-created entity holding c.
func First(w *World, c donburi.IComponentType) (Entity, bool) {
	es := Entities(w, c)
	if len(es) == 0 {
		return Null, false
	}
	return es[0], true
}

// Singleton returns the single entity holding c, creating it with the zero
// value when absent.
func Singleton[T any](w *World, c *donburi.ComponentType[T], kind string) (Entity, *T) {
	if e, ok := First(w, c); ok {
		return e, c.Get(w.w.Entry(e))
	}
	e := w.Spawn(kind, c)
	return e, c.Get(w.w.Entry(e))
}
