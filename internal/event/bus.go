// Package event provides an explicitly owned, synchronous publish/subscribe bus.
//
// A Bus is created by whoever owns the game's lifetime and passed to the
// components that publish or listen. Topics are Go types: subscribers register
// a func(T) and receive every value of type T published afterwards, in
// publish order and in subscription order.
package event

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bus fans out published values to typed subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]*Subscription
	log      *zap.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for subscription bookkeeping.
func WithLogger(log *zap.Logger) Option {
	return func(b *Bus) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[reflect.Type][]*Subscription),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is the handle returned by Subscribe. Cancel releases it.
type Subscription struct {
	id     string
	topic  reflect.Type
	bus    *Bus
	fn     any
	active atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Topic returns the name of the subscribed payload type.
func (s *Subscription) Topic() string {
	if s == nil || s.topic == nil {
		return ""
	}
	return s.topic.String()
}

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool {
	return s != nil && s.active.Load()
}

// Cancel stops delivery to this subscription. It is safe to call more than once,
// on a nil handle, and from inside a handler.
func (s *Subscription) Cancel() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	s.bus.remove(s)
}

// Subscribe registers fn for every published value of type T.
// It returns nil when b is nil.
func Subscribe[T any](b *Bus, fn func(T)) *Subscription {
	if b == nil || fn == nil {
		return nil
	}

	sub := &Subscription{
		id:    uuid.NewString(),
		topic: reflect.TypeFor[T](),
		bus:   b,
		fn:    fn,
	}
	sub.active.Store(true)

	b.mu.Lock()
	b.handlers[sub.topic] = append(b.handlers[sub.topic], sub)
	b.mu.Unlock()

	b.log.Debug("subscribed", zap.String("topic", sub.Topic()), zap.String("id", sub.id))
	return sub
}

// Publish delivers ev synchronously to every active subscriber of T.
// Publishing on a nil bus is a no-op.
func Publish[T any](b *Bus, ev T) {
	if b == nil {
		return
	}

	b.mu.RLock()
	subs := slices.Clone(b.handlers[reflect.TypeFor[T]()])
	b.mu.RUnlock()

	for _, sub := range subs {
		// A handler earlier in this delivery may have cancelled a later one.
		if !sub.active.Load() {
			continue
		}
		sub.fn.(func(T))(ev)
	}
}

// SubscriberCount returns the number of active subscribers for T.
func SubscriberCount[T any](b *Bus) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[reflect.TypeFor[T]()])
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	subs := b.handlers[sub.topic]
	if i := slices.Index(subs, sub); i >= 0 {
		// Copy so snapshots taken by in-flight deliveries stay intact.
		b.handlers[sub.topic] = slices.Delete(slices.Clone(subs), i, i+1)
	}
	if len(b.handlers[sub.topic]) == 0 {
		delete(b.handlers, sub.topic)
	}
	b.mu.Unlock()

	b.log.Debug("unsubscribed", zap.String("topic", sub.Topic()), zap.String("id", sub.id))
}

// Scope groups subscriptions that share a lifetime. Close cancels all of them.
type Scope struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Add tracks sub in the scope and returns it.
func (s *Scope) Add(sub *Subscription) *Subscription {
	if sub == nil {
		return nil
	}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub
}

// Len returns the number of tracked subscriptions.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close cancels every tracked subscription.
func (s *Scope) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}
