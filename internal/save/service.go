// Package save persists game snapshots as JSON documents, one file per slot.
//
// Writes are atomic: the document is written to a temporary file in the
// save directory and renamed over the slot file, so an interrupted save
// never damages the previous one. Loads never modify the file, even when it
// is corrupt. Every failure is returned as *Error and reported on the event
// bus as event.SaveLoadError.
package save

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/samdwyer/dungeoncrawl/internal/event"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
)

// DefaultSlot is the slot used when none is configured.
const DefaultSlot = "quicksave"

const fileMode = 0o644

// Service reads and writes a single save slot.
type Service struct {
	dir    string
	slot   string
	path   string
	bus    *event.Bus
	log    *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
	allow  func() bool

	// mu serializes file access for the slot; loads is keyed by path so
	// concurrent loads share one read.
	mu    sync.Mutex
	loads singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithSlot selects the slot name. The file is <dir>/<slot>.json.
func WithSlot(slot string) Option {
	return func(s *Service) {
		slot = strings.TrimSuffix(filepath.Base(slot), ".json")
		if slot != "" && slot != "." && slot != string(filepath.Separator) {
			s.slot = slot
		}
	}
}

// WithBus reports outcomes on bus.
func WithBus(bus *event.Bus) Option {
	return func(s *Service) { s.bus = bus }
}

// WithLogger sets the service logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTracer overrides the tracer used for save spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the time source used to stamp SaveDate.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSavePolicy installs a check run before every save; returning false
// rejects the save with KindNotAllowed.
func WithSavePolicy(allow func() bool) Option {
	return func(s *Service) { s.allow = allow }
}

// DefaultDir returns ~/.dungeoncrawl/saves, or ./saves if the home
// directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "saves"
	}
	return filepath.Join(home, ".dungeoncrawl", "saves")
}

// NewService creates a service for dir and makes sure dir exists. A failure
// to create it is reported on the bus; later operations fail with an error.
func NewService(dir string, opts ...Option) *Service {
	if dir == "" {
		dir = DefaultDir()
	}
	s := &Service{
		dir:    dir,
		slot:   DefaultSlot,
		log:    zap.NewNop(),
		tracer: telemetry.Tracer("save"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.path = filepath.Join(s.dir, s.slot+".json")

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.report(&Error{
			Op:      "init",
			Kind:    KindDirectory,
			Path:    s.dir,
			Message: fmt.Sprintf("Failed to create save directory: %v", err),
			Err:     err,
		})
	}
	return s
}

// Path returns the slot file path.
func (s *Service) Path() string { return s.path }

// Slot returns the slot name.
func (s *Service) Slot() string { return s.slot }

// Save writes data to the slot atomically and, on success, stamps data.SaveDate.
func (s *Service) Save(ctx context.Context, data *GameSaveData) error {
	_, span := s.tracer.Start(ctx, "save.write", trace.WithAttributes(
		attribute.String("save.path", s.path),
	))
	defer span.End()

	size, err := s.write(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Message)
		s.report(err)
		return err
	}

	span.SetAttributes(attribute.Int("save.bytes", size))
	s.log.Info("game saved",
		zap.String("path", s.path),
		zap.Int("bytes", size),
		zap.Int("turn", data.CurrentTurn),
	)
	event.Publish(s.bus, event.GameSaved{Path: s.path})
	event.Publish(s.bus, event.MessageLogged{Text: "Game saved successfully"})
	return nil
}

// Load reads and validates the slot. On failure it returns a nil snapshot.
// Each caller receives its own copy.
func (s *Service) Load(ctx context.Context) (*GameSaveData, error) {
	_, span := s.tracer.Start(ctx, "save.read", trace.WithAttributes(
		attribute.String("save.path", s.path),
	))
	defer span.End()

	v, err, shared := s.loads.Do(s.path, func() (any, error) {
		data, lerr := s.read()
		if lerr != nil {
			s.report(lerr)
			return nil, lerr
		}
		s.log.Info("game loaded", zap.String("path", s.path), zap.Int("turn", data.CurrentTurn))
		event.Publish(s.bus, event.GameLoaded{Path: s.path})
		event.Publish(s.bus, event.MessageLogged{Text: "Game loaded successfully"})
		return data, nil
	})
	span.SetAttributes(attribute.Bool("save.shared", shared))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return v.(*GameSaveData).Clone(), nil
}

// SaveAsync saves a copy of data on its own goroutine. data.SaveDate is not
// updated; the copy carries the stamp.
func (s *Service) SaveAsync(ctx context.Context, data *GameSaveData) <-chan error {
	snapshot := data.Clone()
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- s.Save(ctx, snapshot)
	}()
	return ch
}

// LoadResult is delivered by LoadAsync.
type LoadResult struct {
	Data *GameSaveData
	Err  error
}

// LoadAsync loads the slot on its own goroutine.
func (s *Service) LoadAsync(ctx context.Context) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		defer close(ch)
		data, err := s.Load(ctx)
		ch <- LoadResult{Data: data, Err: err}
	}()
	return ch
}

// Exists reports whether the slot file exists.
func (s *Service) Exists() bool {
	fi, err := os.Stat(s.path)
	return err == nil && fi.Mode().IsRegular()
}

// Delete removes the slot file. It returns false with a nil error when
// there was nothing to delete.
func (s *Service) Delete() (bool, error) {
	s.mu.Lock()
	err := os.Remove(s.path)
	s.mu.Unlock()

	switch {
	case err == nil:
		s.log.Info("save deleted", zap.String("path", s.path))
		event.Publish(s.bus, event.MessageLogged{Text: "Save file deleted"})
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		serr := &Error{
			Op:      "delete",
			Kind:    classify(err),
			Path:    s.path,
			Message: fmt.Sprintf("Error deleting save file: %v", err),
			Err:     err,
		}
		s.report(serr)
		return false, serr
	}
}

// Info describes a save file without parsing it.
type Info struct {
	Path    string
	ModTime time.Time
	Size    int64
	Digest  string // xxhash64 of the file content, hex
}

// Info returns metadata for the slot, or an error matching ErrNotFound.
// Nothing is published on the bus.
func (s *Service) Info() (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fi, err := os.Stat(s.path)
	if err != nil {
		return Info{}, s.readError("info", err)
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return Info{}, s.readError("info", err)
	}
	return Info{
		Path:    s.path,
		ModTime: fi.ModTime(),
		Size:    fi.Size(),
		Digest:  fmt.Sprintf("%016x", xxhash.Sum64(b)),
	}, nil
}

func (s *Service) write(data *GameSaveData) (int, *Error) {
	fail := func(kind Kind, msg string, err error) (int, *Error) {
		return 0, &Error{Op: "save", Kind: kind, Path: s.path, Message: msg, Err: err}
	}

	if data == nil {
		return fail(KindNoData, "No game data to save", nil)
	}
	if s.allow != nil && !s.allow() {
		return fail(KindNotAllowed, "Cannot save during combat or menu screens", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := data.Clone()
	out.SaveDate = s.now().UTC()
	if out.Entities == nil {
		out.Entities = []EntitySaveData{}
	}
	if out.Inventory == nil {
		out.Inventory = []ItemSaveData{}
	}
	if err := Validate(out); err != nil {
		return fail(KindInvalid, fmt.Sprintf("Save data is incomplete: %v", err), err)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fail(KindIO, fmt.Sprintf("Unexpected error during save: %v", err), err)
	}

	if err := writeFileAtomic(s.path, b, fileMode); err != nil {
		switch classify(err) {
		case KindPermission:
			return fail(KindPermission, fmt.Sprintf("File permission error: %v", err), err)
		case KindDirectory:
			return fail(KindDirectory, fmt.Sprintf("Save directory not found: %v", err), err)
		default:
			return fail(KindIO, fmt.Sprintf("I/O error during save: %v", err), err)
		}
	}
	data.SaveDate = out.SaveDate
	return len(b), nil
}

func (s *Service) read() (*GameSaveData, *Error) {
	fail := func(kind Kind, msg string, err error) (*GameSaveData, *Error) {
		return nil, &Error{Op: "load", Kind: kind, Path: s.path, Message: msg, Err: err}
	}

	s.mu.Lock()
	b, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		return nil, s.readError("load", err)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return fail(KindEmpty, "Save file is empty or corrupted", nil)
	}

	var data *GameSaveData
	if err := json.Unmarshal(b, &data); err != nil {
		return fail(KindCorrupt, fmt.Sprintf("Corrupted save file detected: %v", err), err)
	}
	if data == nil {
		return fail(KindCorrupt, "Failed to parse save file - corrupted data", nil)
	}
	if err := Validate(data); err != nil {
		return fail(KindInvalid, "Save file format is invalid or corrupted", err)
	}
	return data, nil
}

func (s *Service) readError(op string, err error) *Error {
	e := &Error{Op: op, Kind: classify(err), Path: s.path, Err: err}
	switch e.Kind {
	case KindNotFound, KindDirectory:
		e.Kind = KindNotFound
		e.Message = "No save file found"
	case KindPermission:
		e.Message = fmt.Sprintf("File permission error: %v", err)
	default:
		e.Message = fmt.Sprintf("I/O error during %s: %v", op, err)
	}
	return e
}

// report logs err and publishes it for the presentation layer.
func (s *Service) report(err *Error) {
	s.log.Warn("save operation failed",
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.String("path", err.Path),
		zap.Error(err.Err),
	)
	event.Publish(s.bus, event.SaveLoadError{Message: err.Message})
	event.Publish(s.bus, event.MessageLogged{Text: err.Message})
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, fs.ErrNotExist):
		return KindDirectory
	default:
		return KindIO
	}
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(name)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(name, perm); err != nil {
		return err
	}
	return os.Rename(name, path)
}
