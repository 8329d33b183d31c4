// Package period holds the selected reporting period shared by every view.
//
// A Store starts unhydrated with the default value (the empty string, meaning
// "latest available data"). Hydrate loads the persisted value exactly once.
// Until then changes stay in memory so the transient default can never
// overwrite a stored period. After hydration every change is written through
// synchronously: a non-empty period is stored, the empty period removes the
// key.
package period

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

const (
	// StorageKey is the single key the period is persisted under.
	StorageKey = "aquarius-period"
	// Default is the period used before one is selected.
	Default = ""
)

var (
	// ErrNoProvider is returned when no Store was injected into a context.
	ErrNoProvider = errors.New("period store accessed without a provider: wire it with period.NewContext")
	// ErrInactive is returned when a closed Store is used.
	ErrInactive = errors.New("period store is closed")
)

// Storage is the persistent medium behind a Store.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store holds the current period. It is safe for concurrent use.
type Store struct {
	storage Storage
	logger  *slog.Logger
	onWrite func()

	mu       sync.Mutex
	value    string
	hydrated bool
	closed   bool
	nextID   int
	subs     map[int]func(string)
}

// New returns an unhydrated Store over storage.
func New(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		storage: storage,
		logger:  logger,
		value:   Default,
		subs:    make(map[int]func(string)),
	}
}

// Open returns a Store that has already been hydrated from storage.
func Open(storage Storage, logger *slog.Logger) *Store {
	s := New(storage, logger)
	s.Hydrate()
	return s
}

// OnChange registers fn to run after every change made through Set or
// Reset, before subscribers are notified. Hydration does not call it.
// It is intended for metrics.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onWrite = fn
	s.mu.Unlock()
}

// Hydrate loads the persisted period. Only the first call has any effect.
// A failed read is logged; the store still becomes hydrated with the
// default value. A period set before hydration survives only when nothing
// was stored, in which case it is persisted now.
func (s *Store) Hydrate() {
	s.mu.Lock()
	if s.hydrated || s.closed {
		s.mu.Unlock()
		return
	}
	s.hydrated = true
	stored, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.Error("reading period from storage", "key", StorageKey, "err", err)
	}
	if err != nil || !ok || stored == "" {
		if s.value != Default {
			s.persist(s.value)
		}
		s.mu.Unlock()
		return
	}
	if stored == s.value {
		s.mu.Unlock()
		return
	}
	s.value = stored
	subs := s.snapshotSubs()
	s.mu.Unlock()

	// Loading a saved value is not a change, so onWrite is skipped.
	s.notify(nil, subs, stored)
}

// Hydrated reports whether Hydrate has completed.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Period returns the current period.
func (s *Store) Period() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set overwrites the current period unconditionally.
func (s *Store) Set(p string) error {
	return s.apply(p)
}

// Reset restores the default period.
func (s *Store) Reset() error {
	return s.apply(Default)
}

// Subscribe registers fn to be called with the new period after every
// change. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(string)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close tears the store down. Later changes return ErrInactive.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.subs = make(map[int]func(string))
	s.mu.Unlock()
}

func (s *Store) apply(p string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrInactive
	}
	changed := p != s.value
	s.value = p
	if s.hydrated {
		s.persist(p)
	}
	subs := s.snapshotSubs()
	onWrite := s.onWrite
	s.mu.Unlock()

	if changed {
		s.notify(onWrite, subs, p)
	}
	return nil
}

// persist writes p through to storage. Callers hold s.mu.
func (s *Store) persist(p string) {
	var err error
	if p == "" {
		err = s.storage.Delete(StorageKey)
	} else {
		err = s.storage.Set(StorageKey, p)
	}
	if err != nil {
		s.logger.Error("saving period to storage", "key", StorageKey, "err", err)
	}
}

func (s *Store) snapshotSubs() []func(string) {
	out := make([]func(string), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (s *Store) notify(onWrite func(), subs []func(string), p string) {
	if onWrite != nil {
		onWrite()
	}
	for _, fn := range subs {
		fn(p)
	}
}

// ─── Context Injection ────────────────────────────────────────────────────────

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the Store carried by ctx, or ErrNoProvider.
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrNoProvider
	}
	return s, nil
}

// MustFromContext is like FromContext but panics when no Store is present.
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
