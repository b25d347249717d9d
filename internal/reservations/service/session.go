package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"slotbook/internal/reservations/window"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/store"
)

var errSessionNotStarted = errors.New("session not started")

// State is what the session currently believes: the last snapshot pushed by
// the store, the version it was read at, and the window at Now.
type State struct {
	Snapshot model.Snapshot
	Version  string
	Window   window.Window
	Now      time.Time
}

// SnapshotSource is the read side of a Session.
type SnapshotSource interface {
	State() State
}

type SessionOption func(*Session)

// WithClock replaces the wall clock. Tests use it to pin the window.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// Session holds the single store subscription and the periodic tick. Every
// pushed snapshot replaces the cached one; every tick and every push is fanned
// out to watchers.
type Session struct {
	store  store.Store
	policy window.Policy
	tick   time.Duration
	now    func() time.Time
	log    *logger.Logger

	// startMu serializes Start and Stop so only one subscription is ever open.
	startMu sync.Mutex

	mu       sync.RWMutex
	snapshot model.Snapshot
	version  string
	started  bool
	watchers map[int]chan State
	nextID   int

	sub    store.Subscription
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(st store.Store, policy window.Policy, tick time.Duration, log *logger.Logger, opts ...SessionOption) *Session {
	if tick <= 0 {
		tick = time.Minute
	}
	s := &Session{
		store:    st,
		policy:   policy,
		tick:     tick,
		now:      time.Now,
		log:      log,
		snapshot: model.Snapshot{},
		watchers: make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to the store and waits for the first snapshot. The tick
// and the subscription run until Stop.
func (s *Session) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	sub, err := s.store.Subscribe(runCtx)
	if err != nil {
		cancel()
		return err
	}

	select {
	case first, ok := <-sub.Updates():
		if !ok {
			cancel()
			sub.Close()
			return store.ErrClosed
		}
		s.apply(first)
	case <-ctx.Done():
		cancel()
		sub.Close()
		return ctx.Err()
	}

	s.mu.Lock()
	s.started = true
	s.sub = sub
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(runCtx, sub)

	st := s.State()
	s.log.Info("Reservation session started",
		"tick", s.tick.String(),
		"version", st.Version,
		"reservations", st.Snapshot.Count(),
		"window_open", st.Window.IsOpen,
	)
	return nil
}

func (s *Session) run(ctx context.Context, sub store.Subscription) {
	defer close(s.done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-sub.Updates():
			if !ok {
				s.log.Warn("Store subscription ended")
				return
			}
			s.apply(v)
			s.broadcast()
		case <-ticker.C:
			s.broadcast()
		}
	}
}

// Stop releases the subscription, stops the tick and closes every watcher.
func (s *Session) Stop() {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel, sub, done := s.cancel, s.sub, s.done
	watchers := s.watchers
	s.watchers = make(map[int]chan State)
	s.mu.Unlock()

	cancel()
	sub.Close()
	<-done

	for _, ch := range watchers {
		close(ch)
	}
	s.log.Info("Reservation session stopped")
}

func (s *Session) State() State {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Snapshot: s.snapshot,
		Version:  s.version,
		Window:   s.policy.Compute(now),
		Now:      now,
	}
}

// Ready reports whether a first snapshot has been received.
func (s *Session) Ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return errSessionNotStarted
	}
	return nil
}

// Watch returns a channel that receives the current state now and after
// every change or tick. Only the newest state is kept for slow readers.
// The returned func unregisters the watcher.
func (s *Session) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)
	ch <- s.State()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(c)
			}
		})
	}
}

func (s *Session) apply(v store.Versioned) {
	snap := v.Snapshot.Normalize()
	s.mu.Lock()
	s.snapshot = snap
	s.version = v.Version
	s.mu.Unlock()
	s.log.Debug("Snapshot received", "version", v.Version, "reservations", snap.Count())
}

func (s *Session) broadcast() {
	st := s.State()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}
