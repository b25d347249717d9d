// Package memory is an in-process store. It is the default backend for a
// single instance and the reference behaviour for the remote backends.
package memory

import (
	"context"
	"strconv"
	"sync"

	"slotbook/pkg/model"
	"slotbook/pkg/store"
)

type Store struct {
	mu      sync.Mutex
	snap    model.Snapshot
	version uint64
	feeds   map[*store.Feed]struct{}
	closed  bool
}

func New(initial model.Snapshot) *Store {
	return &Store{
		snap:  initial.Normalize(),
		feeds: map[*store.Feed]struct{}{},
	}
}

func (s *Store) Load(ctx context.Context) (store.Versioned, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.Versioned{}, store.ErrClosed
	}
	return s.current(), nil
}

func (s *Store) Replace(ctx context.Context, snap model.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", store.ErrClosed
	}
	return s.write(snap), nil
}

func (s *Store) ReplaceIfUnchanged(ctx context.Context, version string, snap model.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", store.ErrClosed
	}
	if version != s.versionString() {
		return "", store.ErrVersionMismatch
	}
	return s.write(snap), nil
}

func (s *Store) Subscribe(ctx context.Context) (store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}

	var feed *store.Feed
	feed = store.NewFeed(func() {
		s.mu.Lock()
		delete(s.feeds, feed)
		s.mu.Unlock()
	})
	s.feeds[feed] = struct{}{}
	feed.Push(s.current())
	return feed, nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	return nil
}

// Close ends every open subscription.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	feeds := make([]*store.Feed, 0, len(s.feeds))
	for f := range s.feeds {
		feeds = append(feeds, f)
	}
	s.mu.Unlock()

	for _, f := range feeds {
		f.Close()
	}
	return nil
}

// Subscribers reports how many subscriptions are open.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds)
}

func (s *Store) write(snap model.Snapshot) string {
	s.snap = snap.Normalize()
	s.version++
	v := s.current()
	for f := range s.feeds {
		f.Push(store.Versioned{Snapshot: v.Snapshot.Clone(), Version: v.Version})
	}
	return v.Version
}

func (s *Store) current() store.Versioned {
	return store.Versioned{Snapshot: s.snap.Clone(), Version: s.versionString()}
}

func (s *Store) versionString() string {
	return strconv.FormatUint(s.version, 10)
}
