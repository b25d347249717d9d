// Package firebase keeps the snapshot at one Realtime Database path. The
// node's ETag serves as the version; change detection polls with
// If-None-Match.
package firebase

import (
	"context"
	"fmt"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/store"

	"firebase.google.com/go/v4/db"
)

type Store struct {
	ref          *db.Ref
	pollInterval time.Duration
	log          *logger.Logger
}

func New(client *db.Client, path string, pollInterval time.Duration, log *logger.Logger) *Store {
	return &Store{
		ref:          client.NewRef(path),
		pollInterval: pollInterval,
		log:          log,
	}
}

// Load reads the node. An absent node is an empty snapshot.
func (s *Store) Load(ctx context.Context) (store.Versioned, error) {
	var snap model.Snapshot
	etag, err := s.ref.GetWithETag(ctx, &snap)
	if err != nil {
		return store.Versioned{}, fmt.Errorf("failed to read %s: %w", s.ref.Path, err)
	}
	return store.Versioned{Snapshot: snap.Normalize(), Version: etag}, nil
}

func (s *Store) Replace(ctx context.Context, snap model.Snapshot) (string, error) {
	if err := s.ref.Set(ctx, snap.Normalize()); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", s.ref.Path, err)
	}
	return s.currentETag(ctx), nil
}

func (s *Store) ReplaceIfUnchanged(ctx context.Context, version string, snap model.Snapshot) (string, error) {
	ok, err := s.ref.SetIfUnchanged(ctx, version, snap.Normalize())
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", s.ref.Path, err)
	}
	if !ok {
		return "", store.ErrVersionMismatch
	}
	return s.currentETag(ctx), nil
}

func (s *Store) Subscribe(ctx context.Context) (store.Subscription, error) {
	initial, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	feed := store.NewFeed(cancel)
	feed.Push(initial)

	go s.poll(pollCtx, feed, initial.Version)
	return feed, nil
}

func (s *Store) poll(ctx context.Context, feed *store.Feed, etag string) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var snap model.Snapshot
			changed, next, err := s.ref.GetIfChanged(ctx, etag, &snap)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error("Failed to poll snapshot", "path", s.ref.Path, "error", err)
				}
				continue
			}
			if !changed {
				continue
			}
			etag = next
			feed.Push(store.Versioned{Snapshot: snap.Normalize(), Version: next})
		}
	}
}

func (s *Store) Ping(ctx context.Context) error {
	var shallow map[string]bool
	return s.ref.GetShallow(ctx, &shallow)
}

// Close is a no-op; the client belongs to the caller.
func (s *Store) Close() error {
	return nil
}

// currentETag re-reads the node after a write. A failure leaves the version
// empty, which any later conditional write treats as stale.
func (s *Store) currentETag(ctx context.Context) string {
	var discard model.Snapshot
	etag, err := s.ref.GetWithETag(ctx, &discard)
	if err != nil {
		s.log.Warn("Failed to read version after write", "path", s.ref.Path, "error", err)
		return ""
	}
	return etag
}
