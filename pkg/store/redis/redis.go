// Package redis keeps the snapshot as one JSON value next to a version
// counter, and announces every write on a pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/store"

	goredis "github.com/redis/go-redis/v9"
)

type Store struct {
	rdb        *goredis.Client
	key        string
	versionKey string
	channel    string
	log        *logger.Logger
}

func New(rdb *goredis.Client, path string, log *logger.Logger) *Store {
	return &Store{
		rdb:        rdb,
		key:        path + ":snapshot",
		versionKey: path + ":version",
		channel:    path + ":changed",
		log:        log,
	}
}

func (s *Store) Load(ctx context.Context) (store.Versioned, error) {
	values, err := s.rdb.MGet(ctx, s.key, s.versionKey).Result()
	if err != nil {
		return store.Versioned{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	v := store.Versioned{Snapshot: model.Snapshot{}, Version: "0"}
	if raw, ok := values[0].(string); ok && raw != "" {
		var snap model.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return store.Versioned{}, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		v.Snapshot = snap.Normalize()
	}
	if raw, ok := values[1].(string); ok && raw != "" {
		v.Version = raw
	}
	return v, nil
}

func (s *Store) Replace(ctx context.Context, snap model.Snapshot) (string, error) {
	payload, err := encode(snap)
	if err != nil {
		return "", err
	}

	var incr *goredis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.key, payload, 0)
		incr = pipe.Incr(ctx, s.versionKey)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	version := strconv.FormatInt(incr.Val(), 10)
	s.announce(ctx, version)
	return version, nil
}

func (s *Store) ReplaceIfUnchanged(ctx context.Context, version string, snap model.Snapshot) (string, error) {
	payload, err := encode(snap)
	if err != nil {
		return "", err
	}

	var incr *goredis.IntCmd
	err = s.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, s.versionKey).Result()
		if errors.Is(err, goredis.Nil) {
			current = "0"
		} else if err != nil {
			return err
		}
		if current != version {
			return store.ErrVersionMismatch
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, s.key, payload, 0)
			incr = pipe.Incr(ctx, s.versionKey)
			return nil
		})
		return err
	}, s.versionKey)

	switch {
	case errors.Is(err, store.ErrVersionMismatch), errors.Is(err, goredis.TxFailedErr):
		return "", store.ErrVersionMismatch
	case err != nil:
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	newVersion := strconv.FormatInt(incr.Val(), 10)
	s.announce(ctx, newVersion)
	return newVersion, nil
}

// Subscribe listens on the change channel and reloads the snapshot for every
// announcement. The subscription is confirmed before the initial load so no
// write between the two is missed.
func (s *Store) Subscribe(ctx context.Context) (store.Subscription, error) {
	ps := s.rdb.Subscribe(ctx, s.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}

	initial, err := s.Load(ctx)
	if err != nil {
		_ = ps.Close()
		return nil, err
	}

	feed := store.NewFeed(func() {
		if err := ps.Close(); err != nil {
			s.log.Warn("Failed to close redis subscription", "channel", s.channel, "error", err)
		}
	})
	feed.Push(initial)

	go func() {
		messages := ps.Channel()
		for {
			select {
			case <-feed.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				v, err := s.Load(context.Background())
				if err != nil {
					s.log.Error("Failed to reload snapshot after change", "channel", s.channel, "error", err)
					continue
				}
				feed.Push(v)
			}
		}
	}()

	return feed, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close is a no-op; the client belongs to the caller.
func (s *Store) Close() error {
	return nil
}

func (s *Store) announce(ctx context.Context, version string) {
	if err := s.rdb.Publish(ctx, s.channel, version).Err(); err != nil {
		s.log.Warn("Failed to publish snapshot change", "channel", s.channel, "version", version, "error", err)
	}
}

func encode(snap model.Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snap.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return payload, nil
}
