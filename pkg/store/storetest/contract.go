// Package storetest holds the behaviour every store backend must share, plus
// helpers for connecting to the live services the remote backends need.
package storetest

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"slotbook/pkg/model"
	"slotbook/pkg/store"
)

const UpdateTimeout = 5 * time.Second

// Factory returns an empty store. Cleanup is the caller's business.
type Factory func(t *testing.T) store.Store

// Env returns the value of key or skips the test when it is unset.
func Env(t *testing.T, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set, skipping", key)
	}
	return value
}

func Receive(t *testing.T, sub store.Subscription) store.Versioned {
	t.Helper()
	select {
	case v, ok := <-sub.Updates():
		if !ok {
			t.Fatal("subscription closed")
		}
		return v
	case <-time.After(UpdateTimeout):
		t.Fatal("timed out waiting for snapshot")
	}
	return store.Versioned{}
}

// ReceiveUntil reads updates until one satisfies ok.
func ReceiveUntil(t *testing.T, sub store.Subscription, ok func(store.Versioned) bool) store.Versioned {
	t.Helper()
	deadline := time.After(UpdateTimeout)
	for {
		select {
		case v, open := <-sub.Updates():
			if !open {
				t.Fatal("subscription closed")
			}
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching snapshot")
		}
	}
}

// Run exercises the store contract against a fresh store from newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("empty store loads empty snapshot", func(t *testing.T) {
		s := newStore(t)
		v, err := s.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if v.Snapshot == nil || len(v.Snapshot) != 0 {
			t.Errorf("expected empty non-nil snapshot, got %#v", v.Snapshot)
		}
	})

	t.Run("replace then load round trips", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		want := model.Snapshot{
			"2025-01-15": {"09:00": {Name: " Alice", Passphrase: "a b"}},
			"2025-01-16": {"12:00": {Name: "밥", Passphrase: "비밀"}},
		}
		version, err := s.Replace(ctx, want)
		if err != nil {
			t.Fatalf("Replace: %v", err)
		}
		got, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Version != version {
			t.Errorf("Version = %s, want %s", got.Version, version)
		}
		if got.Snapshot.Count() != 2 {
			t.Fatalf("Count = %d, want 2", got.Snapshot.Count())
		}
		if r, _ := got.Snapshot.Get("2025-01-15", "09:00"); r != (model.Reservation{Name: " Alice", Passphrase: "a b"}) {
			t.Errorf("reservation = %+v", r)
		}
	})

	t.Run("empty dates are not stored", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		if _, err := s.Replace(ctx, model.Snapshot{"2025-01-15": {}}); err != nil {
			t.Fatalf("Replace: %v", err)
		}
		got, _ := s.Load(ctx)
		if _, ok := got.Snapshot["2025-01-15"]; ok {
			t.Error("empty date key should not survive a write")
		}
	})

	t.Run("conditional write detects interleaved write", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		read, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if _, err := s.Replace(ctx, model.Snapshot{"2025-01-15": {"09:00": {Name: "Winner", Passphrase: "w"}}}); err != nil {
			t.Fatalf("Replace: %v", err)
		}
		_, err = s.ReplaceIfUnchanged(ctx, read.Version, model.Snapshot{"2025-01-15": {"09:00": {Name: "Loser", Passphrase: "l"}}})
		if !errors.Is(err, store.ErrVersionMismatch) {
			t.Fatalf("expected ErrVersionMismatch, got %v", err)
		}

		fresh, _ := s.Load(ctx)
		if _, err := s.ReplaceIfUnchanged(ctx, fresh.Version, fresh.Snapshot.Without("2025-01-15", "09:00")); err != nil {
			t.Fatalf("conditional write on fresh version: %v", err)
		}
	})

	t.Run("subscribe pushes current then changes", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		sub, err := s.Subscribe(ctx)
		if err != nil {
			t.Fatalf("Subscribe: %v", err)
		}
		defer sub.Close()

		first := Receive(t, sub)
		if first.Snapshot == nil {
			t.Fatal("initial snapshot is nil")
		}
		if _, err := s.Replace(ctx, first.Snapshot.With("2025-01-17", "15:00", model.Reservation{Name: "Carol", Passphrase: "c"})); err != nil {
			t.Fatalf("Replace: %v", err)
		}
		ReceiveUntil(t, sub, func(v store.Versioned) bool {
			return v.Snapshot.Has("2025-01-17", "15:00")
		})
	})

	t.Run("ping", func(t *testing.T) {
		if err := newStore(t).Ping(context.Background()); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}
