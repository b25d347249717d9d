package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"slotbook/pkg/model"
	"slotbook/pkg/store"
	"slotbook/pkg/store/storetest"
)

func receive(t *testing.T, sub store.Subscription) store.Versioned {
	t.Helper()
	select {
	case v, ok := <-sub.Updates():
		if !ok {
			t.Fatal("subscription closed")
		}
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
	return store.Versioned{}
}

func TestSubscribe_DeliversCurrentThenChanges(t *testing.T) {
	ctx := context.Background()
	s := New(model.Snapshot{"2025-01-15": {"09:00": {Name: "Alice", Passphrase: "a"}}})

	sub, err := s.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	first := receive(t, sub)
	if !first.Snapshot.Has("2025-01-15", "09:00") {
		t.Errorf("initial snapshot missing reservation: %v", first.Snapshot)
	}

	next := first.Snapshot.With("2025-01-16", "12:00", model.Reservation{Name: "Bob", Passphrase: "b"})
	version, err := s.Replace(ctx, next)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got := receive(t, sub)
	if got.Version != version {
		t.Errorf("Version = %s, want %s", got.Version, version)
	}
	if !got.Snapshot.Has("2025-01-16", "12:00") {
		t.Errorf("pushed snapshot missing new reservation: %v", got.Snapshot)
	}
}

func TestReplace_NormalizesEmptyDates(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	if _, err := s.Replace(ctx, model.Snapshot{"2025-01-15": {}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	v, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(v.Snapshot) != 0 {
		t.Errorf("expected empty snapshot, got %v", v.Snapshot)
	}
}

func TestLoad_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(model.Snapshot{"2025-01-15": {"09:00": {Name: "Alice"}}})

	v, _ := s.Load(ctx)
	v.Snapshot["2025-01-15"]["09:00"] = model.Reservation{Name: "Mallory"}

	again, _ := s.Load(ctx)
	if r, _ := again.Snapshot.Get("2025-01-15", "09:00"); r.Name != "Alice" {
		t.Errorf("store was modified through a loaded snapshot: %v", r)
	}
}

func TestReplaceIfUnchanged(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	v, _ := s.Load(ctx)
	if _, err := s.ReplaceIfUnchanged(ctx, v.Version, model.Snapshot{"2025-01-15": {"09:00": {Name: "A"}}}); err != nil {
		t.Fatalf("first conditional write: %v", err)
	}
	_, err := s.ReplaceIfUnchanged(ctx, v.Version, model.Snapshot{"2025-01-15": {"09:00": {Name: "B"}}})
	if !errors.Is(err, store.ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}

	cur, _ := s.Load(ctx)
	if r, _ := cur.Snapshot.Get("2025-01-15", "09:00"); r.Name != "A" {
		t.Errorf("stale write was applied: %v", r)
	}
}

func TestReplace_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	base, _ := s.Load(ctx)

	var wg sync.WaitGroup
	for _, name := range []string{"First", "Second"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			next := base.Snapshot.With("2025-01-15", "09:00", model.Reservation{Name: name, Passphrase: "x"})
			if _, err := s.Replace(ctx, next); err != nil {
				t.Errorf("Replace(%s): %v", name, err)
			}
		}(name)
	}
	wg.Wait()

	cur, _ := s.Load(ctx)
	if cur.Version != "2" {
		t.Errorf("Version = %s, want 2", cur.Version)
	}
	if !cur.Snapshot.Has("2025-01-15", "09:00") {
		t.Error("one of the writes should have landed")
	}
}

func TestClose_EndsSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	sub, _ := s.Subscribe(ctx)
	receive(t, sub)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-sub.Updates(); ok {
		t.Error("expected closed channel")
	}
	if _, err := s.Replace(ctx, model.Snapshot{}); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Replace after Close = %v, want ErrClosed", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Ping after Close = %v, want ErrClosed", err)
	}
}

func TestSubscriptionClose_Unregisters(t *testing.T) {
	s := New(nil)
	sub, _ := s.Subscribe(context.Background())
	if s.Subscribers() != 1 {
		t.Fatalf("Subscribers = %d, want 1", s.Subscribers())
	}
	sub.Close()
	if s.Subscribers() != 0 {
		t.Errorf("Subscribers = %d, want 0", s.Subscribers())
	}
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s := New(nil)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
