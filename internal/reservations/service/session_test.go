package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveState(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case st, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("no state received")
		return State{}
	}
}

func TestSession_StartLoadsSnapshot(t *testing.T) {
	cfg := testConfig()
	st := memory.New(model.Snapshot{
		"2025-01-16": {"09:00": {Name: "Alice", Passphrase: "a"}},
	})
	s := NewSession(st, Policy(cfg), time.Hour, logger.Discard(), WithClock(func() time.Time { return wednesday }))

	require.Error(t, s.Ready())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.NoError(t, s.Ready())
	state := s.State()
	assert.Equal(t, 1, state.Snapshot.Count())
	assert.Equal(t, "0", state.Version)
	assert.True(t, state.Window.IsOpen)
	assert.Equal(t, wednesday, state.Now)
	assert.Equal(t, 1, st.Subscribers())
}

func TestSession_ConcurrentStartSubscribesOnce(t *testing.T) {
	cfg := testConfig()
	st := memory.New(nil)
	s := NewSession(st, Policy(cfg), time.Hour, logger.Discard(), WithClock(func() time.Time { return wednesday }))
	defer s.Stop()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Start(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, st.Subscribers())
}

func TestSession_PushReplacesSnapshot(t *testing.T) {
	cfg := testConfig()
	st := memory.New(nil)
	s := NewSession(st, Policy(cfg), time.Hour, logger.Discard(), WithClock(func() time.Time { return wednesday }))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	updates, unwatch := s.Watch()
	defer unwatch()
	assert.Zero(t, receiveState(t, updates).Snapshot.Count())

	_, err := st.Replace(context.Background(), model.Snapshot{
		"2025-01-17": {"12:00": {Name: "Bob", Passphrase: "b"}},
	})
	require.NoError(t, err)

	got := receiveState(t, updates)
	assert.Equal(t, "1", got.Version)
	assert.True(t, got.Snapshot.Has("2025-01-17", "12:00"))
	assert.Equal(t, "1", s.State().Version)
}

func TestSession_TickBroadcasts(t *testing.T) {
	cfg := testConfig()
	s := NewSession(memory.New(nil), Policy(cfg), 10*time.Millisecond, logger.Discard())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	updates, unwatch := s.Watch()
	defer unwatch()
	first := receiveState(t, updates)
	second := receiveState(t, updates)
	assert.False(t, second.Now.Before(first.Now))
}

func TestSession_StopReleasesEverything(t *testing.T) {
	cfg := testConfig()
	st := memory.New(nil)
	s := NewSession(st, Policy(cfg), time.Hour, logger.Discard())
	require.NoError(t, s.Start(context.Background()))

	updates, _ := s.Watch()
	<-updates

	s.Stop()
	_, ok := <-updates
	assert.False(t, ok, "watchers are closed on stop")
	assert.Zero(t, st.Subscribers())

	// Stopping twice is harmless.
	s.Stop()
}

func TestSession_StartFailsOnClosedStore(t *testing.T) {
	cfg := testConfig()
	st := memory.New(nil)
	require.NoError(t, st.Close())

	s := NewSession(st, Policy(cfg), time.Hour, logger.Discard())
	assert.Error(t, s.Start(context.Background()))
}
