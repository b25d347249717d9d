package events

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservationMessage(t *testing.T) {
	at := time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)
	evt := model.ReservationEvent{
		Type:       model.EventReservationCreated,
		Date:       "2025-01-16",
		Time:       "09:00",
		Name:       "Alice",
		OccurredAt: at,
	}

	msg, err := NewReservationMessage(evt, "reservations")
	require.NoError(t, err)

	assert.Equal(t, "2025-01-16T09:00", msg.Key)
	assert.Equal(t, model.EventReservationCreated, msg.EventType())
	assert.NotEmpty(t, msg.EventID())
	assert.Equal(t, "reservations", msg.Headers[HeaderSource])
	assert.Equal(t, at, msg.Timestamp)
	assert.NotContains(t, string(msg.Value), "password")

	decoded, err := msg.DecodeReservationEvent()
	require.NoError(t, err)
	assert.Equal(t, evt.Name, decoded.Name)
	assert.True(t, evt.OccurredAt.Equal(decoded.OccurredAt))
}

func TestDecodeReservationEvent_BadPayloadIsPermanent(t *testing.T) {
	msg := Message{Value: []byte("{not json")}
	_, err := msg.DecodeReservationEvent()
	require.Error(t, err)
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestRetryCount(t *testing.T) {
	var msg Message
	assert.Equal(t, 0, msg.RetryCount())
	msg.IncrementRetryCount()
	msg.IncrementRetryCount()
	assert.Equal(t, 2, msg.RetryCount())
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		retries int
		want    bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "network error", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "network error at limit", err: errors.New("i/o timeout"), retries: 3, want: false},
		{name: "unknown error", err: errors.New("boom"), want: false},
		{name: "marked transient", err: NewTransientError("store busy", nil), want: true},
		{name: "wrapped permanent", err: fmt.Errorf("wrap: %w", NewPermanentError("bad", nil)), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRetry(tt.err, tt.retries, 3))
		})
	}
}

func TestChainMiddleware_Order(t *testing.T) {
	var calls []string
	mw := func(name string) ProducerMiddleware {
		return func(ctx context.Context, msg Message, next MessageHandler) error {
			calls = append(calls, name)
			return next(ctx, msg)
		}
	}
	handler := chainMiddleware([]ProducerMiddleware{mw("outer"), mw("inner")}, func(context.Context, Message) error {
		calls = append(calls, "handler")
		return nil
	})
	require.NoError(t, handler(context.Background(), Message{}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}

func TestConsumerProcess_RetriesTransientErrors(t *testing.T) {
	c := &Consumer{maxRetries: 2, log: logger.Discard()}
	attempts := 0
	err := c.process(context.Background(), func(context.Context, Message) error {
		attempts++
		return NewTransientError("flaky", nil)
	}, Message{Headers: map[string]string{}})

	require.Error(t, err)
	assert.Equal(t, 3, attempts, "first attempt plus two retries")
}

func TestRecoveryConsumerMiddleware(t *testing.T) {
	mw := RecoveryConsumerMiddleware(logger.Discard())
	err := mw(context.Background(), Message{}, func(context.Context, Message) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), model.ReservationEvent{}))
	assert.NoError(t, p.Close())
}

type gatedPublisher struct {
	release   chan struct{}
	published chan model.ReservationEvent
	closed    bool
}

func (p *gatedPublisher) Publish(ctx context.Context, evt model.ReservationEvent) error {
	<-p.release
	p.published <- evt
	return nil
}

func (p *gatedPublisher) Close() error {
	p.closed = true
	return nil
}

func TestAsyncPublisher_CloseWaitsForInFlightEvents(t *testing.T) {
	inner := &gatedPublisher{release: make(chan struct{}), published: make(chan model.ReservationEvent, 2)}
	pub := NewAsyncPublisher(inner, time.Second, logger.Discard())

	// Publish returns before the broker has the event.
	require.NoError(t, pub.Publish(context.Background(), model.ReservationEvent{Type: model.EventReservationCreated, Date: "2025-01-16", Time: "09:00"}))
	require.NoError(t, pub.Publish(context.Background(), model.ReservationEvent{Type: model.EventReservationCancelled, Date: "2025-01-16", Time: "09:00"}))

	closed := make(chan error, 1)
	go func() { closed <- pub.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while events were in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(inner.release)
	require.NoError(t, <-closed)
	assert.Len(t, inner.published, 2)
	assert.True(t, inner.closed)

	err := pub.Publish(context.Background(), model.ReservationEvent{Type: model.EventReservationCreated})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}
