package events

import (
	"context"
	"sync"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// Publisher announces reservation changes that have already been written.
type Publisher interface {
	Publish(ctx context.Context, evt model.ReservationEvent) error
	Close() error
}

type KafkaPublisher struct {
	producer *Producer
	source   string
}

func NewKafkaPublisher(producer *Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt model.ReservationEvent) error {
	msg, err := NewReservationMessage(evt, p.source)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher drops every event. It is used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.ReservationEvent) error { return nil }

func (NopPublisher) Close() error { return nil }

// AsyncPublisher hands each event to its own goroutine so a slow broker never
// delays the request that made the change. Close waits for every event in
// flight before closing the wrapped publisher.
type AsyncPublisher struct {
	next    Publisher
	timeout time.Duration
	log     *logger.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncPublisher(next Publisher, timeout time.Duration, log *logger.Logger) *AsyncPublisher {
	return &AsyncPublisher{next: next, timeout: timeout, log: log}
}

func (p *AsyncPublisher) Publish(_ context.Context, evt model.ReservationEvent) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPublisherClosed
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.next.Publish(ctx, evt); err != nil {
			p.log.Warn("Failed to publish reservation event",
				"type", evt.Type,
				"date", evt.Date,
				"time", evt.Time,
				"error", err,
			)
		}
	}()
	return nil
}

func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
	return p.next.Close()
}
