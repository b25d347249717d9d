package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"slotbook/pkg/model"

	"github.com/google/uuid"
)

type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
	HeaderRetryCount    = "retry-count"
	HeaderOriginalTopic = "original-topic"

	SchemaVersion = "1"
)

type MessageHandler func(ctx context.Context, msg Message) error

// NewReservationMessage encodes evt keyed by its slot, so every event for one
// slot lands on the same partition in order.
func NewReservationMessage(evt model.ReservationEvent, source string) (Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return Message{}, err
	}
	ts := evt.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return Message{
		Key:   evt.Key(),
		Value: value,
		Headers: map[string]string{
			HeaderEventID:       uuid.New().String(),
			HeaderEventType:     evt.Type,
			HeaderSchemaVersion: SchemaVersion,
			HeaderSource:        source,
			HeaderTimestamp:     ts.Format(time.RFC3339),
		},
		Timestamp: ts,
	}, nil
}

func (m *Message) DecodeReservationEvent() (model.ReservationEvent, error) {
	var evt model.ReservationEvent
	if err := json.Unmarshal(m.Value, &evt); err != nil {
		return evt, NewPermanentError("deserialization failed", err)
	}
	return evt, nil
}

func (m *Message) EventID() string {
	return m.Headers[HeaderEventID]
}

func (m *Message) EventType() string {
	return m.Headers[HeaderEventType]
}

func (m *Message) RetryCount() int {
	n, err := strconv.Atoi(m.Headers[HeaderRetryCount])
	if err != nil {
		return 0
	}
	return n
}

func (m *Message) IncrementRetryCount() {
	if m.Headers == nil {
		m.Headers = map[string]string{}
	}
	m.Headers[HeaderRetryCount] = strconv.Itoa(m.RetryCount() + 1)
}
