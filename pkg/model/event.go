package model

import "time"

const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published after a mutation has been written to the
// store. It never carries the passphrase.
type ReservationEvent struct {
	Type       string    `json:"type"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Key groups events for the same slot onto the same partition.
func (e ReservationEvent) Key() string {
	return e.Date + "T" + e.Time
}
