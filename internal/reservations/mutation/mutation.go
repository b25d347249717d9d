// Package mutation plans create and cancel transitions on a snapshot. Every
// plan returns the complete next snapshot; nothing here writes to a store.
package mutation

import (
	"strings"
	"time"

	"slotbook/internal/reservations/eligibility"
	reservationserrors "slotbook/internal/reservations/errors"
	"slotbook/internal/reservations/window"
	"slotbook/pkg/model"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionCancel Action = "cancel"
)

type CreateRequest struct {
	Date       time.Time
	Clock      model.Clock
	Name       string
	Passphrase string
}

type CancelRequest struct {
	Date       time.Time
	Clock      model.Clock
	Passphrase string
}

// Select is the click on a slot: it rejects slots outside the window and
// otherwise says which dialog applies.
func Select(snap model.Snapshot, w window.Window, date time.Time, clock model.Clock) (Action, error) {
	if err := gate(w, date, clock); err != nil {
		return "", err
	}
	if snap.Has(dateKey(w, date), clock.String()) {
		return ActionCancel, nil
	}
	return ActionCreate, nil
}

// PlanCreate checks, in order, the window, the required fields, whether the
// slot is free, and the quota. The stored name keeps the caller's spelling.
func PlanCreate(snap model.Snapshot, w window.Window, quota eligibility.QuotaPolicy, req CreateRequest) (model.Snapshot, error) {
	if err := gate(w, req.Date, req.Clock); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Passphrase) == "" {
		return nil, reservationserrors.ErrMissingFields
	}

	key, clock := dateKey(w, req.Date), req.Clock.String()
	if snap.Has(key, clock) {
		return nil, reservationserrors.ErrSlotTaken
	}
	if err := quota.Check(snap, w, req.Date.In(w.Location()), clock, req.Name); err != nil {
		return nil, err
	}

	return snap.With(key, clock, model.Reservation{Name: req.Name, Passphrase: req.Passphrase}), nil
}

// PlanCancel removes the reservation when the passphrase matches exactly.
// A date left empty is pruned from the result.
func PlanCancel(snap model.Snapshot, w window.Window, req CancelRequest) (model.Snapshot, model.Reservation, error) {
	if err := gate(w, req.Date, req.Clock); err != nil {
		return nil, model.Reservation{}, err
	}

	key, clock := dateKey(w, req.Date), req.Clock.String()
	held, ok := snap.Get(key, clock)
	if !ok {
		return nil, model.Reservation{}, reservationserrors.ErrSlotEmpty
	}
	if held.Passphrase != req.Passphrase {
		return nil, model.Reservation{}, reservationserrors.ErrWrongPassphrase
	}

	return snap.Without(key, clock), held, nil
}

func gate(w window.Window, date time.Time, clock model.Clock) error {
	switch eligibility.Classify(w, date, clock) {
	case eligibility.Closed:
		return reservationserrors.ErrWindowClosed
	case eligibility.OutOfRange:
		return reservationserrors.ErrOutOfRange
	}
	return nil
}

func dateKey(w window.Window, date time.Time) string {
	return model.FormatDate(date.In(w.Location()))
}
