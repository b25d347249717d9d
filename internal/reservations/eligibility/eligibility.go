// Package eligibility decides which slots may be clicked and enforces the
// weekly per-person cap on restricted slots.
package eligibility

import (
	"time"

	"slotbook/internal/reservations/window"
	"slotbook/pkg/model"
)

type Reason string

const (
	Reservable Reason = ""
	Closed     Reason = "closed"
	OutOfRange Reason = "out_of_range"
)

// Classify explains why (date, clock) cannot be reserved, or returns
// Reservable. date is interpreted in the window's location.
func Classify(w window.Window, date time.Time, clock model.Clock) Reason {
	if !w.IsOpen {
		return Closed
	}
	if !w.Contains(SlotInstant(w, date, clock)) {
		return OutOfRange
	}
	return Reservable
}

func IsSlotReservable(w window.Window, date time.Time, clock model.Clock) bool {
	return Classify(w, date, clock) == Reservable
}

// IsDateReachable reports whether any of clocks is reservable on date.
func IsDateReachable(w window.Window, date time.Time, clocks []model.Clock) bool {
	for _, c := range clocks {
		if IsSlotReservable(w, date, c) {
			return true
		}
	}
	return false
}

// SlotInstant places clock on the civil date of date in the window's zone.
func SlotInstant(w window.Window, date time.Time, clock model.Clock) time.Time {
	return clock.On(date.In(w.Location()))
}
