// Package window computes the weekly admission cycle: when reservations open,
// when they close, and which instants are bookable within the cycle.
package window

import (
	"time"

	"slotbook/pkg/model"
)

// Policy fixes the weekly boundary. A cycle opens on Weekday at OpenHour and
// closes on the following Weekday at CloseHour.
type Policy struct {
	Location  *time.Location
	Weekday   time.Weekday
	OpenHour  int
	CloseHour int
}

// Window is the cycle active at the instant it was computed for.
// NextOpening is zero while the window is open.
type Window struct {
	CycleStart      time.Time `json:"cycle_start"`
	CycleEnd        time.Time `json:"cycle_end"`
	IsOpen          bool      `json:"is_open"`
	NextOpening     time.Time `json:"next_opening,omitzero"`
	ReservableStart time.Time `json:"reservable_start"`
	ReservableEnd   time.Time `json:"reservable_end"`
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Compute derives the window for now. It reads no clock and keeps no state.
func (p Policy) Compute(now time.Time) Window {
	loc := p.location()
	local := now.In(loc)

	y, m, d := local.Date()
	diff := (int(local.Weekday()) - int(p.Weekday) + 7) % 7
	start := time.Date(y, m, d-diff, p.OpenHour, 0, 0, 0, loc)
	if local.Before(start) {
		// Admission day, before the opening hour: still the previous cycle.
		start = time.Date(y, m, d-diff-7, p.OpenHour, 0, 0, 0, loc)
	}

	sy, sm, sd := start.Date()
	end := time.Date(sy, sm, sd+7, p.CloseHour, 0, 0, 0, loc)

	w := Window{
		CycleStart:      start,
		CycleEnd:        end,
		IsOpen:          !local.Before(start) && !local.After(end),
		ReservableStart: time.Date(sy, sm, sd+1, 0, 0, 0, 0, loc),
		ReservableEnd:   end,
	}
	switch {
	case local.After(end):
		w.NextOpening = time.Date(sy, sm, sd+7, p.OpenHour, 0, 0, 0, loc)
	case local.Before(start):
		w.NextOpening = start
	}
	return w
}

// Location is the zone every instant of w is expressed in.
func (w Window) Location() *time.Location {
	return w.ReservableStart.Location()
}

// Contains reports whether t lies in [ReservableStart, ReservableEnd].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.ReservableStart) && !t.After(w.ReservableEnd)
}

// ReservableDates lists local midnights from ReservableStart through the
// date of ReservableEnd.
func (w Window) ReservableDates() []time.Time {
	var dates []time.Time
	for d := w.ReservableStart; !d.After(w.ReservableEnd); d = d.AddDate(0, 0, 1) {
		dates = append(dates, model.Midnight(d))
	}
	return dates
}

// ReservableDateKeys is ReservableDates rendered as YYYY-MM-DD.
func (w Window) ReservableDateKeys() []string {
	dates := w.ReservableDates()
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = model.FormatDate(d)
	}
	return keys
}
