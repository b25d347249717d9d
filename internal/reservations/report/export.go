// Package report renders read-only views of a snapshot: the text export,
// the admin dump, and the calendar and week grids.
package report

import (
	"fmt"
	"strings"
	"time"

	reservationserrors "slotbook/internal/reservations/errors"
	"slotbook/internal/reservations/window"
	"slotbook/pkg/model"
)

// Export writes one line per reservable date that has a booking at one of
// clocks: "<label> - 09:00 Alice, 12:00 Bob". It returns ErrEmptyExport
// rather than an empty report.
func Export(snap model.Snapshot, w window.Window, clocks []model.Clock, labels []string) (string, error) {
	var b strings.Builder
	for _, date := range w.ReservableDates() {
		day, ok := snap[model.FormatDate(date)]
		if !ok {
			continue
		}
		var booked []string
		for _, c := range clocks {
			if r, ok := day[c.String()]; ok {
				booked = append(booked, c.String()+" "+r.Name)
			}
		}
		if len(booked) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s - %s\n", Label(labels, date.Weekday()), strings.Join(booked, ", "))
	}
	if b.Len() == 0 {
		return "", reservationserrors.ErrEmptyExport
	}
	return b.String(), nil
}

// ExportFilename names the export after the local date it was produced on.
func ExportFilename(now time.Time) string {
	return "reservations_" + model.FormatDate(now) + ".txt"
}

// AdminDump lists every reservation, passphrases included, by date then time.
func AdminDump(snap model.Snapshot) []model.Entry {
	return snap.Entries()
}

// Label picks the weekday label, falling back to the English short name.
func Label(labels []string, day time.Weekday) string {
	if int(day) < len(labels) {
		return labels[day]
	}
	return day.String()[:3]
}
