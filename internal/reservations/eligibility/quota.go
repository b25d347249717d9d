package eligibility

import (
	"slices"
	"strings"
	"time"

	reservationserrors "slotbook/internal/reservations/errors"
	"slotbook/internal/reservations/window"
	"slotbook/pkg/model"
)

// QuotaPolicy caps how many restricted slots one name may hold within a
// cycle's reservable range. A zero Cap disables the policy.
type QuotaPolicy struct {
	Times    []string
	Weekdays []time.Weekday
	Cap      int
}

func (q QuotaPolicy) Enabled() bool {
	return q.Cap > 0 && len(q.Times) > 0 && len(q.Weekdays) > 0
}

// Applies reports whether (date, timeKey) is a restricted slot.
func (q QuotaPolicy) Applies(date time.Time, timeKey string) bool {
	if !q.Enabled() {
		return false
	}
	return slices.Contains(q.Weekdays, date.Weekday()) && slices.Contains(q.Times, timeKey)
}

// Count sums the restricted slots held by name across every reservable date
// of w. Names are compared trimmed and case-sensitively.
func (q QuotaPolicy) Count(snap model.Snapshot, w window.Window, name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	n := 0
	for _, date := range w.ReservableDates() {
		if !slices.Contains(q.Weekdays, date.Weekday()) {
			continue
		}
		key := model.FormatDate(date)
		for _, t := range q.Times {
			if r, ok := snap.Get(key, t); ok && r.Holder() == name {
				n++
			}
		}
	}
	return n
}

// Check returns ErrQuotaExceeded when reserving (date, timeKey) for name would
// go over the cap. Slots outside the restricted set always pass.
func (q QuotaPolicy) Check(snap model.Snapshot, w window.Window, date time.Time, timeKey, name string) error {
	if !q.Applies(date, timeKey) {
		return nil
	}
	if q.Count(snap, w, name) >= q.Cap {
		return reservationserrors.ErrQuotaExceeded
	}
	return nil
}
