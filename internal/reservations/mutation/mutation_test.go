package mutation

import (
	"errors"
	"testing"
	"time"

	"slotbook/internal/reservations/eligibility"
	reservationserrors "slotbook/internal/reservations/errors"
	"slotbook/internal/reservations/window"
	"slotbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("KST", 9*60*60)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, kst)
}

// The cycle opened Tuesday 2025-01-14 12:00; reservable range is
// Wednesday the 15th through Tuesday the 21st at 21:00.
func openWindow() window.Window {
	p := window.Policy{Location: kst, Weekday: time.Tuesday, OpenHour: 12, CloseHour: 21}
	return p.Compute(time.Date(2025, time.January, 15, 10, 0, 0, 0, kst))
}

func quota() eligibility.QuotaPolicy {
	return eligibility.QuotaPolicy{
		Times:    []string{"09:00", "12:00", "15:00"},
		Weekdays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Cap:      3,
	}
}

func TestSelect(t *testing.T) {
	w := openWindow()
	snap := model.Snapshot{"2025-01-16": {"09:00": {Name: "Alice", Passphrase: "1"}}}

	action, err := Select(snap, w, day(16), model.Clock{Hour: 9})
	require.NoError(t, err)
	assert.Equal(t, ActionCancel, action)

	action, err = Select(snap, w, day(16), model.Clock{Hour: 12})
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, action)

	_, err = Select(snap, w, day(14), model.Clock{Hour: 21})
	assert.ErrorIs(t, err, reservationserrors.ErrOutOfRange)

	closed := w
	closed.IsOpen = false
	_, err = Select(snap, closed, day(16), model.Clock{Hour: 9})
	assert.ErrorIs(t, err, reservationserrors.ErrWindowClosed)
}

func TestPlanCreate(t *testing.T) {
	w := openWindow()
	held := model.Snapshot{"2025-01-16": {"09:00": {Name: "Alice", Passphrase: "1"}}}

	tests := []struct {
		name    string
		snap    model.Snapshot
		req     CreateRequest
		wantErr error
	}{
		{
			name: "creates on empty slot",
			snap: model.Snapshot{},
			req:  CreateRequest{Date: day(16), Clock: model.Clock{Hour: 9}, Name: "Bob", Passphrase: "pw"},
		},
		{
			name:    "blank name",
			snap:    model.Snapshot{},
			req:     CreateRequest{Date: day(16), Clock: model.Clock{Hour: 9}, Name: "   ", Passphrase: "pw"},
			wantErr: reservationserrors.ErrMissingFields,
		},
		{
			name:    "blank passphrase",
			snap:    model.Snapshot{},
			req:     CreateRequest{Date: day(16), Clock: model.Clock{Hour: 9}, Name: "Bob", Passphrase: ""},
			wantErr: reservationserrors.ErrMissingFields,
		},
		{
			name:    "slot taken",
			snap:    held,
			req:     CreateRequest{Date: day(16), Clock: model.Clock{Hour: 9}, Name: "Bob", Passphrase: "pw"},
			wantErr: reservationserrors.ErrSlotTaken,
		},
		{
			name:    "window checked before fields",
			snap:    model.Snapshot{},
			req:     CreateRequest{Date: day(22), Clock: model.Clock{Hour: 9}},
			wantErr: reservationserrors.ErrOutOfRange,
		},
		{
			name:    "fields checked before taken",
			snap:    held,
			req:     CreateRequest{Date: day(16), Clock: model.Clock{Hour: 9}},
			wantErr: reservationserrors.ErrMissingFields,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := PlanCreate(tt.snap, w, quota(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, next)
				return
			}
			require.NoError(t, err)
			r, ok := next.Get(model.FormatDate(tt.req.Date), tt.req.Clock.String())
			require.True(t, ok)
			assert.Equal(t, tt.req.Name, r.Name)
			assert.Equal(t, tt.req.Passphrase, r.Passphrase)
			assert.Empty(t, tt.snap, "input snapshot must not be modified")
		})
	}
}

func TestPlanCreate_KeepsNameAsEntered(t *testing.T) {
	next, err := PlanCreate(model.Snapshot{}, openWindow(), quota(), CreateRequest{
		Date: day(18), Clock: model.Clock{Hour: 3}, Name: "  Alice ", Passphrase: "pw",
	})
	require.NoError(t, err)
	r, _ := next.Get("2025-01-18", "03:00")
	assert.Equal(t, "  Alice ", r.Name)
}

func TestPlanCreate_QuotaScenario(t *testing.T) {
	w := openWindow()
	// Mon 20th 09:00, Tue 21st 12:00, Wed 15th 15:00 are all restricted.
	snap := model.Snapshot{
		"2025-01-20": {"09:00": {Name: "Alice", Passphrase: "a"}},
		"2025-01-21": {"12:00": {Name: "Alice", Passphrase: "a"}},
		"2025-01-15": {"15:00": {Name: "Alice", Passphrase: "a"}},
	}
	thursday := CreateRequest{Date: day(16), Clock: model.Clock{Hour: 9}, Passphrase: "x"}

	alice := thursday
	alice.Name = "Alice"
	_, err := PlanCreate(snap, w, quota(), alice)
	assert.ErrorIs(t, err, reservationserrors.ErrQuotaExceeded)
	assert.False(t, errors.Is(err, reservationserrors.ErrSlotTaken))

	bob := thursday
	bob.Name = "Bob"
	next, err := PlanCreate(snap, w, quota(), bob)
	require.NoError(t, err)
	assert.True(t, next.Has("2025-01-16", "09:00"))

	// Unrestricted time is always allowed.
	alice.Clock = model.Clock{Hour: 18}
	_, err = PlanCreate(snap, w, quota(), alice)
	assert.NoError(t, err)

	// Disabled quota.
	alice.Clock = model.Clock{Hour: 9}
	_, err = PlanCreate(snap, w, eligibility.QuotaPolicy{}, alice)
	assert.NoError(t, err)
}

func TestPlanCreate_LostRaceBecomesTaken(t *testing.T) {
	w := openWindow()
	base := model.Snapshot{}
	slot := CreateRequest{Date: day(15), Clock: model.Clock{Hour: 9}, Passphrase: "pw"}

	first, second := slot, slot
	first.Name, second.Name = "First", "Second"

	a, err := PlanCreate(base, w, quota(), first)
	require.NoError(t, err)
	b, err := PlanCreate(base, w, quota(), second)
	require.NoError(t, err)

	r, _ := a.Get("2025-01-15", "09:00")
	assert.Equal(t, "First", r.Name)

	// Whole-tree replace: whichever lands last is the store's value.
	stored := b
	r, _ = stored.Get("2025-01-15", "09:00")
	assert.Equal(t, "Second", r.Name)

	_, err = PlanCreate(stored, w, quota(), first)
	assert.ErrorIs(t, err, reservationserrors.ErrSlotTaken)
}

func TestPlanCancel(t *testing.T) {
	w := openWindow()
	snap := model.Snapshot{
		"2025-01-16": {"09:00": {Name: "Alice", Passphrase: "secret"}},
		"2025-01-17": {
			"09:00": {Name: "Bob", Passphrase: "b"},
			"12:00": {Name: "Carol", Passphrase: "c"},
		},
	}

	t.Run("wrong passphrase", func(t *testing.T) {
		_, _, err := PlanCancel(snap, w, CancelRequest{Date: day(16), Clock: model.Clock{Hour: 9}, Passphrase: "Secret"})
		assert.ErrorIs(t, err, reservationserrors.ErrWrongPassphrase)
	})

	t.Run("passphrase is not trimmed", func(t *testing.T) {
		_, _, err := PlanCancel(snap, w, CancelRequest{Date: day(16), Clock: model.Clock{Hour: 9}, Passphrase: "secret "})
		assert.ErrorIs(t, err, reservationserrors.ErrWrongPassphrase)
	})

	t.Run("empty slot", func(t *testing.T) {
		_, _, err := PlanCancel(snap, w, CancelRequest{Date: day(18), Clock: model.Clock{Hour: 9}, Passphrase: "x"})
		assert.ErrorIs(t, err, reservationserrors.ErrSlotEmpty)
	})

	t.Run("only reservation on date prunes the date", func(t *testing.T) {
		next, held, err := PlanCancel(snap, w, CancelRequest{Date: day(16), Clock: model.Clock{Hour: 9}, Passphrase: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "Alice", held.Name)
		assert.NotContains(t, next, "2025-01-16")
		assert.Contains(t, snap, "2025-01-16", "input snapshot must not be modified")
	})

	t.Run("one of two keeps the date", func(t *testing.T) {
		next, _, err := PlanCancel(snap, w, CancelRequest{Date: day(17), Clock: model.Clock{Hour: 9}, Passphrase: "b"})
		require.NoError(t, err)
		require.Contains(t, next, "2025-01-17")
		assert.Len(t, next["2025-01-17"], 1)
		assert.True(t, next.Has("2025-01-17", "12:00"))
	})

	t.Run("outside window", func(t *testing.T) {
		_, _, err := PlanCancel(snap, w, CancelRequest{Date: day(14), Clock: model.Clock{Hour: 21}, Passphrase: "x"})
		assert.ErrorIs(t, err, reservationserrors.ErrOutOfRange)
	})
}
