package window

import (
	"testing"
	"time"
)

var kst = time.FixedZone("KST", 9*60*60)

func tuesdayPolicy() Policy {
	return Policy{Location: kst, Weekday: time.Tuesday, OpenHour: 12, CloseHour: 21}
}

func at(day, hour, minute int) time.Time {
	// January 2025: the 7th, 14th and 21st are Tuesdays.
	return time.Date(2025, time.January, day, hour, minute, 0, 0, kst)
}

func TestCompute_TuesdayNoonBoundary(t *testing.T) {
	p := tuesdayPolicy()

	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{name: "tuesday 11:59 belongs to previous cycle", now: at(14, 11, 59), wantStart: at(7, 12, 0)},
		{name: "tuesday 12:00 opens a new cycle", now: at(14, 12, 0), wantStart: at(14, 12, 0)},
		{name: "wednesday", now: at(15, 9, 0), wantStart: at(14, 12, 0)},
		{name: "monday late night", now: at(20, 23, 59), wantStart: at(14, 12, 0)},
		{name: "sunday", now: at(19, 0, 0), wantStart: at(14, 12, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := p.Compute(tt.now)
			if !w.CycleStart.Equal(tt.wantStart) {
				t.Errorf("CycleStart = %v, want %v", w.CycleStart, tt.wantStart)
			}
		})
	}
}

func TestCompute_Fields(t *testing.T) {
	w := tuesdayPolicy().Compute(at(15, 10, 0))

	if !w.CycleEnd.Equal(at(21, 21, 0)) {
		t.Errorf("CycleEnd = %v, want next Tuesday 21:00", w.CycleEnd)
	}
	if !w.ReservableStart.Equal(at(15, 0, 0)) {
		t.Errorf("ReservableStart = %v, want Wednesday midnight", w.ReservableStart)
	}
	if !w.ReservableEnd.Equal(w.CycleEnd) {
		t.Errorf("ReservableEnd = %v, want CycleEnd", w.ReservableEnd)
	}
	if !w.IsOpen {
		t.Error("window should be open")
	}
	if !w.NextOpening.IsZero() {
		t.Errorf("NextOpening should be zero while open, got %v", w.NextOpening)
	}
	if w.Location() != kst {
		t.Errorf("Location = %v, want KST", w.Location())
	}
}

func TestCompute_ConvertsToPolicyLocation(t *testing.T) {
	// Tuesday 03:00 UTC is Tuesday 12:00 KST.
	w := tuesdayPolicy().Compute(time.Date(2025, time.January, 14, 3, 0, 0, 0, time.UTC))
	if !w.CycleStart.Equal(at(14, 12, 0)) {
		t.Errorf("CycleStart = %v, want %v", w.CycleStart, at(14, 12, 0))
	}
}

func TestCompute_RolloverByOneWeek(t *testing.T) {
	p := tuesdayPolicy()
	instants := []time.Time{
		at(14, 11, 59), at(14, 12, 0), at(15, 0, 0), at(17, 13, 37), at(20, 23, 59), at(21, 21, 0),
	}
	for _, now := range instants {
		a := p.Compute(now)
		b := p.Compute(now.AddDate(0, 0, 7))

		pairs := []struct {
			field string
			x, y  time.Time
		}{
			{"CycleStart", a.CycleStart, b.CycleStart},
			{"CycleEnd", a.CycleEnd, b.CycleEnd},
			{"ReservableStart", a.ReservableStart, b.ReservableStart},
			{"ReservableEnd", a.ReservableEnd, b.ReservableEnd},
		}
		for _, pr := range pairs {
			if got := pr.y.Sub(pr.x); got != 7*24*time.Hour {
				t.Errorf("now=%v: %s advanced by %v, want 168h", now, pr.field, got)
			}
		}
	}
}

func TestCompute_ClosedWhenCloseHourPrecedesOpenHour(t *testing.T) {
	p := Policy{Location: kst, Weekday: time.Tuesday, OpenHour: 12, CloseHour: 10}

	w := p.Compute(at(21, 11, 0))
	if w.IsOpen {
		t.Fatal("window should be closed between close and reopen")
	}
	if !w.NextOpening.Equal(at(21, 12, 0)) {
		t.Errorf("NextOpening = %v, want %v", w.NextOpening, at(21, 12, 0))
	}

	w = p.Compute(at(21, 10, 0))
	if !w.IsOpen {
		t.Error("closing instant itself should still be open")
	}
}

func TestContains_InclusiveBounds(t *testing.T) {
	w := tuesdayPolicy().Compute(at(15, 10, 0))

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{name: "reservable start", t: w.ReservableStart, want: true},
		{name: "reservable end", t: w.ReservableEnd, want: true},
		{name: "one microsecond after end", t: w.ReservableEnd.Add(time.Microsecond), want: false},
		{name: "one minute after end", t: w.ReservableEnd.Add(time.Minute), want: false},
		{name: "admission day", t: at(14, 18, 0), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestReservableDates(t *testing.T) {
	w := tuesdayPolicy().Compute(at(15, 10, 0))
	keys := w.ReservableDateKeys()

	want := []string{"2025-01-15", "2025-01-16", "2025-01-17", "2025-01-18", "2025-01-19", "2025-01-20", "2025-01-21"}
	if len(keys) != len(want) {
		t.Fatalf("got %d dates %v, want %d", len(keys), keys, len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("date %d = %s, want %s", i, keys[i], want[i])
		}
	}
}
