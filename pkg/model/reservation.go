package model

import (
	"sort"
	"strings"
)

// Reservation is the holder of one slot. The passphrase is stored as entered;
// it is compared for equality on cancel and is visible to the admin dump.
type Reservation struct {
	Name       string `json:"name" bson:"name"`
	Passphrase string `json:"password" bson:"password"`
}

// Holder is the name used for quota matching and colour assignment.
// Matching is case-sensitive on the trimmed name.
func (r Reservation) Holder() string {
	return strings.TrimSpace(r.Name)
}

// Snapshot is the complete reservation state, keyed by date (YYYY-MM-DD) and
// then by time of day (HH:MM). A date key is present only while it holds at
// least one reservation.
type Snapshot map[string]map[string]Reservation

type Entry struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Reservation
}

func (s Snapshot) Get(date, clock string) (Reservation, bool) {
	day, ok := s[date]
	if !ok {
		return Reservation{}, false
	}
	r, ok := day[clock]
	return r, ok
}

func (s Snapshot) Has(date, clock string) bool {
	_, ok := s.Get(date, clock)
	return ok
}

// Clone copies both levels of the mapping so the result can be modified
// without touching s. Empty date maps are dropped on the way.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for date, day := range s {
		if len(day) == 0 {
			continue
		}
		copied := make(map[string]Reservation, len(day))
		for clock, r := range day {
			copied[clock] = r
		}
		out[date] = copied
	}
	return out
}

// With returns a copy of s holding r at (date, clock).
func (s Snapshot) With(date, clock string, r Reservation) Snapshot {
	out := s.Clone()
	day, ok := out[date]
	if !ok {
		day = map[string]Reservation{}
		out[date] = day
	}
	day[clock] = r
	return out
}

// Without returns a copy of s with (date, clock) removed. A date left with no
// reservations is removed entirely.
func (s Snapshot) Without(date, clock string) Snapshot {
	out := s.Clone()
	day, ok := out[date]
	if !ok {
		return out
	}
	delete(day, clock)
	if len(day) == 0 {
		delete(out, date)
	}
	return out
}

// Normalize returns a non-nil snapshot without empty date entries. Stores
// call it on everything they read.
func (s Snapshot) Normalize() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return s.Clone()
}

// Entries lists every reservation sorted by date, then time.
func (s Snapshot) Entries() []Entry {
	entries := make([]Entry, 0, s.Count())
	for date, day := range s {
		for clock, r := range day {
			entries = append(entries, Entry{Date: date, Time: clock, Reservation: r})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].Time < entries[j].Time
	})
	return entries
}

// Names returns the distinct trimmed holder names in lexicographic order.
func (s Snapshot) Names() []string {
	seen := map[string]struct{}{}
	for _, day := range s {
		for _, r := range day {
			if name := r.Holder(); name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Snapshot) Count() int {
	n := 0
	for _, day := range s {
		n += len(day)
	}
	return n
}

// Public strips passphrases, leaving date -> time -> name.
func (s Snapshot) Public() map[string]map[string]string {
	out := make(map[string]map[string]string, len(s))
	for date, day := range s {
		if len(day) == 0 {
			continue
		}
		names := make(map[string]string, len(day))
		for clock, r := range day {
			names[clock] = r.Name
		}
		out[date] = names
	}
	return out
}
