package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_WithDoesNotMutateReceiver(t *testing.T) {
	base := Snapshot{}
	next := base.With("2025-01-08", "09:00", Reservation{Name: "Alice", Passphrase: "1"})

	assert.Empty(t, base)
	assert.True(t, next.Has("2025-01-08", "09:00"))
	assert.False(t, base.Has("2025-01-08", "09:00"))
}

func TestSnapshot_WithoutPrunesEmptyDate(t *testing.T) {
	snap := Snapshot{}.
		With("2025-01-08", "09:00", Reservation{Name: "Alice", Passphrase: "1"}).
		With("2025-01-09", "12:00", Reservation{Name: "Bob", Passphrase: "2"})

	next := snap.Without("2025-01-08", "09:00")

	_, ok := next["2025-01-08"]
	assert.False(t, ok, "date key should be removed once empty")
	assert.True(t, next.Has("2025-01-09", "12:00"))
	assert.True(t, snap.Has("2025-01-08", "09:00"), "receiver must be unchanged")
}

func TestSnapshot_WithoutKeepsNonEmptyDate(t *testing.T) {
	snap := Snapshot{}.
		With("2025-01-08", "09:00", Reservation{Name: "Alice"}).
		With("2025-01-08", "12:00", Reservation{Name: "Alice"})

	next := snap.Without("2025-01-08", "09:00")
	require.Contains(t, next, "2025-01-08")
	assert.Len(t, next["2025-01-08"], 1)
}

func TestSnapshot_NormalizeDropsEmptyDates(t *testing.T) {
	var nilSnap Snapshot
	assert.NotNil(t, nilSnap.Normalize())

	snap := Snapshot{"2025-01-08": {}, "2025-01-09": {"00:00": {Name: "x"}}}
	out := snap.Normalize()
	assert.NotContains(t, out, "2025-01-08")
	assert.Contains(t, out, "2025-01-09")
}

func TestSnapshot_EntriesSorted(t *testing.T) {
	snap := Snapshot{
		"2025-01-09": {"03:00": {Name: "c"}},
		"2025-01-08": {"21:00": {Name: "b"}, "00:00": {Name: "a"}},
	}
	entries := snap.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
	assert.Equal(t, "c", entries[2].Name)
	assert.Equal(t, 3, snap.Count())
}

func TestSnapshot_NamesTrimmedAndDistinct(t *testing.T) {
	snap := Snapshot{
		"2025-01-08": {"00:00": {Name: " Bob "}, "03:00": {Name: "Alice"}},
		"2025-01-09": {"00:00": {Name: "Bob"}, "03:00": {Name: "   "}},
	}
	assert.Equal(t, []string{"Alice", "Bob"}, snap.Names())
}

func TestSnapshot_PublicHidesPassphrase(t *testing.T) {
	snap := Snapshot{"2025-01-08": {"09:00": {Name: "Alice", Passphrase: "secret"}}}
	assert.Equal(t, map[string]map[string]string{"2025-01-08": {"09:00": "Alice"}}, snap.Public())
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "00:00", want: Clock{0, 0}},
		{in: "21:00", want: Clock{21, 0}},
		{in: "09:30", want: Clock{9, 30}},
		{in: "9:00", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseDate_LocalMidnight(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	d, err := ParseDate("2025-01-08", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, loc), d)
	assert.Equal(t, "2025-01-08", FormatDate(d))
	assert.Equal(t, time.Date(2025, 1, 8, 15, 0, 0, 0, loc), Clock{15, 0}.On(d))

	_, err = ParseDate("2025-13-01", loc)
	assert.Error(t, err)
}
