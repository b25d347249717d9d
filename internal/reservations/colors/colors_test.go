package colors

import (
	"fmt"
	"testing"

	"slotbook/pkg/model"
)

func TestAssign_SortedRoundRobin(t *testing.T) {
	snap := model.Snapshot{
		"2025-01-16": {"09:00": {Name: "Carol"}, "12:00": {Name: " Alice"}},
		"2025-01-17": {"09:00": {Name: "Bob"}, "12:00": {Name: "Alice "}},
	}
	got := Assign(snap)

	want := map[string]string{"Alice": Palette[0], "Bob": Palette[1], "Carol": Palette[2]}
	if len(got) != len(want) {
		t.Fatalf("got %d names, want %d: %v", len(got), len(want), got)
	}
	for name, color := range want {
		if got[name] != color {
			t.Errorf("%s = %s, want %s", name, got[name], color)
		}
	}
}

func TestAssign_IndependentOfStorageOrder(t *testing.T) {
	a := model.Snapshot{
		"2025-01-16": {"09:00": {Name: "Zed"}},
		"2025-01-18": {"00:00": {Name: "Amy"}},
	}
	b := model.Snapshot{
		"2025-01-20": {"21:00": {Name: "Amy"}},
		"2025-01-15": {"03:00": {Name: "Zed"}},
	}
	ca, cb := Assign(a), Assign(b)
	for _, name := range []string{"Amy", "Zed"} {
		if ca[name] != cb[name] {
			t.Errorf("%s: %s vs %s", name, ca[name], cb[name])
		}
	}
}

func TestAssign_WrapsPalette(t *testing.T) {
	snap := model.Snapshot{}
	for i := 0; i < len(Palette)+1; i++ {
		snap = snap.With("2025-01-16", fmt.Sprintf("%02d:00", i), model.Reservation{Name: fmt.Sprintf("user%02d", i)})
	}
	got := Assign(snap)
	if got["user20"] != Palette[0] {
		t.Errorf("21st name = %s, want %s", got["user20"], Palette[0])
	}
}

func TestColorFor(t *testing.T) {
	a := Assignment{"Alice": "#FFD1DC"}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "known", in: "Alice", want: "#FFD1DC"},
		{name: "known untrimmed", in: "  Alice ", want: "#FFD1DC"},
		{name: "unknown", in: "Mallory", want: Fallback},
		{name: "empty slot", in: "", want: Empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.ColorFor(tt.in); got != tt.want {
				t.Errorf("ColorFor(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
