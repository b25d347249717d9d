// Package colors gives every reservation holder a stable display colour.
package colors

import (
	"strings"

	"slotbook/pkg/model"
)

const (
	// Fallback is used for a name that is not part of the assignment.
	Fallback = "#E2E2E2"
	// Empty is the background of a slot with no reservation.
	Empty = "#F7FAFC"
)

var Palette = []string{
	"#FFD1DC", "#FFDFD3", "#FFFFD1", "#D1FFD6", "#D1F5FF",
	"#E0D1FF", "#FFD1F5", "#D1FFF3", "#FFE5D1", "#E2E2E2",
	"#C4F5E1", "#DAE8FC", "#FFABAB", "#FFC3A0", "#D5AAFF",
	"#85E3FF", "#B9FBC0", "#FBE7C6", "#FF9CEE", "#A0C4FF",
}

// Assignment maps a trimmed holder name to its colour.
type Assignment map[string]string

// Assign sorts the distinct trimmed names in snap and hands out palette
// entries round-robin by sorted index, so the result depends only on the set
// of names.
func Assign(snap model.Snapshot) Assignment {
	names := snap.Names()
	out := make(Assignment, len(names))
	for i, name := range names {
		out[name] = Palette[i%len(Palette)]
	}
	return out
}

func (a Assignment) ColorFor(name string) string {
	if name == "" {
		return Empty
	}
	if c, ok := a[strings.TrimSpace(name)]; ok {
		return c
	}
	return Fallback
}
