package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxNoteLength is the maximum note length in runes, enforced at the
// edit boundary (CLI), not by the storage layer.
const MaxNoteLength = 15

// DayStatus represents the explicit user-assigned status of a day
type DayStatus int

const (
	// StatusUnset carries no status information; a record holding it
	// exists only for the sake of its note.
	StatusUnset DayStatus = iota
	StatusRest
	StatusWork
	StatusPartial
)

// String returns the config/CLI spelling of the status
func (s DayStatus) String() string {
	switch s {
	case StatusRest:
		return "rest"
	case StatusWork:
		return "work"
	case StatusPartial:
		return "partial"
	default:
		return "unset"
	}
}

// ParseStatus parses a CLI status argument
func ParseStatus(s string) (DayStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rest", "off":
		return StatusRest, nil
	case "work":
		return StatusWork, nil
	case "partial":
		return StatusPartial, nil
	case "unset":
		return StatusUnset, nil
	default:
		return StatusUnset, fmt.Errorf("unknown status %q (want rest, work or partial)", s)
	}
}

// DayRecord is an explicit per-date user override. At most one record
// exists per calendar day; Shifts is meaningful only for StatusPartial.
type DayRecord struct {
	Date   time.Time
	Status DayStatus
	Note   string
	Shifts ShiftSet
}

// IsEmpty reports whether the record carries no information and
// therefore should not be persisted.
func (r DayRecord) IsEmpty() bool {
	return r.Status == StatusUnset && r.Note == ""
}

// ShiftSet is a normalized set of shift identifiers (1-4), kept sorted
// and free of duplicates.
type ShiftSet []int

// NewShiftSet builds a normalized shift set from the given identifiers
func NewShiftSet(ids ...int) ShiftSet {
	seen := make(map[int]bool, len(ids))
	out := make(ShiftSet, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// Contains reports whether the set includes the given shift identifier
func (s ShiftSet) Contains(id int) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Equal reports whether two shift sets hold the same identifiers
func (s ShiftSet) Equal(other ShiftSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no shifts are active
func (s ShiftSet) IsEmpty() bool {
	return len(s) == 0
}

// String formats the set as a comma list, or "-" when empty
func (s ShiftSet) String() string {
	if len(s) == 0 {
		return "-"
	}
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// ParseShiftSet parses a comma list of shift identifiers ("2,3").
// An empty string yields an empty set.
func ParseShiftSet(s string) (ShiftSet, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return ShiftSet{}, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid shift identifier %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	return NewShiftSet(ids...), nil
}

// ValidShifts returns the full set of valid shift identifiers for the
// configured number of shift slots: 2 slots cover day/night ({2,4}),
// 3 add a swing shift ({2,3,4}), 4 add an early shift ({1,2,3,4}).
// Unsupported slot counts map to the 3-slot set.
func ValidShifts(slots int) ShiftSet {
	switch slots {
	case 2:
		return ShiftSet{2, 4}
	case 4:
		return ShiftSet{1, 2, 3, 4}
	default:
		return ShiftSet{2, 3, 4}
	}
}
