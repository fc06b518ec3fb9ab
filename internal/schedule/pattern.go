package schedule

import (
	"time"

	"github.com/username/shiftcal/pkg/dateutil"
)

// Pattern modes. Unknown values behave like ModeStandard.
const (
	ModeStandard     = "standard"
	ModeCustomWeekly = "custom-weekly"
	ModeShiftCycle   = "shift-cycle"
)

// Config holds the pattern configuration used to compute default day
// statuses when no explicit record or holiday override exists. It is a
// singleton, replaced wholesale on edit.
type Config struct {
	Mode string

	// WeeklyPattern is indexed by weekday with Sunday = 0; used in
	// custom-weekly mode.
	WeeklyPattern []bool

	// CycleStart anchors the shift cycle to an absolute date.
	CycleStart time.Time

	// CyclePattern is the repeating work/rest sequence for shift-cycle
	// mode; its length defines the cycle length.
	CyclePattern []bool

	// ShiftSlots is the configured number of sub-day shift slots (2-4).
	ShiftSlots int

	// PartialDaysEnabled turns on partial-day (per-shift) tracking.
	PartialDaysEnabled bool

	// PartialCycle assigns a default shift set to each cycle day; it
	// must have the same length as CyclePattern to take effect.
	PartialCycle [][]int
}

// Engine computes default work/rest statuses from a pattern config.
// All methods are pure; degenerate configurations (empty cycle, length
// mismatch, unknown mode) fall back to the standard weekday pattern
// rather than failing, since a default must always exist.
type Engine struct {
	cfg Config
}

// NewEngine creates a pattern engine for the given configuration
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's pattern configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// PartialDaysEnabled reports whether partial-day tracking is on
func (e *Engine) PartialDaysEnabled() bool {
	return e.cfg.PartialDaysEnabled
}

// IsWorkDay computes the default work/rest flag for a date with no
// stored data.
func (e *Engine) IsWorkDay(date time.Time) bool {
	switch e.effectiveMode() {
	case ModeCustomWeekly:
		return e.cfg.WeeklyPattern[int(date.Weekday())]
	case ModeShiftCycle:
		return e.cfg.CyclePattern[e.cycleIndex(date)]
	default:
		return dateutil.IsWeekday(date)
	}
}

// DefaultShifts computes the default shift set for a date. With
// partial-day tracking enabled and a usable partial cycle it returns
// the cycle day's shift set; otherwise the full valid set on work days
// and the empty set on rest days.
func (e *Engine) DefaultShifts(date time.Time) ShiftSet {
	if e.cfg.PartialDaysEnabled && e.partialCycleUsable() {
		return NewShiftSet(e.cfg.PartialCycle[e.cycleIndex(date)]...)
	}

	if e.IsWorkDay(date) {
		return ValidShifts(e.cfg.ShiftSlots)
	}
	return ShiftSet{}
}

// effectiveMode downgrades degenerate configurations to ModeStandard
func (e *Engine) effectiveMode() string {
	switch e.cfg.Mode {
	case ModeCustomWeekly:
		if len(e.cfg.WeeklyPattern) == 7 {
			return ModeCustomWeekly
		}
	case ModeShiftCycle:
		if len(e.cfg.CyclePattern) > 0 && !e.cfg.CycleStart.IsZero() {
			return ModeShiftCycle
		}
	}
	return ModeStandard
}

// cycleIndex maps a date onto the repeating cycle. The floor modulo
// keeps the index in [0, L) for dates before the anchor as well.
func (e *Engine) cycleIndex(date time.Time) int {
	days := dateutil.DaysBetween(e.cfg.CycleStart, date)
	return dateutil.FloorMod(days, len(e.cfg.CyclePattern))
}

func (e *Engine) partialCycleUsable() bool {
	return e.effectiveMode() == ModeShiftCycle &&
		len(e.cfg.PartialCycle) == len(e.cfg.CyclePattern)
}
