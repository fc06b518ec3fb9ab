package schedule

import (
	"time"

	"github.com/username/shiftcal/internal/holiday"
	"github.com/username/shiftcal/pkg/dateutil"
)

// Tier identifies which data source decided a day's status
type Tier int

const (
	TierPattern Tier = iota
	TierHoliday
	TierRecord
)

// String returns a display label for the tier
func (t Tier) String() string {
	switch t {
	case TierRecord:
		return "explicit record"
	case TierHoliday:
		return "holiday override"
	default:
		return "pattern default"
	}
}

// Resolution is the authoritative status of a single calendar day
type Resolution struct {
	Date      time.Time
	IsWorkDay bool
	Shifts    ShiftSet
	Source    Tier

	// Note is the user's note for the day, surfaced even when the
	// record that holds it did not decide the status.
	Note string

	// HolidayName is set when a holiday record was consulted.
	HolidayName string
}

// RecordSource provides explicit per-date user records. Lookup misses
// are reported via the boolean, never as errors; storage failures must
// be absorbed (and logged) by the implementation so that resolution
// stays total.
type RecordSource interface {
	Record(date time.Time) (DayRecord, bool)
}

// HolidaySource provides holiday/makeup-day overrides by date
type HolidaySource interface {
	Lookup(date time.Time) (holiday.Record, bool)
}

// Resolver combines an explicit record store, a holiday store and a
// pattern engine into one authoritative answer per date. Precedence is
// strict: explicit record, then holiday override, then pattern default.
// Resolve is referentially transparent given fixed store contents and
// never fails; every date has a defined default.
type Resolver struct {
	records  RecordSource
	holidays HolidaySource
	engine   *Engine
}

// NewResolver creates a resolver over the given collaborators. Either
// source may be nil, in which case its tier is skipped.
func NewResolver(records RecordSource, holidays HolidaySource, engine *Engine) *Resolver {
	return &Resolver{
		records:  records,
		holidays: holidays,
		engine:   engine,
	}
}

// Resolve computes the status and shift set for a single date
func (r *Resolver) Resolve(date time.Time) Resolution {
	res := Resolution{Date: dateutil.StartOfDay(date)}

	var note string
	if r.records != nil {
		if rec, ok := r.records.Record(date); ok {
			note = rec.Note
			if rec.Status != StatusUnset {
				res.IsWorkDay = rec.Status == StatusWork || rec.Status == StatusPartial
				res.Shifts = r.recordShifts(rec)
				res.Source = TierRecord
				res.Note = note
				return res
			}
			// StatusUnset with a note: no status override, but the
			// note is still surfaced. Fall through.
		}
	}
	res.Note = note

	if r.holidays != nil {
		if h, ok := r.holidays.Lookup(date); ok {
			res.IsWorkDay = h.IsWorkDay
			res.Shifts = r.boolShifts(h.IsWorkDay)
			res.Source = TierHoliday
			res.HolidayName = h.Name
			return res
		}
	}

	res.IsWorkDay = r.engine.IsWorkDay(date)
	if r.engine.PartialDaysEnabled() {
		res.Shifts = r.engine.DefaultShifts(date)
	} else {
		res.Shifts = r.boolShifts(res.IsWorkDay)
	}
	res.Source = TierPattern
	return res
}

// ResolveRange resolves every day in [from, to] inclusive
func (r *Resolver) ResolveRange(from, to time.Time) []Resolution {
	from = dateutil.StartOfDay(from)
	to = dateutil.StartOfDay(to)

	out := make([]Resolution, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, r.Resolve(d))
	}
	return out
}

func (r *Resolver) recordShifts(rec DayRecord) ShiftSet {
	switch rec.Status {
	case StatusPartial:
		return NewShiftSet(rec.Shifts...)
	case StatusWork:
		return ValidShifts(r.engine.Config().ShiftSlots)
	default:
		return ShiftSet{}
	}
}

func (r *Resolver) boolShifts(isWorkDay bool) ShiftSet {
	if isWorkDay {
		return ValidShifts(r.engine.Config().ShiftSlots)
	}
	return ShiftSet{}
}
