package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/username/shiftcal/internal/schedule"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	s := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"), nil, logger)
	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestSQLiteStore_UpsertGet(t *testing.T) {
	s := openTestStore(t)

	rec := schedule.DayRecord{
		Date:   day(2025, 1, 7),
		Status: schedule.StatusPartial,
		Note:   "早退",
		Shifts: schedule.ShiftSet{2, 3},
	}
	if err := s.Upsert(rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Time of day must not matter for the lookup.
	got, ok, err := s.Get(day(2025, 1, 7).Add(13 * time.Hour))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() missed a stored record")
	}
	if got.Status != schedule.StatusPartial || got.Note != "早退" {
		t.Errorf("Get() = %+v, want partial with note", got)
	}
	if !got.Shifts.Equal(schedule.ShiftSet{2, 3}) {
		t.Errorf("Shifts = %s, want 2,3", got.Shifts)
	}

	if _, ok, _ := s.Get(day(2025, 1, 8)); ok {
		t.Error("Get(unstored date) hit, want miss")
	}
}

func TestSQLiteStore_UpsertReplaces(t *testing.T) {
	s := openTestStore(t)
	d := day(2025, 1, 7)

	if err := s.Upsert(schedule.DayRecord{Date: d, Status: schedule.StatusWork}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Upsert(schedule.DayRecord{Date: d, Status: schedule.StatusRest, Note: "调休"}); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	got, ok, err := s.Get(d)
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if got.Status != schedule.StatusRest || got.Note != "调休" {
		t.Errorf("Get() = %+v, want the replacing rest record", got)
	}

	records, err := s.List(d, d)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("List() returned %d records for one day, want 1", len(records))
	}
}

func TestSQLiteStore_EmptyRecordNotPersisted(t *testing.T) {
	s := openTestStore(t)
	d := day(2025, 1, 7)

	if err := s.Upsert(schedule.DayRecord{Date: d, Status: schedule.StatusWork}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Resetting to unset with no note must remove the row entirely.
	if err := s.Upsert(schedule.DayRecord{Date: d, Status: schedule.StatusUnset}); err != nil {
		t.Fatalf("clearing Upsert() error = %v", err)
	}

	if _, ok, _ := s.Get(d); ok {
		t.Error("Get() hit after clearing, want miss")
	}
}

func TestSQLiteStore_NoteOnlyRecordKept(t *testing.T) {
	s := openTestStore(t)
	d := day(2025, 1, 7)

	if err := s.Upsert(schedule.DayRecord{Date: d, Status: schedule.StatusUnset, Note: "牙医"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, ok, err := s.Get(d)
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if got.Status != schedule.StatusUnset || got.Note != "牙医" {
		t.Errorf("Get() = %+v, want unset record with note", got)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := openTestStore(t)
	d := day(2025, 1, 7)

	if err := s.Upsert(schedule.DayRecord{Date: d, Status: schedule.StatusRest}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Delete(d); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(d); ok {
		t.Error("Get() hit after Delete, want miss")
	}

	// Deleting an absent record is not an error.
	if err := s.Delete(day(2025, 2, 1)); err != nil {
		t.Errorf("Delete(absent) error = %v", err)
	}
}

func TestSQLiteStore_ListRange(t *testing.T) {
	s := openTestStore(t)

	for _, d := range []time.Time{day(2025, 1, 5), day(2025, 1, 10), day(2025, 2, 1)} {
		if err := s.Upsert(schedule.DayRecord{Date: d, Status: schedule.StatusRest}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	records, err := s.List(day(2025, 1, 1), day(2025, 1, 31))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List(January) returned %d records, want 2", len(records))
	}
	if !records[0].Date.Before(records[1].Date) {
		t.Error("List() not ordered by date")
	}
}

func TestSQLiteStore_RecordAdapter(t *testing.T) {
	s := openTestStore(t)
	d := day(2025, 1, 7)

	if _, ok := s.Record(d); ok {
		t.Error("Record() hit on empty store, want miss")
	}

	if err := s.Upsert(schedule.DayRecord{Date: d, Status: schedule.StatusWork}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec, ok := s.Record(d)
	if !ok || rec.Status != schedule.StatusWork {
		t.Errorf("Record() = (%+v, %v), want stored work record", rec, ok)
	}
}

type recordNotifier struct {
	calls int
}

func (n *recordNotifier) RecordChanged() { n.calls++ }

func TestSQLiteStore_Notifications(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	notifier := &recordNotifier{}

	s := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"), notifier, logger)
	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	d := day(2025, 1, 7)
	s.Upsert(schedule.DayRecord{Date: d, Status: schedule.StatusWork})
	s.Delete(d)

	// Deleting a row that does not exist must stay silent.
	s.Delete(d)

	if notifier.calls != 2 {
		t.Errorf("notifier called %d times, want 2", notifier.calls)
	}
}
