package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/username/shiftcal/internal/schedule"
	"github.com/username/shiftcal/pkg/dateutil"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS day_records (
	date   TEXT PRIMARY KEY,
	status INTEGER NOT NULL,
	note   TEXT NOT NULL DEFAULT '',
	shifts TEXT NOT NULL DEFAULT ''
);
`

// Notifier receives a signal after any record write
type Notifier interface {
	RecordChanged()
}

// SQLiteStore persists explicit day records, keyed by calendar date.
// Uniqueness per day is enforced by the primary key. Records that
// carry no information (unset status and no note) are deleted rather
// than stored, so the resolver behaves identically whether such a
// record ever existed.
type SQLiteStore struct {
	path     string
	db       *sql.DB
	notifier Notifier
	logger   *zap.Logger
}

// NewSQLiteStore creates a store at the given database path. notifier
// may be nil.
func NewSQLiteStore(path string, notifier Notifier, logger *zap.Logger) *SQLiteStore {
	return &SQLiteStore{
		path:     path,
		notifier: notifier,
		logger:   logger,
	}
}

// Open opens the database and creates the schema if needed
func (s *SQLiteStore) Open() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db
	s.logger.Info("Record store opened", zap.String("file", s.path))
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the record for a calendar day, if one exists
func (s *SQLiteStore) Get(date time.Time) (schedule.DayRecord, bool, error) {
	row := s.db.QueryRow(
		`SELECT date, status, note, shifts FROM day_records WHERE date = ?`,
		dateutil.DateKey(date))

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return schedule.DayRecord{}, false, nil
	}
	if err != nil {
		return schedule.DayRecord{}, false, fmt.Errorf("failed to read day record: %w", err)
	}
	return rec, true, nil
}

// Upsert writes the record for its calendar day, replacing any
// existing one. A no-information record is deleted instead.
func (s *SQLiteStore) Upsert(rec schedule.DayRecord) error {
	if rec.IsEmpty() {
		return s.Delete(rec.Date)
	}

	shifts := ""
	if rec.Status == schedule.StatusPartial {
		shifts = schedule.NewShiftSet(rec.Shifts...).String()
		if shifts == "-" {
			shifts = ""
		}
	}

	_, err := s.db.Exec(
		`INSERT INTO day_records (date, status, note, shifts) VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET status = excluded.status,
		                                 note = excluded.note,
		                                 shifts = excluded.shifts`,
		dateutil.DateKey(rec.Date), int(rec.Status), rec.Note, shifts)
	if err != nil {
		return fmt.Errorf("failed to write day record: %w", err)
	}

	s.logger.Info("Day record saved",
		zap.String("date", dateutil.DateKey(rec.Date)),
		zap.String("status", rec.Status.String()))

	if s.notifier != nil {
		s.notifier.RecordChanged()
	}
	return nil
}

// Delete removes the record for a calendar day
func (s *SQLiteStore) Delete(date time.Time) error {
	res, err := s.db.Exec(
		`DELETE FROM day_records WHERE date = ?`, dateutil.DateKey(date))
	if err != nil {
		return fmt.Errorf("failed to delete day record: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Info("Day record deleted",
			zap.String("date", dateutil.DateKey(date)))
		if s.notifier != nil {
			s.notifier.RecordChanged()
		}
	}
	return nil
}

// List returns all records in [from, to] inclusive, ordered by date
func (s *SQLiteStore) List(from, to time.Time) ([]schedule.DayRecord, error) {
	rows, err := s.db.Query(
		`SELECT date, status, note, shifts FROM day_records
		 WHERE date >= ? AND date <= ? ORDER BY date`,
		dateutil.DateKey(from), dateutil.DateKey(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list day records: %w", err)
	}
	defer rows.Close()

	records := make([]schedule.DayRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list day records: %w", err)
	}
	return records, nil
}

// Record adapts the store to the resolver's RecordSource collaborator.
// Storage errors are logged and absorbed as misses so that resolution
// stays total.
func (s *SQLiteStore) Record(date time.Time) (schedule.DayRecord, bool) {
	rec, ok, err := s.Get(date)
	if err != nil {
		s.logger.Warn("Record lookup failed, treating as miss",
			zap.String("date", dateutil.DateKey(date)),
			zap.Error(err))
		return schedule.DayRecord{}, false
	}
	return rec, ok
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (schedule.DayRecord, error) {
	var dateStr, note, shiftsStr string
	var status int

	if err := row.Scan(&dateStr, &status, &note, &shiftsStr); err != nil {
		return schedule.DayRecord{}, err
	}

	date, err := dateutil.ParseDate(dateStr)
	if err != nil {
		return schedule.DayRecord{}, err
	}

	shifts, err := schedule.ParseShiftSet(shiftsStr)
	if err != nil {
		return schedule.DayRecord{}, err
	}

	return schedule.DayRecord{
		Date:   date,
		Status: schedule.DayStatus(status),
		Note:   note,
		Shifts: shifts,
	}, nil
}
