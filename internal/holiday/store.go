package holiday

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/username/shiftcal/pkg/dateutil"
	"go.uber.org/zap"
)

// Store holds the current holiday override set, keyed by calendar day.
// The set is replaced wholesale on each successful feed refresh; the
// swap is atomic with respect to concurrent lookups, so readers always
// see either the old or the new complete set.
type Store struct {
	mu     sync.RWMutex
	byDate map[string]Record
	logger *zap.Logger
}

// snapshotRecord is the serialized form shared across process
// boundaries: a flat JSON object per day.
type snapshotRecord struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	IsWorkDay bool   `json:"is_work_day"`
	Type      string `json:"type"`
}

// NewStore creates an empty holiday store
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		byDate: make(map[string]Record),
		logger: logger,
	}
}

// ReplaceAll atomically replaces the entire override set. When the
// input holds several records for one date, the first wins.
func (s *Store) ReplaceAll(records []Record) {
	byDate := make(map[string]Record, len(records))
	for _, rec := range records {
		key := dateutil.DateKey(rec.Date)
		if _, ok := byDate[key]; ok {
			continue
		}
		byDate[key] = rec
	}

	s.mu.Lock()
	s.byDate = byDate
	s.mu.Unlock()

	s.logger.Info("Holiday data replaced", zap.Int("records", len(byDate)))
}

// Clear empties the store (holiday source preference set to none)
func (s *Store) Clear() {
	s.mu.Lock()
	s.byDate = make(map[string]Record)
	s.mu.Unlock()

	s.logger.Info("Holiday data cleared")
}

// Lookup returns the override record for the given calendar day
func (s *Store) Lookup(date time.Time) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byDate[dateutil.DateKey(date)]
	return rec, ok
}

// Len returns the number of stored override records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byDate)
}

// Snapshot returns a date-sorted copy of the current override set
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	records := make([]Record, 0, len(s.byDate))
	for _, rec := range s.byDate {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records
}

// SaveFile writes the current set to the snapshot file
func (s *Store) SaveFile(path string) error {
	records := s.Snapshot()

	out := make([]snapshotRecord, len(records))
	for i, rec := range records {
		out[i] = snapshotRecord{
			Date:      dateutil.DateKey(rec.Date),
			Name:      rec.Name,
			IsWorkDay: rec.IsWorkDay,
			Type:      string(rec.Type),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal holiday snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write holiday snapshot: %w", err)
	}

	s.logger.Info("Holiday snapshot saved",
		zap.String("file", path),
		zap.Int("records", len(out)))

	return nil
}

// LoadFile replaces the store contents from a snapshot file. A missing
// file is not an error; the store is simply left empty.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read holiday snapshot: %w", err)
	}

	var in []snapshotRecord
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("failed to parse holiday snapshot: %w", err)
	}

	records := make([]Record, 0, len(in))
	for _, sr := range in {
		date, err := dateutil.ParseDate(sr.Date)
		if err != nil {
			s.logger.Warn("Skipping snapshot record with bad date",
				zap.String("date", sr.Date),
				zap.Error(err))
			continue
		}
		records = append(records, Record{
			Date:      date,
			Name:      sr.Name,
			IsWorkDay: sr.IsWorkDay,
			Type:      Type(sr.Type),
		})
	}

	s.ReplaceAll(records)

	s.logger.Info("Holiday snapshot loaded",
		zap.String("file", path),
		zap.Int("records", len(records)))

	return nil
}
