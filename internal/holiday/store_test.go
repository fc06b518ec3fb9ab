package holiday

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func sampleRecords() []Record {
	return []Record{
		{Date: time.Date(2025, 10, 1, 0, 0, 0, 0, time.Local), Name: "国庆节", IsWorkDay: false, Type: TypeHoliday},
		{Date: time.Date(2025, 9, 28, 0, 0, 0, 0, time.Local), Name: "补班", IsWorkDay: true, Type: TypeAdjustedWork},
	}
}

func TestStore_ReplaceAllAndLookup(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewStore(logger)

	store.ReplaceAll(sampleRecords())

	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}

	// Lookup ignores the time of day.
	rec, ok := store.Lookup(time.Date(2025, 10, 1, 15, 30, 0, 0, time.Local))
	if !ok {
		t.Fatal("Lookup(2025-10-01) missed")
	}
	if rec.Name != "国庆节" || rec.IsWorkDay {
		t.Errorf("Lookup = %+v, want 国庆节 rest day", rec)
	}

	if _, ok := store.Lookup(time.Date(2025, 10, 2, 0, 0, 0, 0, time.Local)); ok {
		t.Error("Lookup(2025-10-02) hit, want miss")
	}
}

func TestStore_ReplaceAllFirstWins(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewStore(logger)

	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	store.ReplaceAll([]Record{
		{Date: day, Name: "元旦", Type: TypeHoliday},
		{Date: day, Name: "新年", Type: TypeHoliday},
	})

	rec, _ := store.Lookup(day)
	if rec.Name != "元旦" {
		t.Errorf("Name = %q, want the first record's 元旦", rec.Name)
	}
}

func TestStore_Clear(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewStore(logger)

	store.ReplaceAll(sampleRecords())
	store.Clear()

	if store.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", store.Len())
	}
}

func TestStore_SnapshotSorted(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewStore(logger)

	store.ReplaceAll(sampleRecords())

	snap := store.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot len = %d, want 2", len(snap))
	}
	if !snap[0].Date.Before(snap[1].Date) {
		t.Errorf("Snapshot not date-sorted: %s before %s",
			snap[0].Date.Format("2006-01-02"), snap[1].Date.Format("2006-01-02"))
	}
}

func TestStore_ReplaceAllAtomicUnderConcurrentReads(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewStore(logger)

	const days = 20
	makeSet := func(name string) []Record {
		records := make([]Record, 0, days)
		for i := 0; i < days; i++ {
			records = append(records, Record{
				Date: time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.Local),
				Name: name,
				Type: TypeHoliday,
			})
		}
		return records
	}
	first := makeSet("first")
	second := makeSet("second")

	store.ReplaceAll(first)

	stop := make(chan struct{})
	var wg sync.WaitGroup

	// Readers must only ever observe one complete set, never a mix
	// or a partially filled map.
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				snap := store.Snapshot()
				if len(snap) != days {
					t.Errorf("Snapshot len = %d, want %d", len(snap), days)
					return
				}
				name := snap[0].Name
				for _, rec := range snap {
					if rec.Name != name {
						t.Errorf("Snapshot mixes sets: %q and %q", name, rec.Name)
						return
					}
				}

				rec, ok := store.Lookup(time.Date(2025, 1, 10, 0, 0, 0, 0, time.Local))
				if !ok {
					t.Error("Lookup missed a date present in both sets")
					return
				}
				if rec.Name != "first" && rec.Name != "second" {
					t.Errorf("Lookup returned %q, want a record from either set", rec.Name)
					return
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			store.ReplaceAll(second)
		} else {
			store.ReplaceAll(first)
		}
	}

	close(stop)
	wg.Wait()
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := filepath.Join(t.TempDir(), "holidays.json")

	store := NewStore(logger)
	store.ReplaceAll(sampleRecords())
	if err := store.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	loaded := NewStore(logger)
	if err := loaded.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if loaded.Len() != 2 {
		t.Fatalf("loaded Len() = %d, want 2", loaded.Len())
	}

	rec, ok := loaded.Lookup(time.Date(2025, 9, 28, 0, 0, 0, 0, time.Local))
	if !ok {
		t.Fatal("Lookup(2025-09-28) missed after reload")
	}
	if rec.Name != "补班" || !rec.IsWorkDay || rec.Type != TypeAdjustedWork {
		t.Errorf("reloaded record = %+v, want 补班 work day", rec)
	}
}

func TestStore_LoadFileMissing(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewStore(logger)

	if err := store.LoadFile(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Errorf("LoadFile(missing) error = %v, want nil", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestStore_LoadFileCorrupt(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := filepath.Join(t.TempDir(), "holidays.json")

	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(logger)
	if err := store.LoadFile(path); err == nil {
		t.Error("LoadFile(corrupt) error = nil, want error")
	}
}
