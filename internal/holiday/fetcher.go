package holiday

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultFetchTimeout = 10 * time.Second

// ErrRefreshInProgress is returned when a refresh is requested while
// another one is still running. Refreshes are single-flight; the
// caller retries later if it cares.
var ErrRefreshInProgress = errors.New("holiday refresh already in progress")

// Notifier receives a signal after the override set has been replaced
type Notifier interface {
	HolidayChanged()
}

// Fetcher downloads a calendar feed, parses it and replaces the
// holiday store contents. Any failure (transport, status, parse,
// empty result) leaves the prior store contents intact; there are no
// automatic retries.
type Fetcher struct {
	httpClient   *http.Client
	parser       *Parser
	snapshotFile string
	notifier     Notifier
	logger       *zap.Logger

	mu       sync.Mutex
	inflight bool
}

// NewFetcher creates a feed fetcher. snapshotFile may be empty to skip
// snapshot persistence; notifier may be nil.
func NewFetcher(timeout time.Duration, snapshotFile string, notifier Notifier, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		parser:       NewParser(logger),
		snapshotFile: snapshotFile,
		notifier:     notifier,
		logger:       logger,
	}
}

// Refresh fetches the source feed and atomically replaces the store
// contents on success. Exactly one refresh runs at a time.
func (f *Fetcher) Refresh(ctx context.Context, src Source, store *Store) error {
	f.mu.Lock()
	if f.inflight {
		f.mu.Unlock()
		f.logger.Warn("Refresh already running, skipping concurrent request",
			zap.String("source", src.ID))
		return ErrRefreshInProgress
	}
	f.inflight = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight = false
		f.mu.Unlock()
	}()

	f.logger.Info("Fetching holiday feed",
		zap.String("source", src.ID),
		zap.String("url", src.URL))

	body, err := f.fetch(ctx, src)
	if err != nil {
		return err
	}

	records := f.parser.Parse(src, string(body))
	if len(records) == 0 {
		return fmt.Errorf("feed %s produced no holiday records", src.ID)
	}

	store.ReplaceAll(records)

	if f.snapshotFile != "" {
		if err := store.SaveFile(f.snapshotFile); err != nil {
			// The in-memory set is already updated; snapshot staleness
			// only affects other processes until the next refresh.
			f.logger.Warn("Failed to save holiday snapshot", zap.Error(err))
		}
	}

	if f.notifier != nil {
		f.notifier.HolidayChanged()
	}

	f.logger.Info("Holiday refresh completed",
		zap.String("source", src.ID),
		zap.Int("records", len(records)))

	return nil
}

func (f *Fetcher) fetch(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	return body, nil
}
