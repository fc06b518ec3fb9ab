package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/username/shiftcal/internal/config"
	"github.com/username/shiftcal/internal/holiday"
	"github.com/username/shiftcal/internal/notify"
	"go.uber.org/zap"
)

// Daemon keeps the holiday override set fresh: it refreshes the feed
// on a cron schedule and republishes config-change events so that
// display surfaces re-resolve promptly. Refresh failures are logged
// and leave the prior data intact; there is no retry loop.
type Daemon struct {
	fetcher    *holiday.Fetcher
	store      *holiday.Store
	source     holiday.Source
	cronSpec   string
	configPath string
	events     *notify.Hub
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a daemon instance
func New(fetcher *holiday.Fetcher, store *holiday.Store, source holiday.Source,
	cronSpec, configPath string, events *notify.Hub, logger *zap.Logger) *Daemon {

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		fetcher:    fetcher,
		store:      store,
		source:     source,
		cronSpec:   cronSpec,
		configPath: configPath,
		events:     events,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start runs the daemon until a signal arrives or Stop is called
func (d *Daemon) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(d.cronSpec, d.runRefresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", d.cronSpec, err)
	}

	if err := config.Watch(d.configPath, d.logger, d.events.ConfigChanged); err != nil {
		d.logger.Warn("Config watching unavailable", zap.Error(err))
	}

	d.logger.Info("Daemon started",
		zap.String("refresh_cron", d.cronSpec),
		zap.String("source", d.source.ID))

	// Run an initial refresh immediately so a freshly started daemon
	// does not serve stale overrides until the first scheduled slot.
	go d.runRefresh()

	c.Start()
	defer c.Stop()

	changes := d.events.Subscribe()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			return nil
		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.cancel()
			return nil
		case ev := <-changes:
			d.handleEvent(ev)
		}
	}
}

// handleEvent reacts to in-process data changes. A config edit may
// point the daemon at different feed settings, so it triggers an
// immediate refresh; record and holiday changes are logged so the
// daemon log shows when resolutions went stale.
func (d *Daemon) handleEvent(ev notify.Event) {
	d.logger.Info("Data changed", zap.String("kind", ev.Kind.String()))

	if ev.Kind == notify.KindConfigChanged {
		go d.runRefresh()
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// runRefresh performs a single feed refresh. Concurrent invocations
// are rejected by the fetcher's single-flight guard.
func (d *Daemon) runRefresh() {
	ctx, cancel := context.WithTimeout(d.ctx, time.Minute)
	defer cancel()

	err := d.fetcher.Refresh(ctx, d.source, d.store)
	switch {
	case errors.Is(err, holiday.ErrRefreshInProgress):
		d.logger.Warn("Refresh still running, skipping scheduled run")
	case err != nil:
		d.logger.Error("Scheduled holiday refresh failed, keeping prior data",
			zap.Error(err))
	default:
		d.logger.Info("Scheduled holiday refresh completed",
			zap.Int("records", d.store.Len()))
	}
}
