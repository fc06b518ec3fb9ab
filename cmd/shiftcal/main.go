package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/shiftcal/internal/config"
	"github.com/username/shiftcal/internal/holiday"
	"github.com/username/shiftcal/internal/notify"
	"github.com/username/shiftcal/internal/schedule"
	"github.com/username/shiftcal/internal/store"
	"github.com/username/shiftcal/pkg/dateutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftcal",
		Short: "Work-day and shift schedule calendar",
		Long:  "Resolve any calendar date to a work/off status and shift assignment from explicit records, holiday overrides and repeating patterns",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Daemon.LogFile != "" {
				logger, err = initFileLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(markCmd())
	rootCmd.AddCommand(clearCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(daemonCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired components behind every command
type app struct {
	cfg      *config.Config
	events   *notify.Hub
	records  *store.SQLiteStore
	holidays *holiday.Store
	engine   *schedule.Engine
	resolver *schedule.Resolver
	fetcher  *holiday.Fetcher
}

func initializeApp(cfg *config.Config) (*app, error) {
	events := notify.NewHub(logger)

	records := store.NewSQLiteStore(cfg.Storage.RecordsFile, events, logger)
	if err := records.Open(); err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	holidays := holiday.NewStore(logger)
	if cfg.Holiday.Source != holiday.PreferenceNone {
		if err := holidays.LoadFile(cfg.Holiday.SnapshotFile); err != nil {
			logger.Warn("Failed to load holiday snapshot, continuing without overrides",
				zap.Error(err))
		}
	}

	engine := schedule.NewEngine(cfg.PatternConfig())
	resolver := schedule.NewResolver(records, holidays, engine)

	fetcher := holiday.NewFetcher(
		cfg.Holiday.GetFetchTimeout(),
		cfg.Holiday.SnapshotFile,
		events,
		logger,
	)

	return &app{
		cfg:      cfg,
		events:   events,
		records:  records,
		holidays: holidays,
		engine:   engine,
		resolver: resolver,
		fetcher:  fetcher,
	}, nil
}

func (a *app) Close() {
	if err := a.records.Close(); err != nil {
		logger.Warn("Failed to close record store", zap.Error(err))
	}
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return initializeApp(cfg)
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [date]",
		Short: "Show the work/off status and shifts for a date (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := dateutil.Today()
			if len(args) == 1 {
				var err error
				date, err = dateutil.ParseDate(args[0])
				if err != nil {
					return err
				}
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			printResolution(a.resolver.Resolve(date))
			return nil
		},
	}
}

func monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the per-day schedule for a month (default: current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := dateutil.Today()
			year, month := now.Year(), now.Month()
			if len(args) == 1 {
				t, err := time.ParseInLocation("2006-01", args[0], time.Local)
				if err != nil {
					return fmt.Errorf("invalid month %q (want YYYY-MM)", args[0])
				}
				year, month = t.Year(), t.Month()
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
			last := first.AddDate(0, 1, -1)
			resolutions := a.resolver.ResolveRange(first, last)

			workDays := 0
			fmt.Printf("📅 %s %d\n", month, year)
			fmt.Println("═══════════════════════════════════════════════════════")
			fmt.Println("  Date       | Day | Status | Shifts  | Source")
			fmt.Println("  -----------+-----+--------+---------+----------------")
			for _, res := range resolutions {
				status := "off"
				if res.IsWorkDay {
					status = "work"
					workDays++
				}
				source := res.Source.String()
				if res.HolidayName != "" {
					source = fmt.Sprintf("%s (%s)", source, res.HolidayName)
				}
				fmt.Printf("  %s | %s | %-6s | %-7s | %s\n",
					res.Date.Format("2006-01-02"),
					res.Date.Format("Mon"),
					status,
					res.Shifts,
					source)
			}
			fmt.Printf("\n  Work days: %d of %d\n", workDays, len(resolutions))
			return nil
		},
	}
}

func printResolution(res schedule.Resolution) {
	status := "off day"
	if res.IsWorkDay {
		status = "work day"
	}

	source := res.Source.String()
	if res.HolidayName != "" {
		source = fmt.Sprintf("%s (%s)", source, res.HolidayName)
	}

	fmt.Printf("📅 %s (%s)\n", res.Date.Format("2006-01-02"), res.Date.Format("Mon"))
	fmt.Printf("   Status: %s\n", status)
	fmt.Printf("   Shifts: %s\n", res.Shifts)
	fmt.Printf("   Source: %s\n", source)
	if res.Note != "" {
		fmt.Printf("   Note:   %s\n", res.Note)
	}
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
