package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/username/shiftcal/internal/holiday"
	"github.com/username/shiftcal/internal/schedule"
	"github.com/username/shiftcal/pkg/dateutil"
)

// Config represents application configuration
type Config struct {
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Holiday  HolidayConfig  `mapstructure:"holiday"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
}

// ScheduleConfig represents the default-pattern configuration
type ScheduleConfig struct {
	Mode          string  `mapstructure:"mode"`           // "standard", "custom-weekly" or "shift-cycle"
	WeeklyPattern []bool  `mapstructure:"weekly_pattern"` // 7 entries, Sunday first
	CycleStart    string  `mapstructure:"cycle_start"`    // anchor date, YYYY-MM-DD
	CyclePattern  []bool  `mapstructure:"cycle_pattern"`
	ShiftSlots    int     `mapstructure:"shift_slots"` // 2, 3 or 4
	PartialDays   bool    `mapstructure:"partial_days"`
	PartialCycle  [][]int `mapstructure:"partial_cycle"`
}

// HolidayConfig represents the holiday feed configuration
type HolidayConfig struct {
	Source       string `mapstructure:"source"` // preset id, or "none"
	URL          string `mapstructure:"url"`    // optional feed URL override
	Tagged       bool   `mapstructure:"tagged"` // whether an overridden feed carries work/rest markers
	SnapshotFile string `mapstructure:"snapshot_file"`
	FetchTimeout string `mapstructure:"fetch_timeout"`
}

// StorageConfig represents record storage configuration
type StorageConfig struct {
	RecordsFile string `mapstructure:"records_file"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	RefreshCron string `mapstructure:"refresh_cron"` // cron spec for scheduled feed refresh
	LogFile     string `mapstructure:"log_file"`
	LogLevel    string `mapstructure:"log_level"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.shiftcal")
		v.AddConfigPath("/etc/shiftcal")
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration and fills in defaults.
// Degenerate pattern arrays are deliberately NOT rejected here; the
// pattern engine downgrades them to the standard weekday default.
func (c *Config) Validate() error {
	switch c.Schedule.Mode {
	case "", schedule.ModeStandard, schedule.ModeCustomWeekly, schedule.ModeShiftCycle:
	default:
		return fmt.Errorf("schedule.mode must be %q, %q or %q, got %q",
			schedule.ModeStandard, schedule.ModeCustomWeekly, schedule.ModeShiftCycle,
			c.Schedule.Mode)
	}
	if c.Schedule.Mode == "" {
		c.Schedule.Mode = schedule.ModeStandard
	}

	if c.Schedule.ShiftSlots < 2 || c.Schedule.ShiftSlots > 4 {
		c.Schedule.ShiftSlots = 3
	}

	if c.Schedule.Mode == schedule.ModeShiftCycle && c.Schedule.CycleStart != "" {
		if _, err := dateutil.ParseDate(c.Schedule.CycleStart); err != nil {
			return fmt.Errorf("schedule.cycle_start: %w", err)
		}
	}

	if c.Holiday.Source == "" {
		c.Holiday.Source = "cn"
	}
	if c.Holiday.Source != holiday.PreferenceNone && c.Holiday.URL == "" {
		if _, ok := holiday.SourceFor(c.Holiday.Source); !ok {
			return fmt.Errorf("holiday.source must be one of %v or %q, got %q",
				holiday.Presets(), holiday.PreferenceNone, c.Holiday.Source)
		}
	}
	if c.Holiday.SnapshotFile == "" {
		c.Holiday.SnapshotFile = "holidays.json"
	}

	if c.Storage.RecordsFile == "" {
		c.Storage.RecordsFile = "shiftcal.db"
	}

	return nil
}

// PatternConfig converts the schedule section into the pattern
// engine's configuration
func (c *Config) PatternConfig() schedule.Config {
	var cycleStart time.Time
	if c.Schedule.CycleStart != "" {
		if t, err := dateutil.ParseDate(c.Schedule.CycleStart); err == nil {
			cycleStart = t
		}
	}

	return schedule.Config{
		Mode:               c.Schedule.Mode,
		WeeklyPattern:      c.Schedule.WeeklyPattern,
		CycleStart:         cycleStart,
		CyclePattern:       c.Schedule.CyclePattern,
		ShiftSlots:         c.Schedule.ShiftSlots,
		PartialDaysEnabled: c.Schedule.PartialDays,
		PartialCycle:       c.Schedule.PartialCycle,
	}
}

// FeedSource returns the effective holiday feed source. The boolean is
// false when holiday overrides are disabled (source = none).
func (c *Config) FeedSource() (holiday.Source, bool) {
	if c.Holiday.Source == holiday.PreferenceNone {
		return holiday.Source{}, false
	}

	if c.Holiday.URL != "" {
		return holiday.Source{
			ID:     "custom",
			Name:   "Custom feed",
			URL:    c.Holiday.URL,
			Tagged: c.Holiday.Tagged,
		}, true
	}

	src, ok := holiday.SourceFor(c.Holiday.Source)
	return src, ok
}

// GetFetchTimeout returns the holiday feed fetch timeout
func (c *HolidayConfig) GetFetchTimeout() time.Duration {
	if c.FetchTimeout == "" {
		return 10 * time.Second
	}
	duration, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return duration
}

// GetRefreshCron returns the daemon refresh schedule. Default: daily
// at 06:00.
func (c *DaemonConfig) GetRefreshCron() string {
	if c.RefreshCron == "" {
		return "0 6 * * *"
	}
	return c.RefreshCron
}
