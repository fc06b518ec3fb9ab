package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Watch watches the config file and invokes onChange after every edit.
// Consumers re-resolve through a freshly loaded config; the callback
// only signals that cached resolutions may be stale.
func Watch(configPath string, logger *zap.Logger, onChange func()) error {
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

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config for watching: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("Config file changed",
			zap.String("file", e.Name),
			zap.String("op", e.Op.String()))
		onChange()
	})
	v.WatchConfig()

	logger.Info("Watching config file", zap.String("file", v.ConfigFileUsed()))
	return nil
}
