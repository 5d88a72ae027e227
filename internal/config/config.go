// Package config loads fieldsync configuration from file, environment,
// and defaults.
//
// Precedence: environment (FIELDSYNC_*) over config file over defaults.
// The config file is YAML at ~/.fieldsync/config.yaml unless overridden
// with --config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	API struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`

	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`

	Sync struct {
		GracePeriod        time.Duration `mapstructure:"grace_period"`
		ProgressResetDelay time.Duration `mapstructure:"progress_reset_delay"`
	} `mapstructure:"sync"`

	Heartbeat struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"heartbeat"`

	Daemon struct {
		SpoolDir   string `mapstructure:"spool_dir"`
		ListenAddr string `mapstructure:"listen_addr"`
		LogFile    string `mapstructure:"log_file"`
	} `mapstructure:"daemon"`
}

// Load reads configuration. cfgFile may be empty, in which case the
// default location is used; a missing file is not an error, defaults
// apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	baseDir := filepath.Join(home, ".fieldsync")

	v.SetDefault("api.base_url", "http://localhost:3000")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("db.path", filepath.Join(baseDir, "offline.db"))
	v.SetDefault("sync.grace_period", time.Second)
	v.SetDefault("sync.progress_reset_delay", 2*time.Second)
	v.SetDefault("heartbeat.interval", 15*time.Second)
	v.SetDefault("daemon.spool_dir", filepath.Join(baseDir, "spool"))
	v.SetDefault("daemon.listen_addr", "127.0.0.1:7317")
	v.SetDefault("daemon.log_file", filepath.Join(baseDir, "daemon.log"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(baseDir)
	}

	v.SetEnvPrefix("FIELDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file means defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
