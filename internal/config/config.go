package config

import (
	"os"
	"strings"

	"codeberg.org/veldr/pointerstat/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultDPI          = 1600.0
	defaultTickMS       = 15
	defaultIdleSleepUS  = 100
	defaultRefreshHz    = 30
	defaultWindowMS     = 5000
	defaultListenAddr   = "127.0.0.1:8790"
	defaultTelemetryDB  = "/var/lib/pointerstat/telemetry.db"
	maxRefreshHz        = 1000
	configPathEnv       = "POINTERSTAT_CONFIG"
)

type Config struct {
	Device      string  `mapstructure:"device"`
	DPI         float64 `mapstructure:"dpi"`
	TickMS      int     `mapstructure:"tick_ms"`
	IdleSleepUS int     `mapstructure:"idle_sleep_us"`
	RefreshHz   int     `mapstructure:"refresh_hz"`
	WindowMS    int     `mapstructure:"window_ms"`
	Listen      string  `mapstructure:"listen"`
	Monitor     bool    `mapstructure:"monitor"`
	Telemetry   bool    `mapstructure:"telemetry"`
	TelemetryDB string  `mapstructure:"database"`
	LogLevel    string  `mapstructure:"log_level"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("pointerstat", pflag.ContinueOnError)
	// Tolerate foreign flags (e.g. the test binary's) on the command line
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.String("device", "", "Input device path (empty for auto-discovery)")
	flags.Float64("dpi", defaultDPI, "Device resolution in counts per inch")
	flags.Int("tick-ms", defaultTickMS, "Polling-rate aggregation tick in milliseconds")
	flags.Int("idle-sleep-us", defaultIdleSleepUS, "Sleep between empty polls in microseconds")
	flags.Int("refresh-hz", defaultRefreshHz, "Consumer refresh rate in Hz")
	flags.Int("window-ms", defaultWindowMS, "Speed averaging window in milliseconds")
	flags.String("listen", defaultListenAddr, "Address for the state WebSocket endpoint")
	flags.Bool("monitor", false, "Render live readouts in the terminal")
	flags.Bool("telemetry", false, "Record refresh samples to the telemetry database")
	flags.String("database", defaultTelemetryDB, "Path to the telemetry database")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("device", "")
	v.SetDefault("dpi", defaultDPI)
	v.SetDefault("tick_ms", defaultTickMS)
	v.SetDefault("idle_sleep_us", defaultIdleSleepUS)
	v.SetDefault("refresh_hz", defaultRefreshHz)
	v.SetDefault("window_ms", defaultWindowMS)
	v.SetDefault("listen", defaultListenAddr)
	v.SetDefault("monitor", false)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", defaultTelemetryDB)
	v.SetDefault("log_level", DefaultLogLevel)

	if path := os.Getenv(configPathEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pointerstat")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err).
				WithMessage("Failed to read config file")
		}
	}

	// Command line flags override config file values
	flags.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		v.Set(key, f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if !isValidLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.DPI <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "dpi must be positive")
	}
	if c.TickMS <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "tick_ms must be positive")
	}
	if c.IdleSleepUS <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "idle_sleep_us must be positive")
	}
	if c.RefreshHz <= 0 || c.RefreshHz > maxRefreshHz {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "refresh_hz must be between 1 and 1000")
	}
	if c.WindowMS <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "window_ms must be positive")
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "database required when telemetry is enabled")
	}

	return nil
}

// IsDebug reports whether debug logging is requested
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsVerbose reports whether info-level logging is requested
func (c *Config) IsVerbose() bool {
	return c.LogLevel == "debug" || c.LogLevel == "info"
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
