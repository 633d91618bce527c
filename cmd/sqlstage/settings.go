package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sqlstage/sqlstage/internal/playback"
	"github.com/sqlstage/sqlstage/internal/types"
)

const envPrefix = "SQLSTAGE_"

// settings are the host-side knobs: playback pacing and log verbosity. The
// engine itself is configured purely through functional options; these exist
// so a demo run can be tuned without editing code.
type settings struct {
	Speed    string        `mapstructure:"speed"`
	Interval time.Duration `mapstructure:"interval"`
	Log      struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// loadSettings layers built-in defaults, an optional .env file, and SQLSTAGE_*
// environment variables (SQLSTAGE_LOG_LEVEL becomes log.level), lowest to
// highest precedence.
func loadSettings() (*settings, error) {
	v := viper.New()
	v.SetDefault("speed", string(playback.SpeedNormal))
	v.SetDefault("interval", playback.DefaultBaseInterval.String())
	v.SetDefault("log.level", "info")

	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
		// .env is optional; defaults and environment still apply
	}

	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]
		if !strings.HasPrefix(key, envPrefix) {
			continue
		}
		propKey := strings.TrimPrefix(key, envPrefix)
		propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
		v.Set(propKey, value)
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return &s, nil
}

// runConfig is the validated form of settings a command runs with.
type runConfig struct {
	speed    playback.Speed
	interval time.Duration
	logLevel types.LogLevel
}

// resolveSettings loads the layered settings, lets flags set on this
// invocation override them, validates the result and configures the default
// logger.
func resolveSettings(cmd *cobra.Command) (*runConfig, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("speed") {
		s.Speed, _ = flags.GetString("speed")
	}
	if flags.Changed("interval") {
		s.Interval, _ = flags.GetDuration("interval")
	}
	if rootLogLevel != "" {
		s.Log.Level = rootLogLevel
	}

	speed, err := playback.ParseSpeed(s.Speed)
	if err != nil {
		return nil, err
	}
	if s.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", s.Interval)
	}
	level, err := parseLogLevel(s.Log.Level)
	if err != nil {
		return nil, err
	}
	types.DefaultLogger.SetLevel(level)

	return &runConfig{speed: speed, interval: s.Interval, logLevel: level}, nil
}

func parseLogLevel(raw string) (types.LogLevel, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return types.LogLevelDebug, nil
	case "info":
		return types.LogLevelInfo, nil
	case "warning", "warn":
		return types.LogLevelWarning, nil
	case "error":
		return types.LogLevelError, nil
	case "none":
		return types.LogLevelNone, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warning, error, or none)", raw)
	}
}
