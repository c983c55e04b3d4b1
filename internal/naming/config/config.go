// Package config loads the Naming Service daemon's configuration, in the
// style of the teacher's pkg/config: viper-backed, env-overridable,
// flags-over-env-over-file-over-defaults precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the Naming Service's full runtime configuration. ServicePort and
// RegistrationPort are read from the config file like every other field, but
// the `naming` command always overwrites them with its two required
// positional arguments (§6).
type Config struct {
	ServicePort      int `mapstructure:"service_port" yaml:"service_port"`
	RegistrationPort int `mapstructure:"registration_port" yaml:"registration_port"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	Replication ReplicationConfig `mapstructure:"replication" yaml:"replication"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing and Pyroscope profiling.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls continuous Pyroscope profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// ReplicationConfig mirrors replicate.Config, surfaced so its tunables are
// part of the same config/env precedence chain as everything else.
type ReplicationConfig struct {
	Threshold  int `mapstructure:"threshold" yaml:"threshold"`
	Workers    int `mapstructure:"workers" yaml:"workers"`
	QueueDepth int `mapstructure:"queue_depth" yaml:"queue_depth"`
}

// Default returns the zero-config defaults, used when no config file is
// present and no env/flag overrides apply.
func Default() Config {
	return Config{
		ServicePort:      8049,
		RegistrationPort: 8050,
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			Endpoint:   "localhost:4317",
			Insecure:   true,
			SampleRate: 1.0,
			Profiling: ProfilingConfig{
				Enabled:      false,
				Endpoint:     "http://localhost:4040",
				ProfileTypes: []string{"cpu", "alloc_objects"},
			},
		},
		Replication: ReplicationConfig{
			Threshold:  10,
			Workers:    4,
			QueueDepth: 256,
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads configFile (if non-empty) or the working directory's
// lattice-naming.yaml (if present) over Default(), so fields the file does
// not set keep their defaults. LATTICE_ environment variables override only
// keys that the config file sets; when no config file is found, Load returns
// Default() without reading the environment. CLI arguments are applied by
// the caller on top of the result.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LATTICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("lattice-naming")
		v.SetConfigType("yaml")
	}

	cfg := Default()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		return &cfg, nil
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
