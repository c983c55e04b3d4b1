// Package config loads the Storage Node daemon's configuration, mirroring
// internal/naming/config's viper-backed precedence chain.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is a Storage Node's full runtime configuration. ClientPort,
// CommandPort, RegistrationPort, and RootDir are read from the config file
// like every other field, but the `storage` command always overwrites them
// with its four required positional arguments (§6).
type Config struct {
	ClientPort       int    `mapstructure:"client_port" yaml:"client_port"`
	CommandPort      int    `mapstructure:"command_port" yaml:"command_port"`
	RegistrationPort int    `mapstructure:"registration_port" yaml:"registration_port"`
	RootDir          string `mapstructure:"root_dir" yaml:"root_dir"`
	IndexDir         string `mapstructure:"index_dir" yaml:"index_dir"`
	StorageIP        string `mapstructure:"storage_ip" yaml:"storage_ip"`
	NamingIP         string `mapstructure:"naming_ip" yaml:"naming_ip"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

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

// Default returns the zero-config defaults.
func Default() Config {
	return Config{
		ClientPort:       9049,
		CommandPort:      9050,
		RegistrationPort: 8050,
		RootDir:          "./data",
		IndexDir:         "./index",
		StorageIP:        "127.0.0.1",
		NamingIP:         "127.0.0.1",
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
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads configFile (if non-empty) or the working directory's
// lattice-storage.yaml (if present) over Default(), so fields the file does
// not set keep their defaults. LATTICE_ environment variables override only
// keys that the config file sets; when no config file is found, Load returns
// Default() without reading the environment.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LATTICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("lattice-storage")
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
