// Package dmconfig loads and validates this client's configuration:
// logging, observability, the device identity and server account
// definitions that seed the DMTree's mandatory DevInfo/DMAcc subtrees, and
// the optional persistent MO's storage location.
//
// Configuration sources, highest precedence first:
//  1. Environment variables (OMADM_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Environment variables override only keys that the configuration file
// itself sets; when no configuration file is found, Load returns the
// defaults and reads no environment variables.
package dmconfig

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the client.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Device     DeviceConfig     `mapstructure:"device" validate:"required" yaml:"device"`
	Accounts   []AccountConfig  `mapstructure:"accounts" validate:"required,min=1,dive" yaml:"accounts"`
	Persistent PersistentConfig `mapstructure:"persistent" yaml:"persistent"`
}

// LoggingConfig controls logging behavior, mirroring internal/logger.Config.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output encoding.
	// Valid values: text, json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing and Pyroscope profiling,
// mirroring internal/telemetry.Config/ProfilingConfig.
type TelemetryConfig struct {
	Enabled    bool            `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string          `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool            `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64         `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
	Profiling  ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls continuous profiling via grafana/pyroscope-go.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig controls whether Prometheus metrics collection is enabled.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DeviceConfig seeds the mandatory DevInfo subtree.
type DeviceConfig struct {
	DevId string `mapstructure:"dev_id" validate:"required" yaml:"dev_id"`
	Man   string `mapstructure:"manufacturer" yaml:"manufacturer"`
	Mod   string `mapstructure:"model" yaml:"model"`
	DmV   string `mapstructure:"dm_version" validate:"required" yaml:"dm_version"`
	Lang  string `mapstructure:"lang" yaml:"lang"`
}

// AuthConfig describes one AppAuth credential entry to seed under an
// account, mirroring pkg/mo/dmacc.AuthSeed.
type AuthConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=CLCRED SRVCRED" yaml:"level"`
	Type   string `mapstructure:"type" validate:"required,oneof=BASIC DIGEST" yaml:"type"`
	Name   string `mapstructure:"name" yaml:"name"`
	Secret string `mapstructure:"secret" yaml:"secret"`
	Data   []byte `mapstructure:"data" yaml:"data,omitempty"`
}

// AccountConfig describes one server account to seed under the mandatory
// DMAcc subtree, mirroring pkg/mo/dmacc.AccountSeed.
type AccountConfig struct {
	ServerID string       `mapstructure:"server_id" validate:"required" yaml:"server_id"`
	AddrType string       `mapstructure:"addr_type" yaml:"addr_type"`
	Addr     string       `mapstructure:"addr" validate:"required" yaml:"addr"`
	Auths    []AuthConfig `mapstructure:"auths" yaml:"auths,omitempty"`
}

// PersistentConfig controls the example Badger-backed ConfigCache MO,
// mirroring pkg/mo/persistent.Config.
type PersistentConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxEntries int    `mapstructure:"max_entries" validate:"omitempty,gt=0" yaml:"max_entries"`
}

// Load reads configuration from configPath (or the default search path if
// empty), environment variables, and built-in defaults, then validates the
// result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if found {
		if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			durationDecodeHook(),
		))); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path in YAML form, restricted to owner read/write
// since account secrets may live in it.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("OMADM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("omadm")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}
