package dmconfig

import (
	"github.com/oma-dm/goclient/internal/logger"
	"github.com/oma-dm/goclient/internal/telemetry"
	"github.com/oma-dm/goclient/pkg/mo/devinfo"
	"github.com/oma-dm/goclient/pkg/mo/dmacc"
	"github.com/oma-dm/goclient/pkg/mo/persistent"
)

// LoggerConfig converts to internal/logger's configuration shape.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// TelemetryConfig converts to internal/telemetry's tracing configuration.
func (c *Config) TelemetryConfig(serviceName, serviceVersion string) telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

// ProfilingConfig converts to internal/telemetry's profiling configuration.
func (c *Config) ProfilingConfig(serviceName, serviceVersion string) telemetry.ProfilingConfig {
	return telemetry.ProfilingConfig{
		Enabled:        c.Telemetry.Profiling.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Endpoint:       c.Telemetry.Profiling.Endpoint,
		ProfileTypes:   c.Telemetry.Profiling.ProfileTypes,
	}
}

// DevInfo converts the device section into the DevInfo MO's seed type.
func (c *Config) DevInfo() devinfo.Info {
	return devinfo.Info{
		DevId: c.Device.DevId,
		Man:   c.Device.Man,
		Mod:   c.Device.Mod,
		DmV:   c.Device.DmV,
		Lang:  c.Device.Lang,
	}
}

// AccountSeeds converts the accounts section into the DMAcc MO's seed type.
func (c *Config) AccountSeeds() []dmacc.AccountSeed {
	seeds := make([]dmacc.AccountSeed, len(c.Accounts))
	for i, a := range c.Accounts {
		auths := make([]dmacc.AuthSeed, len(a.Auths))
		for j, auth := range a.Auths {
			auths[j] = dmacc.AuthSeed{
				Level:  auth.Level,
				Type:   auth.Type,
				Name:   auth.Name,
				Secret: auth.Secret,
				Data:   auth.Data,
			}
		}
		seeds[i] = dmacc.AccountSeed{
			ServerID: a.ServerID,
			AddrType: a.AddrType,
			Addr:     a.Addr,
			Auths:    auths,
		}
	}
	return seeds
}

// PersistentMOConfig converts the persistent section into pkg/mo/persistent's
// Config, for callers that register the ConfigCache MO when Enabled.
func (c *Config) PersistentMOConfig() persistent.Config {
	return persistent.Config{
		Path:       c.Persistent.Path,
		MaxEntries: c.Persistent.MaxEntries,
	}
}
