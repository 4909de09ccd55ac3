package dmconfig

// Defaults returns a Config populated with conservative built-in values.
// Load starts from this and overlays whatever the config file/environment
// supply, so every field has a sane value even with an empty file.
func Defaults() *Config {
	return &Config{
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
				ProfileTypes: []string{"cpu", "alloc_objects", "alloc_space"},
			},
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Device: DeviceConfig{
			DmV:  "1.2",
			Lang: "en-US",
		},
		Persistent: PersistentConfig{
			Enabled:    false,
			MaxEntries: 256,
		},
	}
}
