package config

import "time"

// DefaultGracePeriod is applied when the config does not set one.
const DefaultGracePeriod = 10 * time.Second

// GetDefaultConfig returns the default configuration for conductor.
func GetDefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Coordinator: CoordinatorConfig{
			GracePeriod: DefaultGracePeriod,
		},
	}
}

// applyDefaults fills unset fields in a loaded config.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Coordinator.GracePeriod <= 0 {
		cfg.Coordinator.GracePeriod = DefaultGracePeriod
	}
	for i := range cfg.Services {
		if cfg.Services[i].Restart == "" {
			cfg.Services[i].Restart = "transient"
		}
	}
}
