package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Simulation defaults
	if cfg.Simulation.PulseMillisols == 0 {
		cfg.Simulation.PulseMillisols = 10
	}
	if cfg.Simulation.Sols == 0 {
		cfg.Simulation.Sols = 1
	}
	if cfg.Simulation.StartSol == 0 {
		cfg.Simulation.StartSol = 1
	}
	if cfg.Simulation.PIDFile == "" {
		cfg.Simulation.PIDFile = "/tmp/marssim.pid"
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "marssim.db"
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = 5 * time.Second
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "marssim"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "marssim"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.ThrottleWindow == 0 {
		cfg.Logging.ThrottleWindow = 30 * time.Second
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Telemetry defaults
	if cfg.Telemetry.Host == "" {
		cfg.Telemetry.Host = "localhost"
	}
	if cfg.Telemetry.Port == 0 {
		cfg.Telemetry.Port = 8085
	}
	if cfg.Telemetry.Path == "" {
		cfg.Telemetry.Path = "/ws"
	}

	// Report archive defaults
	if cfg.Reports.ArchiveDir == "" {
		cfg.Reports.ArchiveDir = "reports"
	}
	if cfg.Reports.ArchiveLevel == "" {
		cfg.Reports.ArchiveLevel = "default"
	}
}
