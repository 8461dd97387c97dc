package config

// SimulationConfig holds the clock and world settings for a run
type SimulationConfig struct {
	// Millisols per clock pulse
	PulseMillisols float64 `mapstructure:"pulse_millisols" validate:"millisols"`

	// Sols to simulate when the run command gets no --sols flag
	Sols float64 `mapstructure:"sols" validate:"gt=0"`

	// Mission sol the clock starts on
	StartSol int `mapstructure:"start_sol" validate:"min=1"`

	// Seed for every settlement's random source
	Seed int64 `mapstructure:"seed"`

	// Pulse settlements on separate goroutines
	Parallel bool `mapstructure:"parallel"`

	// Settlement templates from the catalog to found; empty founds all of them
	Settlements []string `mapstructure:"settlements"`

	// PID file guarding against two runs sharing a database
	PIDFile string `mapstructure:"pid_file"`
}

// CatalogConfig points at the building catalog
type CatalogConfig struct {
	// YAML catalog path; empty uses the built-in catalog
	Path string `mapstructure:"path"`
}

// ReportsConfig holds the compressed sol report archive settings
type ReportsConfig struct {
	// Write every sol report to a zstd JSONL archive
	ArchiveEnabled bool `mapstructure:"archive_enabled"`

	// Directory holding one archive file per run
	ArchiveDir string `mapstructure:"archive_dir"`

	// Compression level: fastest, default, better, best
	ArchiveLevel string `mapstructure:"archive_level" validate:"omitempty,oneof=fastest default better best"`
}
