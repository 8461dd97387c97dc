package config

import "time"

// LoggingConfig selects the log sink and how chatty it is
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	// stdout, stderr or file; file needs file_path
	Output   string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// A building function repeating the same complaint is silenced this long
	ThrottleWindow time.Duration `mapstructure:"throttle_window" validate:"gte=0"`
}
