package shared

// Log levels understood by every Logger implementation
const (
	LevelDebug   = "DEBUG"
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// Metadata keys with a meaning beyond display
const (
	// MetaSource names the emitting building function or settlement
	MetaSource = "source"
	// MetaTemplate is the unformatted message, identical for every repeat
	// of a diagnostic whatever values it carries
	MetaTemplate = "template"
)

// Logger is the logging port used by domain code.
//
// Throttling loggers key their suppression window on MetaSource plus
// MetaTemplate, falling back to the message when no template is given.
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Log(level, message string, metadata map[string]interface{}) {}
