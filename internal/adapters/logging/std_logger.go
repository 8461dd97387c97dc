package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/config"
)

var levelRank = map[string]int{
	shared.LevelDebug:   0,
	shared.LevelInfo:    1,
	shared.LevelWarning: 2,
	shared.LevelError:   3,
}

// configLevels maps the config spelling onto the logger levels
var configLevels = map[string]string{
	"debug": shared.LevelDebug,
	"info":  shared.LevelInfo,
	"warn":  shared.LevelWarning,
	"error": shared.LevelError,
}

// StdLogger writes "[component] LEVEL message key=value" lines through the
// standard library logger, or one JSON object per line.
type StdLogger struct {
	component string
	minRank   int
	json      bool
	out       *log.Logger
}

// NewStdLogger creates a logger for component that drops entries below level
// (debug, info, warn or error)
func NewStdLogger(component, level, format string, w io.Writer) (*StdLogger, error) {
	lvl, ok := configLevels[strings.ToLower(level)]
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	flags := log.LstdFlags
	if format == "json" {
		flags = 0
	}
	return &StdLogger{
		component: component,
		minRank:   levelRank[lvl],
		json:      format == "json",
		out:       log.New(w, "", flags),
	}, nil
}

// NewStdLoggerFromConfig opens the configured output and returns the logger
// with a close function for the output.
func NewStdLoggerFromConfig(component string, cfg *config.LoggingConfig) (*StdLogger, func() error, error) {
	var w io.Writer
	closeFn := func() error { return nil }
	switch cfg.Output {
	case "stderr":
		w = os.Stderr
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closeFn = f, f.Close
	default:
		w = os.Stdout
	}

	logger, err := NewStdLogger(component, cfg.Level, cfg.Format, w)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}

// With returns a logger sharing the output under another component name
func (l *StdLogger) With(component string) *StdLogger {
	clone := *l
	clone.component = component
	return &clone
}

// Log implements shared.Logger
func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank[shared.LevelInfo]
	}
	if rank < l.minRank {
		return
	}

	if l.json {
		entry := make(map[string]interface{}, len(metadata)+3)
		for k, v := range metadata {
			if k != shared.MetaTemplate {
				entry[k] = v
			}
		}
		entry["level"] = level
		entry["component"] = l.component
		entry["msg"] = message
		data, err := json.Marshal(entry)
		if err != nil {
			l.out.Printf(`{"level":"ERROR","component":%q,"msg":"unencodable log entry: %v"}`, l.component, err)
			return
		}
		l.out.Print(string(data))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", l.component, level, message)
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		if k != shared.MetaTemplate {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	l.out.Print(b.String())
}

var _ shared.Logger = (*StdLogger)(nil)
