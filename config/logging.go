package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error. Default: info
	Level string `yaml:"level,omitempty"`

	// Format is json or text. Default: json
	Format string `yaml:"format,omitempty"`

	// AddSource adds the source file and line to every record.
	AddSource bool `yaml:"add_source,omitempty"`
}

// GetLevel parses the configured level.
func (l *LoggingConfig) GetLevel() (slog.Level, error) {
	if l == nil || l.Level == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid level %q: %w", l.Level, err)
	}
	return level, nil
}

// GetFormat returns "json" or "text".
func (l *LoggingConfig) GetFormat() string {
	if l != nil && strings.EqualFold(l.Format, "text") {
		return "text"
	}
	return "json"
}

// NewLogger builds a logger writing to w, or to stderr when w is nil.
// An invalid level falls back to info.
func NewLogger(l *LoggingConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level, _ := l.GetLevel()
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: l != nil && l.AddSource,
	}

	if l.GetFormat() == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
