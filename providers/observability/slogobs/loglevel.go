package slogobs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is more verbose than slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// GetLogLevelFromEnv reads JSONMEND_LOG_LEVEL, then LOG_LEVEL. Unset or
// unknown values yield INFO.
func GetLogLevelFromEnv() slog.Level {
	value := os.Getenv("JSONMEND_LOG_LEVEL")
	if value == "" {
		value = os.Getenv("LOG_LEVEL")
	}
	if value == "" {
		return slog.LevelInfo
	}

	level, err := ParseLogLevel(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using INFO\n", err)
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel parses TRACE, DEBUG, INFO, WARN/WARNING or ERROR,
// case-insensitively.
func ParseLogLevel(value string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}

// levelString returns the label for level, bucketing in-between values down.
func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
