// Package diag collects the per-run diagnostic messages that back the pull
// request review comment. Components append to an explicit *Log threaded
// through their calls; the caller assembles the final report from it. Every
// append is also emitted through zerolog so the Action log and the comment
// body never disagree about what happened.
package diag

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/cffauthor/pkg/logging"
)

// Level classifies a diagnostic entry.
type Level int

// Diagnostic levels, lowest first.
const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Entry is a single collected diagnostic message.
type Entry struct {
	Level   Level
	Message string
}

// Log accumulates diagnostics for one run. The zero value is usable but
// silent; use New to also emit entries through a zerolog logger.
type Log struct {
	logger  *zerolog.Logger
	entries []Entry
}

// New returns a Log that mirrors every entry to logger. A nil logger falls
// back to the default logger.
func New(logger *zerolog.Logger) *Log {
	if logger == nil {
		logger = logging.Default()
	}
	return &Log{logger: logger}
}

// Infof records an info-level diagnostic.
func (l *Log) Infof(format string, args ...any) {
	l.append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf records a warning-level diagnostic.
func (l *Log) Warnf(format string, args ...any) {
	l.append(LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf records an error-level diagnostic.
func (l *Log) Errorf(format string, args ...any) {
	l.append(LevelError, fmt.Sprintf(format, args...))
}

func (l *Log) append(level Level, msg string) {
	l.entries = append(l.entries, Entry{Level: level, Message: msg})
	if l.logger == nil {
		return
	}
	switch level {
	case LevelError:
		l.logger.Error().Msg(msg)
	case LevelWarning:
		l.logger.Warn().Msg(msg)
	default:
		l.logger.Info().Msg(msg)
	}
}

// Entries returns all collected entries in append order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Infos returns the distinct info messages in first-seen order.
func (l *Log) Infos() []string { return l.messages(LevelInfo) }

// Warnings returns the distinct warning messages in first-seen order.
func (l *Log) Warnings() []string { return l.messages(LevelWarning) }

// Errors returns the distinct error messages in first-seen order.
func (l *Log) Errors() []string { return l.messages(LevelError) }

// HasErrors reports whether any error-level entry was recorded.
func (l *Log) HasErrors() bool {
	for _, e := range l.entries {
		if e.Level == LevelError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any warning-level entry was recorded.
func (l *Log) HasWarnings() bool {
	for _, e := range l.entries {
		if e.Level == LevelWarning {
			return true
		}
	}
	return false
}

// Merge appends the entries of other without re-emitting them to the logger.
func (l *Log) Merge(other *Log) {
	if other == nil {
		return
	}
	l.entries = append(l.entries, other.entries...)
}

func (l *Log) messages(level Level) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range l.entries {
		if e.Level != level {
			continue
		}
		if _, dup := seen[e.Message]; dup {
			continue
		}
		seen[e.Message] = struct{}{}
		out = append(out, e.Message)
	}
	return out
}
