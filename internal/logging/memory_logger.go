package logging

import (
	"fmt"
	"strings"
	"sync"
)

// Level identifies which Logger method produced an Entry.
type Level string

const (
	LevelVerbose Level = "verbose"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Entry is one recorded log line.
type Entry struct {
	Level   Level
	Message string
}

// MemoryLogger records every message in memory. Tests use it to assert on
// failures that are reported only through the log.
// Safe for concurrent use by multiple goroutines.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryLogger creates an empty MemoryLogger.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Verbose(format string, args ...interface{}) {
	l.record(LevelVerbose, format, args)
}

func (l *MemoryLogger) Info(format string, args ...interface{}) {
	l.record(LevelInfo, format, args)
}

func (l *MemoryLogger) Error(format string, args ...interface{}) {
	l.record(LevelError, format, args)
}

func (l *MemoryLogger) record(level Level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: msg})
}

// Entries returns a copy of everything recorded so far.
func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Errors returns the messages logged at error level.
func (l *MemoryLogger) Errors() []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == LevelError {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any message contains substr.
func (l *MemoryLogger) Contains(substr string) bool {
	for _, e := range l.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
