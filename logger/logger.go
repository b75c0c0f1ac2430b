// Package logger provides the leveled event sink used throughout
// authmaster. Every message, including suppressed ones, is retained in a
// bounded in-memory ring buffer for later inspection; emission goes
// through log/slog and is filtered by the configured level.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Level orders log severities. The zero value is treated as LevelInfo.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelNone  Level = "none"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelNone:  4,
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

func (l Level) rank() int {
	r, ok := levelRank[l]
	if !ok {
		return levelRank[LevelInfo]
	}
	return r
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Entry is one recorded log event.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Data    []any
}

// DefaultCapacity is the ring buffer size used when none is configured.
const DefaultCapacity = 100

// Logger is a leveled sink with a bounded ring of recent entries. It is
// an explicitly constructed instance rather than an ambient singleton;
// pass it to whatever needs to log. All methods are safe for concurrent
// use.
type Logger struct {
	mu       sync.Mutex
	level    Level
	capacity int
	entries  []Entry
	out      *slog.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithLevel sets the emission threshold.
func WithLevel(l Level) Option {
	return func(lg *Logger) {
		if l.Valid() {
			lg.level = l
		}
	}
}

// WithCapacity sets the ring buffer capacity. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(lg *Logger) {
		if n > 0 {
			lg.capacity = n
		}
	}
}

// WithOutput routes emitted records to w as text.
func WithOutput(w io.Writer) Option {
	return func(lg *Logger) {
		if w != nil {
			lg.out = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
		}
	}
}

// WithHandler routes emitted records through a custom slog handler.
func WithHandler(h slog.Handler) Option {
	return func(lg *Logger) {
		if h != nil {
			lg.out = slog.New(h)
		}
	}
}

// New creates a Logger. The default emits text records to stderr at
// LevelInfo with a ring of DefaultCapacity entries.
func New(opts ...Option) *Logger {
	lg := &Logger{
		level:    LevelInfo,
		capacity: DefaultCapacity,
		out: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			// The Logger does its own filtering; the handler passes everything.
			Level: slog.LevelDebug,
		})),
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// SetLevel changes the emission threshold. Buffering is unaffected.
func (lg *Logger) SetLevel(l Level) {
	if !l.Valid() {
		return
	}
	lg.mu.Lock()
	lg.level = l
	lg.mu.Unlock()
}

// Level returns the current emission threshold.
func (lg *Logger) Level() Level {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.level
}

// Entries returns a copy of the buffered entries, oldest first.
func (lg *Logger) Entries() []Entry {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	out := make([]Entry, len(lg.entries))
	copy(out, lg.entries)
	return out
}

// Clear drops all buffered entries.
func (lg *Logger) Clear() {
	lg.mu.Lock()
	lg.entries = nil
	lg.mu.Unlock()
}

func (lg *Logger) Debug(msg string, data ...any) { lg.log(LevelDebug, msg, data) }
func (lg *Logger) Info(msg string, data ...any)  { lg.log(LevelInfo, msg, data) }
func (lg *Logger) Warn(msg string, data ...any)  { lg.log(LevelWarn, msg, data) }
func (lg *Logger) Error(msg string, data ...any) { lg.log(LevelError, msg, data) }

func (lg *Logger) log(level Level, msg string, data []any) {
	lg.mu.Lock()
	lg.entries = append(lg.entries, Entry{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Data:    data,
	})
	if excess := len(lg.entries) - lg.capacity; excess > 0 {
		lg.entries = append(lg.entries[:0], lg.entries[excess:]...)
	}
	emit := lg.level != LevelNone && level.rank() >= lg.level.rank()
	out := lg.out
	lg.mu.Unlock()

	if emit {
		out.Log(context.Background(), level.slogLevel(), msg, data...)
	}
}
