// logging.go - Structured Logging Interface for the sdei Module
//
// Per-subsystem configuration for structured logging. The interface is
// deliberately tiny so external frameworks (logiface, zerolog, slog, ...)
// can be bound with a few lines; [LogifaceLogger] is provided for logiface.
//
// Dispatch-path callers must check IsEnabled before building an entry:
// the hot path may run in a non-maskable context where even formatting is
// unwelcome, and the no-op logger keeps it to a single interface call.

package sdei

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

// LogLevel represents the severity of a log message.
type LogLevel int32

const (
	// LevelDebug for detailed diagnostic information.
	LevelDebug LogLevel = iota

	// LevelInfo for general informational messages.
	LevelInfo

	// LevelWarn for warning conditions, e.g. the unsafe-but-tolerated
	// "exception during handler" diagnostic.
	LevelWarn

	// LevelError for error conditions.
	LevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
}

// LogEntry represents a structured log entry.
type LogEntry struct {
	Timestamp time.Time
	Category  string // "stacks", "entry", "dispatch"
	Message   string
	Err       error
	Level     LogLevel
	CPU       int
}

// Logger is the structured logging interface.
type Logger interface {
	Log(entry LogEntry)
	IsEnabled(level LogLevel) bool
}

// NoOpLogger discards all entries. It is the default.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards everything.
func NewNoOpLogger() NoOpLogger { return NoOpLogger{} }

// Log discards the entry.
func (NoOpLogger) Log(LogEntry) {}

// IsEnabled always returns false.
func (NoOpLogger) IsEnabled(LogLevel) bool { return false }

// DefaultLogger implements Logger using os.Stderr.
type DefaultLogger struct {
	mu    sync.Mutex
	Out   *os.File // Public field for testing
	level atomic.Int32
}

// NewDefaultLogger creates a logger with the specified minimum level.
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	l := &DefaultLogger{Out: os.Stderr}
	l.level.Store(int32(level))
	return l
}

// IsEnabled reports whether entries at the given level would be written.
func (l *DefaultLogger) IsEnabled(level LogLevel) bool {
	return level >= LogLevel(l.level.Load())
}

// Log writes the entry as a single line.
func (l *DefaultLogger) Log(e LogEntry) {
	if !l.IsEnabled(e.Level) {
		return
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if e.Err != nil {
		fmt.Fprintf(l.Out, "%s %s [%s] cpu=%d %s: %v\n",
			ts.Format(time.RFC3339Nano), e.Level, e.Category, e.CPU, e.Message, e.Err)
	} else {
		fmt.Fprintf(l.Out, "%s %s [%s] cpu=%d %s\n",
			ts.Format(time.RFC3339Nano), e.Level, e.Category, e.CPU, e.Message)
	}
}

// LogifaceLogger adapts a logiface logger to the Logger interface.
type LogifaceLogger struct {
	L *logiface.Logger[logiface.Event]
}

// NewLogifaceLogger wraps the given logiface logger.
func NewLogifaceLogger(l *logiface.Logger[logiface.Event]) *LogifaceLogger {
	return &LogifaceLogger{L: l}
}

// IsEnabled reports whether the underlying logger is usable; fine-grained
// level filtering is delegated to logiface itself.
func (l *LogifaceLogger) IsEnabled(LogLevel) bool {
	return l != nil && l.L != nil
}

// Log forwards the entry to the underlying logiface logger.
func (l *LogifaceLogger) Log(e LogEntry) {
	if !l.IsEnabled(e.Level) {
		return
	}
	var b *logiface.Builder[logiface.Event]
	switch e.Level {
	case LevelDebug:
		b = l.L.Debug()
	case LevelInfo:
		b = l.L.Info()
	case LevelWarn:
		b = l.L.Warning()
	default:
		b = l.L.Err()
	}
	b = b.Str("category", e.Category).Int("cpu", e.CPU)
	if e.Err != nil {
		b = b.Err(e.Err)
	}
	b.Log(e.Message)
}
