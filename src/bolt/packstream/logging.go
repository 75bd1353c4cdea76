package packstream

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	// LogLevelDebug logs everything, including the codec's own
	// diagnostics (an oversize write that bypasses the sink buffer, a
	// buffer refill that needed more than one underlying read).
	LogLevelDebug LogLevel = iota
	// LogLevelInfo logs informational messages and above.
	LogLevelInfo
	// LogLevelWarn logs warnings and above.
	LogLevelWarn
	// LogLevelError logs only failures.
	LogLevelError
	// LogLevelOff disables all logging.
	LogLevelOff
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel, defaulting to Info for
// anything unrecognized.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LogLevelDebug
	case "INFO":
		return LogLevelInfo
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	case "OFF", "NONE":
		return LogLevelOff
	default:
		return LogLevelInfo
	}
}

// LogCategory lets a caller enable codec diagnostics independently of
// whatever else shares its logger.
type LogCategory string

const (
	// LogCategoryGeneral covers codec lifecycle: construction, reset, flush.
	LogCategoryGeneral LogCategory = "packstream"
	// LogCategoryMarker covers per-value marker dispatch on pack/unpack.
	LogCategoryMarker LogCategory = "marker"
	// LogCategoryBuffer covers reassembly-buffer refills and compaction.
	LogCategoryBuffer LogCategory = "buffer"
)

// Logger is the pluggable logging interface the codec writes through.
// No call on this interface may affect codec semantics, and a disabled
// level/category must be free of allocation beyond the interface call
// itself.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

// CategorizedLogger extends Logger with category-scoped gating, so a
// caller embedding this codec in a larger client can silence buffer
// chatter while keeping marker-level tracing, or vice versa.
type CategorizedLogger interface {
	Logger
	LogWithCategory(level LogLevel, category LogCategory, msg string, keysAndValues ...interface{})
	IsLevelEnabled(level LogLevel) bool
	IsCategoryEnabled(category LogCategory) bool
	SetCategoryLevel(category LogCategory, level LogLevel)
}

// LogEntry is the structured form of one log record. RequestID
// lets a caller correlate every log line produced by one logical
// pack/unpack operation.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	Category  LogCategory            `json:"category"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// NewRequestID mints a correlation id for a logical run of pack/unpack
// calls (e.g. one message's worth of struct fields).
func NewRequestID() string {
	return uuid.NewString()
}

// NoOpLogger discards everything. It is the default.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...interface{}) {}
func (NoOpLogger) Info(string, ...interface{})  {}
func (NoOpLogger) Warn(string, ...interface{})  {}
func (NoOpLogger) Error(string, ...interface{}) {}
func (NoOpLogger) IsDebugEnabled() bool         { return false }
func (NoOpLogger) IsInfoEnabled() bool          { return false }

// ConsoleLogger writes leveled, category-aware lines to stdout/stderr.
type ConsoleLogger struct {
	mu             sync.RWMutex
	level          LogLevel
	categoryLevels map[LogCategory]LogLevel
	debugLog       *log.Logger
	infoLog        *log.Logger
	warnLog        *log.Logger
	errorLog       *log.Logger
	timeFormat     string
}

// NewConsoleLogger creates a console logger at the given global level.
func NewConsoleLogger(level LogLevel) *ConsoleLogger {
	return NewConsoleLoggerWithOutput(level, os.Stdout, os.Stderr)
}

// NewConsoleLoggerWithOutput creates a console logger with explicit
// output streams, useful for tests that want to capture log lines.
func NewConsoleLoggerWithOutput(level LogLevel, stdout, stderr *os.File) *ConsoleLogger {
	return &ConsoleLogger{
		level:          level,
		categoryLevels: make(map[LogCategory]LogLevel),
		debugLog:       log.New(stdout, "", 0),
		infoLog:        log.New(stdout, "", 0),
		warnLog:        log.New(stderr, "", 0),
		errorLog:       log.New(stderr, "", 0),
		timeFormat:     "2006-01-02 15:04:05.000",
	}
}

func (c *ConsoleLogger) formatMessage(level LogLevel, msg string, keysAndValues ...interface{}) string {
	c.mu.RLock()
	timeFormat := c.timeFormat
	c.mu.RUnlock()

	formatted := fmt.Sprintf("[%s] %s [packstream] %s", time.Now().Format(timeFormat), level, msg)
	if len(keysAndValues) > 0 {
		var pairs []string
		for i := 0; i+1 < len(keysAndValues); i += 2 {
			pairs = append(pairs, fmt.Sprintf("%v=%v", keysAndValues[i], keysAndValues[i+1]))
		}
		if len(pairs) > 0 {
			formatted += " | " + strings.Join(pairs, " ")
		}
	}
	return formatted
}

func (c *ConsoleLogger) Debug(msg string, keysAndValues ...interface{}) {
	if c.IsDebugEnabled() {
		c.debugLog.Println(c.formatMessage(LogLevelDebug, msg, keysAndValues...))
	}
}

func (c *ConsoleLogger) Info(msg string, keysAndValues ...interface{}) {
	if c.IsInfoEnabled() {
		c.infoLog.Println(c.formatMessage(LogLevelInfo, msg, keysAndValues...))
	}
}

func (c *ConsoleLogger) Warn(msg string, keysAndValues ...interface{}) {
	if c.IsLevelEnabled(LogLevelWarn) {
		c.warnLog.Println(c.formatMessage(LogLevelWarn, msg, keysAndValues...))
	}
}

func (c *ConsoleLogger) Error(msg string, keysAndValues ...interface{}) {
	if c.IsLevelEnabled(LogLevelError) {
		c.errorLog.Println(c.formatMessage(LogLevelError, msg, keysAndValues...))
	}
}

func (c *ConsoleLogger) IsDebugEnabled() bool { return c.IsLevelEnabled(LogLevelDebug) }
func (c *ConsoleLogger) IsInfoEnabled() bool  { return c.IsLevelEnabled(LogLevelInfo) }

func (c *ConsoleLogger) IsLevelEnabled(level LogLevel) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level <= level
}

func (c *ConsoleLogger) IsCategoryEnabled(category LogCategory) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	level, ok := c.categoryLevels[category]
	if !ok {
		return true
	}
	return level <= c.level
}

func (c *ConsoleLogger) SetCategoryLevel(category LogCategory, level LogLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categoryLevels[category] = level
}

func (c *ConsoleLogger) LogWithCategory(level LogLevel, category LogCategory, msg string, keysAndValues ...interface{}) {
	if !c.IsCategoryEnabled(category) || !c.IsLevelEnabled(level) {
		return
	}
	switch level {
	case LogLevelDebug:
		c.Debug(msg, keysAndValues...)
	case LogLevelInfo:
		c.Info(msg, keysAndValues...)
	case LogLevelWarn:
		c.Warn(msg, keysAndValues...)
	default:
		c.Error(msg, keysAndValues...)
	}
}

var _ CategorizedLogger = (*ConsoleLogger)(nil)
