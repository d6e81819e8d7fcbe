package debuglog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
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
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo // Default to INFO
	}
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	logger       = newDiscardLogger()
	logFile      *os.File
)

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// DefaultPath is where logs go when Setup is given no explicit file.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hackers", "hackers.log")
}

// Setup configures the logging system with the specified level and optional file path.
// If filePath is empty, defaults to ~/.hackers/hackers.log.
func Setup(level LogLevel, filePath ...string) error {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if level == LevelOff {
		logger = newDiscardLogger()
		return nil
	}

	logPath := DefaultPath()
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	l := logrus.New()
	l.SetOutput(f)
	l.SetLevel(level.logrus())
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})

	logFile = f
	logger = l
	return nil
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Close closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = newDiscardLogger()
	currentLevel = LevelOff
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

func entry(fields logrus.Fields) (*logrus.Entry, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if currentLevel == LevelOff {
		return nil, false
	}
	return logger.WithFields(fields), true
}

func logf(level LogLevel, fields logrus.Fields, format string, args ...any) {
	e, ok := entry(fields)
	if !ok || level < GetLevel() {
		return
	}
	e.Logf(level.logrus(), format, args...)
}

func Debugf(format string, args ...any) { logf(LevelDebug, nil, format, args...) }

func Infof(format string, args ...any) { logf(LevelInfo, nil, format, args...) }

func Warnf(format string, args ...any) { logf(LevelWarn, nil, format, args...) }

func Errorf(format string, args ...any) { logf(LevelError, nil, format, args...) }

// FieldLogger attaches key/value fields to every message.
type FieldLogger struct {
	fields logrus.Fields
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{fields: logrus.Fields(fields)}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	logf(LevelDebug, fl.fields, format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	logf(LevelInfo, fl.fields, format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	logf(LevelWarn, fl.fields, format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	logf(LevelError, fl.fields, format, args...)
}
