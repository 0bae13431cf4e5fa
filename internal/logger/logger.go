// Package logger provides the leveled logging used across dungeondraw.
//
// Log lines have the form "[timestamp] [LEVEL] [package] message". By default
// the CLI writes them to a log file inside the data directory so that command
// output on stdout stays machine readable.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/devnullvoid/dungeondraw/pkg/interfaces"
)

// LogFileName is the name of the log file created inside the data directory.
const LogFileName = "dungeondraw.log"

// Level represents the logging level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger implements interfaces.Logger with a configurable output and level.
type Logger struct {
	mu         sync.Mutex
	out        *log.Logger
	level      Level
	output     io.Writer
	component  string
	timeFormat string
}

// Config holds configuration for the logger.
type Config struct {
	Level      Level
	Output     io.Writer
	LogToFile  bool
	LogFile    string
	TimeFormat string
	// Component is rendered as a [component] tag on every line when set.
	Component string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		Output:     os.Stderr,
		LogToFile:  false,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(config *Config) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	if config.LogToFile && config.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.LogFile), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		// Stderr plus file when stderr was requested explicitly, otherwise file only.
		if config.Output == os.Stderr {
			output = io.MultiWriter(os.Stderr, file)
		} else {
			output = file
		}
	}

	timeFormat := config.TimeFormat
	if timeFormat == "" {
		timeFormat = "2006-01-02 15:04:05"
	}

	return &Logger{
		out:        log.New(output, "", 0),
		level:      config.Level,
		output:     output,
		component:  config.Component,
		timeFormat: timeFormat,
	}, nil
}

// NewDataDirLogger creates a logger that appends to LogFileName inside dataDir.
// An empty dataDir falls back to the current directory.
func NewDataDirLogger(level Level, dataDir, component string) (*Logger, error) {
	dir := dataDir
	if dir == "" {
		dir = "."
	}

	return NewLogger(&Config{
		Level:     level,
		LogToFile: true,
		LogFile:   filepath.Join(dir, LogFileName),
		Component: component,
	})
}

// NewSimpleLogger creates a logger that writes to stderr with the given level.
func NewSimpleLogger(level Level) *Logger {
	logger, _ := NewLogger(&Config{Level: level, Output: os.Stderr}) // cannot fail without a file

	return logger
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	logger, _ := NewLogger(&Config{Level: LevelError + 1, Output: io.Discard})

	return logger
}

func (l *Logger) formatMessage(level Level, format string, args ...interface{}) string {
	timestamp := time.Now().Format(l.timeFormat)
	message := fmt.Sprintf(format, args...)

	if l.component != "" {
		return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, level.String(), l.component, message)
	}

	return fmt.Sprintf("[%s] [%s] %s", timestamp, level.String(), message)
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level > level {
		return
	}

	l.out.Println(l.formatMessage(level, format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// SetLevel changes the logging level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current logging level.
func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.level
}

// WithComponent returns a logger sharing this logger's output and level but
// tagging lines with component.
func (l *Logger) WithComponent(component string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &Logger{
		out:        l.out,
		level:      l.level,
		output:     l.output,
		component:  component,
		timeFormat: l.timeFormat,
	}
}

// Close closes the underlying file when the logger writes to one.
func (l *Logger) Close() error {
	if closer, ok := l.output.(io.Closer); ok && l.output != os.Stderr && l.output != os.Stdout {
		return closer.Close()
	}

	return nil
}

var _ interfaces.Logger = (*Logger)(nil)

// Global logger shared by all packages.
var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// InitGlobalLogger initializes the global logger writing into dataDir.
// When the log file cannot be opened the global logger falls back to stderr
// and the error is returned for the caller to report.
func InitGlobalLogger(level Level, dataDir string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	logger, err := NewDataDirLogger(level, dataDir, "")
	if err != nil {
		globalLogger = NewSimpleLogger(level)

		return err
	}

	if globalLogger != nil {
		_ = globalLogger.Close()
	}
	globalLogger = logger

	return nil
}

// SetGlobalLogger replaces the global logger. Mainly useful in tests.
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger returns the global logger, creating an info-level stderr
// logger if none was initialized.
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		globalLogger = NewSimpleLogger(LevelInfo)
	}

	return globalLogger
}

// GetPackageLogger returns the global logger tagged with packageName.
func GetPackageLogger(packageName string) interfaces.Logger {
	return GetGlobalLogger().WithComponent(packageName)
}
