package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level represents the logging level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the interface for logging operations
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)
	SetLevel(level Level)
}

// LogConfig holds configuration for the logger
type LogConfig struct {
	// Output destination: "file", "stderr" or "stdout"
	Output string
	// Log level: "debug", "info", "warn", "error", "fatal"
	Level string
	// FilePath for file output (only used when Output is "file")
	FilePath string
}

// levelLogger implements the Logger interface on top of Go's standard log package
type levelLogger struct {
	mu     sync.Mutex
	logger *log.Logger
	level  Level
}

// NewLogger creates a new logger based on the provided configuration
func NewLogger(config LogConfig) (Logger, error) {
	var writer io.Writer

	output := config.Output
	if output == "" {
		output = detectEnvironment()
	}

	switch output {
	case "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	case "file":
		filePath := config.FilePath
		if filePath == "" {
			// Default to ~/.pdf-organizer/pdf-organizer.log
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}
			filePath = filepath.Join(homeDir, ".pdf-organizer", "pdf-organizer.log")
		}

		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	default:
		return nil, fmt.Errorf("invalid log output: %s (expected 'file', 'stderr' or 'stdout')", output)
	}

	return &levelLogger{
		logger: log.New(writer, "", log.LstdFlags),
		level:  ParseLevel(config.Level),
	}, nil
}

// NewWriterLogger creates a logger writing bare "[LEVEL] message" lines to w.
// The CLI uses it to print operation status without timestamps.
func NewWriterLogger(w io.Writer, level Level) Logger {
	return &levelLogger{
		logger: log.New(w, "", 0),
		level:  level,
	}
}

// NewNoOpLogger creates a logger that discards all output (useful for tests)
func NewNoOpLogger() Logger {
	return &levelLogger{
		logger: log.New(io.Discard, "", 0),
		level:  FatalLevel,
	}
}

// detectEnvironment determines the appropriate output based on the environment
func detectEnvironment() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "stderr"
	}

	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "stderr"
	}

	// The MCP server owns stdout, so local runs log to a file
	return "file"
}

// ParseLevel converts a string to a Level. Unknown or empty values map to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// SetLevel sets the minimum log level
func (l *levelLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *levelLogger) enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level <= level
}

// Debug logs a debug message
func (l *levelLogger) Debug(format string, v ...any) {
	if l.enabled(DebugLevel) {
		l.log(DebugLevel, format, v...)
	}
}

// Info logs an info message
func (l *levelLogger) Info(format string, v ...any) {
	if l.enabled(InfoLevel) {
		l.log(InfoLevel, format, v...)
	}
}

// Warn logs a warning message
func (l *levelLogger) Warn(format string, v ...any) {
	if l.enabled(WarnLevel) {
		l.log(WarnLevel, format, v...)
	}
}

// Error logs an error message
func (l *levelLogger) Error(format string, v ...any) {
	if l.enabled(ErrorLevel) {
		l.log(ErrorLevel, format, v...)
	}
}

// Fatal logs a fatal message and exits
func (l *levelLogger) Fatal(format string, v ...any) {
	l.log(FatalLevel, format, v...)
	os.Exit(1)
}

func (l *levelLogger) log(level Level, format string, v ...any) {
	message := fmt.Sprintf(format, v...)
	l.logger.Printf("[%s] %s", level.String(), message)
}
