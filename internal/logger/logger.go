package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents the severity level of a log entry
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Output formats
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Package-level logger instance
var (
	appLogger *Logger
	appOnce   sync.Once
	mu        sync.RWMutex
)

// Logger provides structured logging functionality
type Logger struct {
	base     *logrus.Logger
	minLevel Level
	format   string
}

// FileConfig enables a rotating log file next to the primary output
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Config holds logger configuration
type Config struct {
	Output     io.Writer
	MinLevel   Level
	Format     string
	WithCaller bool
	File       *FileConfig
}

// New creates a new logger with the given configuration
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.MinLevel == "" {
		cfg.MinLevel = LevelInfo
	}
	if cfg.Format == "" {
		cfg.Format = FormatText
	}

	base := logrus.New()
	base.SetLevel(toLogrusLevel(cfg.MinLevel))
	base.SetReportCaller(cfg.WithCaller)

	switch cfg.Format {
	case FormatJSON:
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	default:
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	output := cfg.Output
	if cfg.File != nil && cfg.File.Path != "" {
		output = io.MultiWriter(cfg.Output, &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		})
	}
	base.SetOutput(output)

	return &Logger{
		base:     base,
		minLevel: cfg.MinLevel,
		format:   cfg.Format,
	}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(Config{
		Output:   os.Stdout,
		MinLevel: LevelInfo,
		Format:   FormatText,
	})
}

// NewWithLevel creates a new logger with a specific log level string
func NewWithLevel(level string) *Logger {
	logLevel := parseLevel(level)
	return New(Config{
		Output:     os.Stdout,
		MinLevel:   logLevel,
		WithCaller: logLevel == LevelDebug,
	})
}

// AppLogger returns the singleton application logger instance
func AppLogger() *Logger {
	mu.RLock()
	if appLogger != nil {
		mu.RUnlock()
		return appLogger
	}
	mu.RUnlock()

	appOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if appLogger == nil {
			appLogger = Default()
		}
	})

	mu.RLock()
	defer mu.RUnlock()
	return appLogger
}

// SetAppLogger sets the application logger (primarily for testing)
func SetAppLogger(logger *Logger) {
	mu.Lock()
	defer mu.Unlock()
	appLogger = logger
}

// InitializeLoggers initializes the application logger from string settings
func InitializeLoggers(level, format string, file *FileConfig) {
	logLevel := parseLevel(level)
	l := New(Config{
		Output:     os.Stdout,
		MinLevel:   logLevel,
		Format:     format,
		WithCaller: logLevel == LevelDebug,
		File:       file,
	})

	mu.Lock()
	defer mu.Unlock()
	appLogger = l
}

// parseLevel converts a string log level to a Level type
func parseLevel(level string) Level {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func toLogrusLevel(level Level) logrus.Level {
	switch level {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.base.Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.base.Info(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.base.Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error) {
	entry := logrus.NewEntry(l.base)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

// WithFields returns a new logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{
		logger: l,
		entry:  l.base.WithFields(logrus.Fields(fields)),
	}
}

// FieldLogger is a logger with pre-set fields
type FieldLogger struct {
	logger *Logger
	entry  *logrus.Entry
}

// WithFields returns a new field logger carrying both field sets
func (fl *FieldLogger) WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{
		logger: fl.logger,
		entry:  fl.entry.WithFields(logrus.Fields(fields)),
	}
}

// Debug logs a debug message with fields
func (fl *FieldLogger) Debug(msg string) {
	fl.entry.Debug(msg)
}

// Info logs an info message with fields
func (fl *FieldLogger) Info(msg string) {
	fl.entry.Info(msg)
}

// Warn logs a warning message with fields
func (fl *FieldLogger) Warn(msg string) {
	fl.entry.Warn(msg)
}

// Error logs an error message with fields
func (fl *FieldLogger) Error(msg string, err error) {
	entry := fl.entry
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}
