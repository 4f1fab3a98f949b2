// Package logging provides categorized file-based logging for Gemini OS.
// Logs are written to <base>/logs/ with separate files per category.
// Nothing is written unless debug mode is enabled in the loaded config.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup/shutdown
	CategorySession  Category = "session"  // Identity and session lifecycle
	CategorySync     Category = "sync"     // Session state mirror reconciliation
	CategoryGateway  Category = "gateway"  // Gemini API calls
	CategoryShell    Category = "shell"    // Assistant chat + tool dispatch
	CategoryTerminal Category = "terminal" // Terminal interpreter
	CategoryFiles    Category = "files"    // File manager and workspace bridge
	CategoryApps     Category = "apps"     // Vision/music/search/devops panels
	CategoryStore    Category = "store"    // Document store drivers
	CategoryAudio    Category = "audio"    // Speech synthesis and WAV playback
)

// Options controls what gets logged. Values come from the main config;
// this package never parses config files itself.
type Options struct {
	DebugMode  bool
	Categories map[string]bool
	Level      string
	JSONFormat bool
}

// StructuredLogEntry is the JSON line format used when JSONFormat is on.
type StructuredLogEntry struct {
	Timestamp int64          `json:"ts"`
	Category  string         `json:"cat"`
	Level     string         `json:"lvl"`
	Message   string         `json:"msg"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	opts      Options
	optsMu    sync.RWMutex
	logLevel  int
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory. Call once at startup with the
// Gemini OS base directory (usually ~/.geminios) and the logging options
// from the loaded config.
func Initialize(baseDir string, o Options) error {
	if baseDir == "" {
		return fmt.Errorf("base directory required")
	}

	optsMu.Lock()
	opts = o
	switch o.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	optsMu.Unlock()

	logsDir = filepath.Join(baseDir, "logs")

	if !o.DebugMode {
		return nil // Silent no-op in production mode
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== Gemini OS logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", o.Level)
	return nil
}

// IsDebugMode returns whether debug logging is enabled.
func IsDebugMode() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	optsMu.RLock()
	defer optsMu.RUnlock()

	if !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true // All enabled by default in debug mode
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation trivial
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) logJSON(level, msg string) {
	entry := StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}
	l.logger.Printf("%s", data)
}

func (l *Logger) printf(level string, threshold int, format string, args ...any) {
	if l.logger == nil || (threshold < LevelError && logLevel > threshold) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	optsMu.RLock()
	jsonFormat := opts.JSONFormat
	optsMu.RUnlock()
	if jsonFormat {
		l.logJSON(level, msg)
	} else {
		l.logger.Printf("[%s] %s", level, msg)
	}
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...any) {
	l.printf("DEBUG", LevelDebug, format, args...)
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...any) {
	l.printf("INFO", LevelInfo, format, args...)
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...any) {
	l.printf("WARN", LevelWarn, format, args...)
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...any) {
	l.printf("ERROR", LevelError, format, args...)
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions; no-ops if the category is disabled.

// Boot logs to the boot category.
func Boot(format string, args ...any) { Get(CategoryBoot).Info(format, args...) }

// Session logs to the session category.
func Session(format string, args ...any) { Get(CategorySession).Info(format, args...) }

// Sync logs to the sync category.
func Sync(format string, args ...any) { Get(CategorySync).Info(format, args...) }

// SyncDebug logs debug to the sync category.
func SyncDebug(format string, args ...any) { Get(CategorySync).Debug(format, args...) }

// Gateway logs to the gateway category.
func Gateway(format string, args ...any) { Get(CategoryGateway).Info(format, args...) }

// GatewayError logs error to the gateway category.
func GatewayError(format string, args ...any) { Get(CategoryGateway).Error(format, args...) }

// Shell logs to the shell category.
func Shell(format string, args ...any) { Get(CategoryShell).Info(format, args...) }

// Terminal logs to the terminal category.
func Terminal(format string, args ...any) { Get(CategoryTerminal).Info(format, args...) }

// Files logs to the files category.
func Files(format string, args ...any) { Get(CategoryFiles).Info(format, args...) }

// Store logs to the store category.
func Store(format string, args ...any) { Get(CategoryStore).Info(format, args...) }

// StoreError logs error to the store category.
func StoreError(format string, args ...any) { Get(CategoryStore).Error(format, args...) }

// Audio logs to the audio category.
func Audio(format string, args ...any) { Get(CategoryAudio).Info(format, args...) }

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}
