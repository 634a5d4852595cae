// Package output provides logging, styling and rendering for the apimpub CLI.
package output

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// logger is the global logger instance.
var (
	logger   *log.Logger
	loggerMu sync.RWMutex
)

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
}

// LogConfig controls the global logger.
type LogConfig struct {
	// Verbose enables debug level, caller reporting and forces timestamps.
	Verbose bool

	// Timestamps toggles timestamps. Nil means on.
	Timestamps *bool
}

func (c LogConfig) timestamps() bool {
	if c.Verbose {
		return true
	}
	if c.Timestamps != nil {
		return *c.Timestamps
	}
	return true
}

// SetupLogging configures the global logger on stderr.
func SetupLogging(cfg LogConfig) {
	setupLogging(os.Stderr, cfg)
}

// SetOutput reconfigures the global logger to write to w, keeping the level.
// Tests use it to capture log lines.
func SetOutput(w io.Writer, cfg LogConfig) {
	setupLogging(w, cfg)
}

func setupLogging(w io.Writer, cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: cfg.timestamps(),
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})

	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

func current() *log.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// KindLogger returns a logger prefixed with a resource kind.
func KindLogger(kind string) *log.Logger {
	return current().WithPrefix(StyleDim.Render("k:") + StyleNoun.Render(kind))
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	current().Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...any) {
	current().Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...any) {
	current().Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...any) {
	current().Error(msg, keyvals...)
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
