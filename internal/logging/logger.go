// Package logging provides structured logging with file and console
// output plus a bounded in-memory history for diagnostics surfaces.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level names accepted by Config.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is one retained log line.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// Logger wraps zerolog with file output and bounded history.
type Logger struct {
	zlog    zerolog.Logger
	file    *os.File
	logPath string

	mu      sync.RWMutex
	history []Entry
	maxHist int
}

// Config holds logger configuration.
type Config struct {
	LogDir     string // default ~/.emotive/logs
	Level      Level  // default debug
	MaxHistory int    // default 1000
	Console    bool   // also log to stdout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		LogDir:     filepath.Join(home, ".emotive", "logs"),
		Level:      LevelDebug,
		MaxHistory: 1000,
		Console:    true,
	}
}

// New creates a Logger writing to a date-stamped file, optionally
// mirrored to the console.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(cfg.LogDir, fmt.Sprintf("emotive_%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	writers := []io.Writer{file}
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}

	level := zerolog.DebugLevel
	switch cfg.Level {
	case LevelInfo:
		level = zerolog.InfoLevel
	case LevelWarn:
		level = zerolog.WarnLevel
	case LevelError:
		level = zerolog.ErrorLevel
	}

	zlog := zerolog.New(io.MultiWriter(writers...)).Level(level).With().
		Timestamp().
		Str("app", "emotive").
		Logger()

	l := &Logger{
		zlog:    zlog,
		file:    file,
		logPath: logPath,
		history: make([]Entry, 0, cfg.MaxHistory),
		maxHist: cfg.MaxHistory,
	}
	l.Info("logging", "logger initialized")
	return l, nil
}

// Component returns a zerolog.Logger tagged with the subsystem name.
// Most packages take one of these rather than the wrapper itself.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zlog.With().Str("component", name).Logger()
}

// Zerolog returns the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

// Path returns the active log file path.
func (l *Logger) Path() string {
	return l.logPath
}

// Debug logs at debug level under a component tag.
func (l *Logger) Debug(component, msg string) {
	l.zlog.Debug().Str("component", component).Msg(msg)
	l.remember("debug", component, msg)
}

// Info logs at info level under a component tag.
func (l *Logger) Info(component, msg string) {
	l.zlog.Info().Str("component", component).Msg(msg)
	l.remember("info", component, msg)
}

// Warn logs at warn level under a component tag.
func (l *Logger) Warn(component, msg string) {
	l.zlog.Warn().Str("component", component).Msg(msg)
	l.remember("warn", component, msg)
}

// Error logs an error under a component tag.
func (l *Logger) Error(component, msg string, err error) {
	ev := l.zlog.Error().Str("component", component)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
	l.remember("error", component, msg)
}

func (l *Logger) remember(level, component, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, Entry{
		Timestamp: time.Now().Format("15:04:05.000"),
		Level:     level,
		Component: component,
		Message:   msg,
	})
	if len(l.history) > l.maxHist {
		l.history = l.history[len(l.history)-l.maxHist:]
	}
}

// History returns up to limit of the most recent entries.
func (l *Logger) History(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit <= 0 || limit > len(l.history) {
		limit = len(l.history)
	}
	out := make([]Entry, limit)
	copy(out, l.history[len(l.history)-limit:])
	return out
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	l.Info("logging", "logger shutting down")
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
