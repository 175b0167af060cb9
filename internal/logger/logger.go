// Package logger provides the styled console logger with an optional
// rotating log file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level      string
	File       string // rotating log file, empty disables it
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger writes styled lines to the console and plain logfmt lines to
// the log file when one is configured
type Logger struct {
	console *log.Logger
	file    *log.Logger
	rotator *lumberjack.Logger
}

var successLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("86")).
	SetString("DONE ")

// New creates a logger writing to w
func New(w io.Writer, cfg Config) (*Logger, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	l := &Logger{console: log.NewWithOptions(w, log.Options{Level: level})}
	configureStyles(l.console)

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		l.rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 30),
			Compress:   cfg.Compress,
		}
		l.file = log.NewWithOptions(l.rotator, log.Options{
			Level:           log.DebugLevel,
			Formatter:       log.LogfmtFormatter,
			ReportTimestamp: true,
		})
	}

	return l, nil
}

// Discard returns a logger that writes nowhere
func Discard() *Logger {
	return &Logger{console: log.New(io.Discard)}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func configureStyles(l *log.Logger) {
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Bold(true).
		Foreground(lipgloss.Color("63"))

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO ").
		Bold(true).
		Foreground(lipgloss.Color("86"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN ").
		Bold(true).
		Foreground(lipgloss.Color("192"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("204"))

	l.SetStyles(styles)
}

// SetLevel changes the console level. The log file always records debug.
func (l *Logger) SetLevel(level log.Level) {
	l.console.SetLevel(level)
}

// Level returns the console level
func (l *Logger) Level() log.Level {
	return l.console.GetLevel()
}

func (l *Logger) Debug(msg any, keyvals ...any) {
	l.console.Debug(msg, keyvals...)
	if l.file != nil {
		l.file.Debug(msg, keyvals...)
	}
}

func (l *Logger) Info(msg any, keyvals ...any) {
	l.console.Info(msg, keyvals...)
	if l.file != nil {
		l.file.Info(msg, keyvals...)
	}
}

func (l *Logger) Warn(msg any, keyvals ...any) {
	l.console.Warn(msg, keyvals...)
	if l.file != nil {
		l.file.Warn(msg, keyvals...)
	}
}

func (l *Logger) Error(msg any, keyvals ...any) {
	l.console.Error(msg, keyvals...)
	if l.file != nil {
		l.file.Error(msg, keyvals...)
	}
}

// Success prints an info-level message with a green label
func (l *Logger) Success(msg any, keyvals ...any) {
	if l.console.GetLevel() <= log.InfoLevel {
		l.console.Print(fmt.Sprintf("%s %v", successLabel.String(), msg), keyvals...)
	}
	if l.file != nil {
		l.file.Info(msg, keyvals...)
	}
}

// Handle logs a progress event at the level matching its type
func (l *Logger) Handle(e types.Event) {
	switch e.Type {
	case types.EventSuccess:
		l.Success(e.Message)
	case types.EventInfo:
		l.Info(e.Message)
	case types.EventWarning:
		l.Warn(e.Message)
	case types.EventError:
		l.Error(e.Message)
	default:
		l.Debug(e.Message)
	}
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}
