// Package logging configures the process-wide logrus logger: leveled colored
// output on stdout with an optional plain-text file sink.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/backmassage/chunkmaster/internal/config"
)

const timestampFormat = "2006-01-02 15:04:05"

// Logger wraps a logrus.Logger together with the optional log-file handle so
// the caller can Close it on shutdown.
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New builds the logger from cfg: color mode resolution, debug level behind
// --verbose, and an append-mode file sink when --log is set. Call Close when
// done if a log file was configured.
func New(cfg *config.Config) (*Logger, error) {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
		ForceColors:     colorsEnabled(cfg.ColorMode),
		DisableColors:   !colorsEnabled(cfg.ColorMode),
	})
	if cfg.Verbose {
		base.SetLevel(logrus.DebugLevel)
	}

	l := &Logger{Logger: base}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		base.AddHook(&fileHook{
			file: f,
			formatter: &logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: timestampFormat,
				DisableColors:   true,
			},
		})
	}
	return l, nil
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// fileHook mirrors every entry into the log file without ANSI colors.
type fileHook struct {
	file      *os.File
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.file.Write(line)
	return err
}

// colorsEnabled resolves the configured color mode against TTY detection and
// the NO_COLOR convention (https://no-color.org).
func colorsEnabled(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return StdoutIsTerminal() &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// StdoutIsTerminal reports whether stdout is attached to a TTY. The pipeline
// also uses this to decide whether progress bars make sense.
func StdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
