// Package logging sets up the shared logger for the daemon and the CLI.
// Output goes to the console and, once Init is called with a file path,
// to an append-only log file as structured JSON.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	logFile *os.File
	logger  = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
)

// Init reconfigures the logger to also append to the given file. An empty
// path keeps console-only output. Unknown level strings fall back to info.
func Init(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen},
	}

	if path != "" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			// Fall back to console-only rather than refusing to start.
			logger = logger.Level(lvl)
			logger.Warn().Err(err).Str("path", path).Msg("could not open log file, console only")
			return nil
		}
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		writers = append(writers, f)
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).With().Timestamp().Logger()
	return nil
}

// Close closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func Debugf(format string, args ...any) { logger.Debug().Msgf(format, args...) }
func Infof(format string, args ...any)  { logger.Info().Msgf(format, args...) }
func Warnf(format string, args ...any)  { logger.Warn().Msgf(format, args...) }
func Errorf(format string, args ...any) { logger.Error().Msgf(format, args...) }

// LogEvent records a structured event with its originating module.
func LogEvent(module, event, details string) {
	logger.Info().Str("module", module).Str("event", event).Msg(details)
}
