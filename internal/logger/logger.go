package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	currentLevel  = zerolog.TraceLevel
	defaultLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
)

// SetOutput redirects all log output, primarily for tests. A level applied
// via SetLevel is preserved.
func SetOutput(w io.Writer) {
	defaultLogger = zerolog.New(w).With().Timestamp().Logger().Level(currentLevel)
}

func SetLevel(level zerolog.Level) {
	currentLevel = level
	defaultLogger = defaultLogger.Level(level)
}

func Debug(format string, args ...interface{}) {
	defaultLogger.Debug().Msg(fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	defaultLogger.Info().Msg(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	defaultLogger.Warn().Msg(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	defaultLogger.Error().Msg(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	defaultLogger.Fatal().Msg(fmt.Sprintf(format, args...))
}
