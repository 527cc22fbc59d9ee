package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Format is "json" or "console".
func Init(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	if strings.EqualFold(format, "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
