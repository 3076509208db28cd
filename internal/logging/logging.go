package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger.
// Output goes to stdout; development mode uses the console writer.
func Setup(appEnv, level string) {
	SetupWithWriter(os.Stdout, appEnv, level)
}

// SetupWithWriter is Setup with an explicit destination.
func SetupWithWriter(w io.Writer, appEnv, level string) {
	if appEnv == "development" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	lvl := zerolog.InfoLevel
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	zerolog.SetGlobalLevel(lvl)

	log.Debug().
		Str("level", lvl.String()).
		Str("env", appEnv).
		Msg("Logger initialized")
}
