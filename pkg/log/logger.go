package log

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

// New builds the process logger. Local runs get a human console writer,
// everything else stays machine-readable JSON.
func New(env string) Logger {
	level := zerolog.InfoLevel
	if env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
		level = zerolog.DebugLevel
	}
	return log.Level(level)
}

// Nop returns a logger that discards everything; used by tests.
func Nop() Logger {
	return zerolog.Nop()
}
