// Package logging builds the zerolog loggers shared by the rest of the
// module. Every package tags its logger with a component name so interleaved
// output stays attributable.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to stderr, tagged with the given
// component name.
func New(component string) zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}

// SetVerbose switches the global level between debug and info.
func SetVerbose(on bool) {
	if on {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
