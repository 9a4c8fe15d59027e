// Package logging builds zerolog loggers from settings.
package logging

import (
	"io"
	"time"

	"github.com/richinex/rhymer/config"
	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the configured level.
// The console format is meant for terminals, json for the server.
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
