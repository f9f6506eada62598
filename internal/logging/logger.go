package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/sqzls/waterwatch/internal/config"
)

// NewLogger creates a structured zerolog.Logger for the daemon path. The
// level comes from the config, falling back to info when unparsable.
func NewLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "waterwatch").
		Logger()

	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
