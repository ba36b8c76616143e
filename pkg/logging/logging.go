// licita/pkg/logging/logging.go

package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// LogFile is where the "file" output option writes.
const LogFile = "licita.log"

var Logger zerolog.Logger

// stderr is where the "console" and "json" outputs write.
var stderr io.Writer = os.Stderr

func init() {
	logLevel := zerolog.InfoLevel
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if level, err := zerolog.ParseLevel(envLevel); err == nil {
			logLevel = level
		}
	}

	zerolog.SetGlobalLevel(logLevel)
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// ConfigureLogger sets the global level and routes both Logger and the
// zerolog/log default logger to the chosen output ("console", "json" or "file").
func ConfigureLogger(logLevel, logOutput string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || logLevel == "" {
		return fmt.Errorf("Invalid log level %q", logLevel)
	}

	var base zerolog.Logger
	switch logOutput {
	case "console":
		base = zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: "3:04PM"})
	case "json":
		base = zerolog.New(stderr)
	case "file":
		file, err := os.Create(LogFile)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		base = zerolog.New(file)
	default:
		return fmt.Errorf("Invalid log output option %q", logOutput)
	}

	zerolog.SetGlobalLevel(level)
	Logger = base.With().Timestamp().Logger()
	log.Logger = Logger
	return nil
}
