package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// LogFilePath builds a session log file path using OS-appropriate
// path separators.
func LogFilePath(logsDir, serviceName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", serviceName, sessionStart.Format("20060102_150405")),
	)
}

// Setup builds the service logger: console output, an optional log
// file, and an optional Graylog GELF writer when graylog.enabled is
// set. The level comes from the logLevel config key.
func Setup(serviceName string, file io.Writer) zerolog.Logger {
	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339},
	}

	if file != nil {
		writers = append(writers, file)
	}

	var gelfErr error
	if viper.GetBool("graylog.enabled") {
		w, err := gelf.NewWriter(viper.GetString("graylog.address"))
		if err != nil {
			gelfErr = err
		} else {
			writers = append(writers, w)
		}
	}

	level, err := zerolog.ParseLevel(viper.GetString("logLevel"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	if gelfErr != nil {
		logger.Warn().Err(gelfErr).
			Str("address", viper.GetString("graylog.address")).
			Msg("Failed to create GELF writer, continuing without Graylog")
	}

	return logger
}
