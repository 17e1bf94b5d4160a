// Package logging ports the teacher's zerolog + lumberjack logging setup:
// a global logger writing to a colored console, a rotated main log file,
// and a rotated error-only log file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the package-wide logger every component logs through.
var Logger zerolog.Logger

// Config configures log level, output directory, and rotation.
type Config struct {
	Level      string
	LogDir     string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// DefaultConfig matches the teacher's defaults.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		LogDir:     "logs",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// Init wires up the global Logger. Safe to call once at process start.
func Init(config Config) error {
	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	mainLogFile := &lumberjack.Logger{
		Filename:   filepath.Join(config.LogDir, "webqa_inspector.log"),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	errorLogFile := &lumberjack.Logger{
		Filename:   filepath.Join(config.LogDir, "webqa_inspector_error.log"),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    false,
	}

	multiWriter := zerolog.MultiLevelWriter(
		consoleWriter,
		mainLogFile,
		&FilteredWriter{Writer: errorLogFile, MinLevel: zerolog.ErrorLevel},
	)

	Logger = zerolog.New(multiWriter).
		With().
		Timestamp().
		Caller().
		Logger()

	log.Logger = Logger

	Logger.Info().
		Str("level", config.Level).
		Str("log_dir", config.LogDir).
		Msg("logging initialized")

	return nil
}

// FilteredWriter only forwards WriteLevel calls at or above MinLevel.
type FilteredWriter struct {
	Writer   io.Writer
	MinLevel zerolog.Level
}

func (w *FilteredWriter) Write(p []byte) (n int, err error) {
	return w.Writer.Write(p)
}

func (w *FilteredWriter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	if level >= w.MinLevel {
		return w.Writer.Write(p)
	}
	return len(p), nil
}

func Info(msg string)                                 { Logger.Info().Msg(msg) }
func Infof(format string, args ...interface{})        { Logger.Info().Msgf(format, args...) }
func Error(err error, msg string)                      { Logger.Error().Err(err).Msg(msg) }
func Errorf(format string, args ...interface{})       { Logger.Error().Msgf(format, args...) }
func Warn(msg string)                                  { Logger.Warn().Msg(msg) }
func Warnf(format string, args ...interface{})        { Logger.Warn().Msgf(format, args...) }
func Debug(msg string)                                 { Logger.Debug().Msg(msg) }
func Debugf(format string, args ...interface{})       { Logger.Debug().Msgf(format, args...) }
func Fatal(err error, msg string)                      { Logger.Fatal().Err(err).Msg(msg) }
