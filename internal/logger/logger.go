package logger

import (
	"io"
	"os"
	"path/filepath"

	"netkb/internal/kbconfig"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log zerolog.Logger

// Module sub-loggers
var (
	DB    zerolog.Logger
	Recon zerolog.Logger
	CLI   zerolog.Logger
)

func init() {
	// Usable before Init for tests and library callers; Init rewires
	// output and level from config.
	wire(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

func Init(cfg kbconfig.LogConfig) {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var writer io.Writer

	if cfg.Mode == "debug" {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			writer = os.Stderr
		} else {
			writer = &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			}
		}
	}

	wire(writer)
}

func wire(writer io.Writer) {
	Log = zerolog.New(writer).With().Timestamp().Caller().Logger()

	DB = Log.With().Str("module", "database").Logger()
	Recon = Log.With().Str("module", "recon").Logger()
	CLI = Log.With().Str("module", "cli").Logger()
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
