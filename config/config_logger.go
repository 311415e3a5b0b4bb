package config

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type loggingConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`

	MaxSize    int `yaml:"max_size"`
	MaxBackups int `yaml:"max_backups"`
	MaxAge     int `yaml:"max_age"`
}

func (cfg *Config) registerLogger(f *configFile) error {
	level, err := parseLevel(f.Logging.Level)

	if err != nil {
		return err
	}

	if f.Logging.File == "" {
		if f.Logging.Level != "" {
			cfg.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.Logging.File), 0755); err != nil {
		return err
	}

	writer := &lumberjack.Logger{
		Filename: f.Logging.File,

		MaxSize:    valueOr(f.Logging.MaxSize, 64),
		MaxBackups: valueOr(f.Logging.MaxBackups, 3),
		MaxAge:     valueOr(f.Logging.MaxAge, 7),

		Compress: true,
	}

	cfg.closer = writer
	cfg.logger = slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stderr, writer), &slog.HandlerOptions{Level: level}))

	return nil
}

func parseLevel(val string) (slog.Level, error) {
	switch strings.ToLower(val) {
	case "debug":
		return slog.LevelDebug, nil

	case "info", "":
		return slog.LevelInfo, nil

	case "warn", "warning":
		return slog.LevelWarn, nil

	case "error":
		return slog.LevelError, nil
	}

	return 0, errors.New("invalid log level: " + val)
}

func valueOr(val, fallback int) int {
	if val <= 0 {
		return fallback
	}

	return val
}
