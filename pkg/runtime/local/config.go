package local

import (
	"log/slog"
	"time"
)

type Config struct {
	command string
	args    []string

	dir string
	env []string

	modules map[string][]string

	probeTimeout time.Duration

	logger *slog.Logger
}

type Option func(*Config)

func WithArgs(args ...string) Option {
	return func(c *Config) {
		c.args = args
	}
}

func WithDir(dir string) Option {
	return func(c *Config) {
		c.dir = dir
	}
}

func WithEnv(env ...string) Option {
	return func(c *Config) {
		c.env = append(c.env, env...)
	}
}

// WithModules lists the interpreter modules an engine kind needs. Probe verifies
// that each of them can be imported.
func WithModules(engine string, modules ...string) Option {
	return func(c *Config) {
		if c.modules == nil {
			c.modules = make(map[string][]string)
		}

		c.modules[engine] = modules
	}
}

func WithProbeTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.probeTimeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}
