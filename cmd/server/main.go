package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianliechti/tts-playground/config"
	"github.com/adrianliechti/tts-playground/pkg/otel"
	"github.com/adrianliechti/tts-playground/server"
	"github.com/adrianliechti/tts-playground/server/api"
)

func main() {
	configFlag := flag.String("config", "config.yaml", "configuration file")
	addressFlag := flag.String("address", "", "listen address")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "tts-playground", api.Version)

	if err != nil {
		panic(err)
	}

	defer shutdown(context.Background())

	cfg, err := loadConfig(ctx, *configFlag)

	if err != nil {
		panic(err)
	}

	defer cfg.Close()

	if *addressFlag != "" {
		cfg.Address = *addressFlag
	}

	s, err := server.New(cfg)

	if err != nil {
		panic(err)
	}

	if err := s.ListenAndServe(ctx); err != nil {
		cfg.Logger().Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(ctx)
	}

	return config.Parse(ctx, path)
}
