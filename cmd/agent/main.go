package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pratik-mahalle/vigil/internal/agent"
	"github.com/pratik-mahalle/vigil/internal/config"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	log.Info("Starting vigil agent")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := agent.New(ctx, cfg, agent.Hooks{}, log)
	if err != nil {
		log.Fatal("Failed to start agent: " + err.Error())
	}

	if err := a.Run(ctx); err != nil {
		log.Fatal("Agent exited with error: " + err.Error())
	}
}
