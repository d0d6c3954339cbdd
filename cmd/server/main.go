package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/doctoc/internal/api"
	"github.com/dgallion1/doctoc/internal/config"
	"github.com/dgallion1/doctoc/internal/pipeline"
)

func main() {
	cfg, err := config.Load(os.Getenv("DOCTOC_CONFIG"))
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, pipeline.NewProcessor(cfg, log), log)
	orch.Start(ctx)
	defer orch.Stop()

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error("server error", "error", err)
		orch.Stop()
		os.Exit(1)
	}
}
