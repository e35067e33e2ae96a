// Command server runs the FormDrop relay on its own, without the CLI.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dharsanguruparan/FormDrop/internal/app"
	"github.com/dharsanguruparan/FormDrop/internal/config"
	"github.com/dharsanguruparan/FormDrop/internal/logger"
	"github.com/dharsanguruparan/FormDrop/internal/server"
)

func main() {
	// Step 1: load configuration; an empty FORMDROP_CONFIG falls back to
	// formdrop.yaml when present.
	cfg, err := config.Load(os.Getenv("FORMDROP_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// Step 2: create a context that cancels when SIGINT/SIGTERM arrive so the
	// relay can shut down gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Step 3: construct dependencies once; they are shared by every request.
	deps, err := app.Wire(ctx, cfg, logger.New(cfg.LogLevel))
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer deps.Close()

	// Step 4: block until the HTTP server exits.
	srv := server.New(cfg, deps.Titles, deps.Submitter, deps.Log)
	if err := srv.Serve(ctx); err != nil {
		deps.Log.Errorf("server stopped: %v", err)
		deps.Close()
		os.Exit(1)
	}
}
