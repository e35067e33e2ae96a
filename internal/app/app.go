// Package app assembles FormDrop's runtime dependencies from configuration so
// the binaries share one wiring path.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/FormDrop/internal/config"
	"github.com/dharsanguruparan/FormDrop/internal/database"
	"github.com/dharsanguruparan/FormDrop/internal/form"
	"github.com/dharsanguruparan/FormDrop/internal/logger"
	"github.com/dharsanguruparan/FormDrop/internal/repository"
	"github.com/dharsanguruparan/FormDrop/internal/s3storage"
	"github.com/dharsanguruparan/FormDrop/internal/signing"
	"github.com/dharsanguruparan/FormDrop/internal/storage"
	"github.com/dharsanguruparan/FormDrop/internal/webhook"
)

// Deps are the shared collaborators of the CLI and the relay.
type Deps struct {
	Config    *config.Config
	Log       logger.Logger
	Titles    form.JobTitleSource
	Submitter *webhook.Client

	// Pool is nil unless a database URL is configured.
	Pool *pgxpool.Pool
	// Attachments is nil unless S3 is configured.
	Attachments *s3storage.Storage
	// Repo is set together with Pool.
	Repo *repository.JobTitleRepository
}

// Wire builds Deps. Job titles come from Postgres when a database URL is set
// and from the configured static list otherwise.
func Wire(ctx context.Context, cfg *config.Config, log logger.Logger) (*Deps, error) {
	if log == nil {
		log = logger.Nop()
	}
	d := &Deps{Config: cfg, Log: log}

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		d.Pool = pool
		d.Repo = repository.NewJobTitleRepository(pool)
		d.Titles = d.Repo
	} else {
		d.Titles = storage.NewMemoryCatalog(cfg.JobTitles...)
	}

	if cfg.S3.Enabled() {
		store, err := s3storage.New(cfg)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Attachments = store
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	signer := signing.NewSigner([]byte(cfg.SigningSecret))
	d.Submitter = webhook.New(httpClient, cfg.Headers, signer, log)
	return d, nil
}

// Close releases the database pool, if any.
func (d *Deps) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
}
