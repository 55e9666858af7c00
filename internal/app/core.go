// Package app wires configuration, logging and services into the two front ends: the
// desktop window and the headless command line.
package app

import (
	"context"
	"io"

	"missingstar/internal/catalog"
	"missingstar/internal/config"
	"missingstar/internal/logger"
	"missingstar/internal/models"
	"missingstar/internal/opencv/memory"
	"missingstar/internal/services"
	"missingstar/internal/shutdown"
)

const (
	AppName    = "Missing Star"
	AppID      = "io.github.missingstar"
	AppVersion = "1.0.0"
)

// Core holds the services shared by every front end.
type Core struct {
	Config    config.Config
	Logger    logger.Logger
	Catalog   *catalog.Cache
	Canvases  *memory.Manager
	Results   *models.ResultRepository
	Generator *services.Generator
	Exporter  *services.ExportService
	Shutdown  *shutdown.Manager
}

// NewCore builds the services for cfg. Components are registered for shutdown in
// dependency order so they stop in reverse.
func NewCore(cfg config.Config, log logger.Logger, logCloser io.Closer) (*Core, error) {
	exporter, err := services.NewExportService(cfg.OutputDir, cfg.KeepOutput, log)
	if err != nil {
		return nil, err
	}
	cfg.OutputDir = exporter.OutputDir()

	var opts []catalog.Option
	if cfg.CatalogPath != "" {
		opts = append(opts, catalog.WithStarsFile(cfg.CatalogPath))
	}

	c := &Core{
		Config:   cfg,
		Logger:   log,
		Catalog:  catalog.NewCache(opts...),
		Canvases: memory.NewManager(log),
		Results:  models.NewResultRepository(),
		Exporter: exporter,
		Shutdown: shutdown.NewManager(log),
	}
	c.Generator = services.NewGenerator(c.Catalog, c.Canvases, c.Results, services.Settings{
		MaxPlotMag: cfg.MaxPlotMag,
		Resolution: cfg.Resolution,
		Scale:      cfg.Scale,
		OutputDir:  cfg.OutputDir,
	}, log)
	c.Generator.OnWritten(c.Exporter.Track)

	if logCloser != nil {
		c.Shutdown.Register("log file", shutdown.Func(func() { _ = logCloser.Close() }))
	}
	c.Shutdown.Register("output directory", c.Exporter)
	c.Shutdown.Register("catalog", c.Catalog)
	c.Shutdown.Register("canvases", c.Canvases)
	c.Shutdown.Register("results", c.Results)
	return c, nil
}

// Context is cancelled when shutdown begins.
func (c *Core) Context() context.Context {
	return c.Shutdown.Context()
}

// Limits bounds requests against the configuration.
func (c *Core) Limits() models.Limits {
	return c.Config.Limits()
}

// WarmUp loads the catalog so the first request does not pay for it.
func (c *Core) WarmUp(ctx context.Context) error {
	cat, err := c.Catalog.Get(ctx)
	if err != nil {
		return err
	}
	n, err := cat.Count(ctx)
	if err != nil {
		return err
	}
	c.Logger.Info("Core", "catalog loaded", map[string]interface{}{
		"stars":  n,
		"source": cat.Source(),
	})
	return nil
}
