package container

import (
	"fmt"
	"net/http"

	"go-nutrition-scanner/internal/config"
	"go-nutrition-scanner/internal/explain"
	"go-nutrition-scanner/internal/extract"
	"go-nutrition-scanner/internal/pipeline"
	"go-nutrition-scanner/internal/scoring"
	"go-nutrition-scanner/internal/storage"
	"go-nutrition-scanner/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config   *config.Config
	store    storage.Store
	chain    *extract.Chain
	pipeline *pipeline.Pipeline
	handler  http.Handler
}

// NewContainer builds the dependency graph from configuration
func NewContainer(cfg *config.Config) (*Container, error) {
	store, err := storage.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.TierTimeout}

	// Tier order is fixed: catalog first (free, structured), then managed
	// OCR, then the local engine as the always-available fallback
	tiers := []extract.Tier{
		extract.NewCatalogTier(cfg.CatalogBaseURL, cfg.CatalogSearchURL, httpClient),
		extract.NewRemoteOCRTier(cfg.RemoteOCRBaseURL, cfg.RemoteOCRModel, cfg.RemoteOCRAPIKey, httpClient),
		extract.NewLocalOCRTier(cfg.OCRLanguage),
	}

	chain := extract.NewChain(tiers, extract.NewEvaluator(), cfg.TierTimeout)
	engine := scoring.NewEngine(scoring.DefaultWeights())
	pipe := pipeline.New(chain, engine)
	explainer := explain.NewClient(cfg.ExplainBaseURL, cfg.ExplainModel, cfg.ExplainAPIKey, httpClient)
	handler := transport.NewHandler(pipe, explainer, store, cfg)

	return &Container{
		config:   cfg,
		store:    store,
		chain:    chain,
		pipeline: pipe,
		handler:  handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases held resources
func (c *Container) Close() error {
	return c.store.Close()
}
