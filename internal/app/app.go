// Package app wires configuration to live collaborators and hands the
// pipelines their dependencies.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/blob"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/embed"
	"github.com/jonathan/resume-matcher/internal/extract"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/store"
	"github.com/jonathan/resume-matcher/internal/vector"
)

// App owns the process-wide collaborators. Each one is initialized lazily on
// the first run that needs it, so the process starts (and the health endpoint
// answers) even when some credentials are absent or a backend is down. A
// failed initialization is retried on the next run.
type App struct {
	cfg *config.Config
	log *zap.Logger

	mu       sync.Mutex
	store    *store.Store
	blobs    *blob.Store
	index    *vector.Client
	embedder *embed.GeminiEmbedder
	deps     *pipeline.Deps
}

// New builds an App over loaded configuration. No connections are opened yet.
func New(cfg *config.Config, log *zap.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// Deps returns the pipeline dependencies, connecting to each backend the
// first time it is needed. Safe for concurrent callers; only one
// initialization runs at a time.
func (a *App) Deps(ctx context.Context) (*pipeline.Deps, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.deps != nil {
		return a.deps, nil
	}

	if err := a.initStore(ctx); err != nil {
		return nil, err
	}
	if err := a.initBlobs(ctx); err != nil {
		return nil, err
	}
	if err := a.initEmbedder(ctx); err != nil {
		return nil, err
	}
	if err := a.initIndex(ctx); err != nil {
		return nil, err
	}

	a.deps = &pipeline.Deps{
		Applications: a.store,
		Jobs:         a.store,
		Blobs:        a.blobs,
		Extractor:    extract.New(),
		Embedder:     a.embedder,
		Index:        a.index,
		Logger:       a.log,
		BatchSize:    int64(a.cfg.BatchSize),
		PollDelay:    a.cfg.PollDelay,
	}
	return a.deps, nil
}

func (a *App) initStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	if a.cfg.MongoURI == "" {
		return &pipeline.NotReadyError{Collaborator: "document store"}
	}
	s, err := store.Connect(ctx, a.cfg.MongoURI, a.cfg.DBName, a.cfg.ApplicationColl)
	if err != nil {
		return err
	}
	a.log.Info("document store connected", zap.String("database", a.cfg.DBName))
	a.store = s
	return nil
}

func (a *App) initBlobs(ctx context.Context) error {
	if a.blobs != nil {
		return nil
	}
	if a.cfg.AWSAccessKey == "" || a.cfg.AWSSecretKey == "" || a.cfg.S3Bucket == "" {
		return &pipeline.NotReadyError{Collaborator: "object store"}
	}
	b, err := blob.New(ctx, a.cfg.AWSRegion, a.cfg.AWSAccessKey, a.cfg.AWSSecretKey, a.cfg.S3Bucket)
	if err != nil {
		return err
	}
	a.log.Info("object store ready", zap.String("bucket", a.cfg.S3Bucket))
	a.blobs = b
	return nil
}

func (a *App) initEmbedder(ctx context.Context) error {
	if a.embedder != nil {
		return nil
	}
	if a.cfg.GeminiAPIKey == "" {
		return &pipeline.NotReadyError{Collaborator: "embedding model"}
	}
	e, err := embed.NewGemini(ctx, a.cfg.GeminiAPIKey, a.cfg.EmbeddingModel, a.cfg.EmbeddingDim)
	if err != nil {
		return err
	}
	a.log.Info("embedding model ready", zap.String("model", a.cfg.EmbeddingModel))
	a.embedder = e
	return nil
}

func (a *App) initIndex(ctx context.Context) error {
	if a.index != nil {
		return nil
	}
	if a.cfg.QdrantURL == "" {
		return &pipeline.NotReadyError{Collaborator: "vector index"}
	}
	c, err := vector.New(a.cfg.QdrantURL, a.cfg.QdrantAPIKey, a.cfg.QdrantCollection)
	if err != nil {
		return err
	}
	// The embedder is initialized first, so the collection is sized from the
	// model's dimensionality rather than the raw config value.
	dim := a.embedder.Dimension()
	if err := c.EnsureCollection(ctx, uint64(dim)); err != nil {
		_ = c.Close()
		return err
	}
	a.log.Info("vector index ready",
		zap.String("collection", a.cfg.QdrantCollection),
		zap.Int("dimension", dim),
	)
	a.index = c
	return nil
}

// Close releases every collaborator that was opened.
func (a *App) Close(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.index != nil {
		if err := a.index.Close(); err != nil {
			a.log.Warn("closing vector index", zap.Error(err))
		}
		a.index = nil
	}
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			a.log.Warn("closing embedding client", zap.Error(err))
		}
		a.embedder = nil
	}
	if a.store != nil {
		if err := a.store.Close(ctx); err != nil {
			a.log.Warn("closing document store", zap.Error(err))
		}
		a.store = nil
	}
	a.deps = nil
}
