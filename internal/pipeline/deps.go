// Package pipeline implements the two resume-matching pipelines: indexing
// (document → text → embedding → vector point) and matching (job description
// → similarity query → selected/rejected decisions).
package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/embed"
	"github.com/jonathan/resume-matcher/internal/store"
	"github.com/jonathan/resume-matcher/internal/vector"
)

// Defaults for the pipeline knobs when the caller leaves them zero.
const (
	defaultBatchSize   = 10
	defaultPollDelay   = time.Second
	defaultSearchLimit = 100000 // large cap approximating "all points"
)

// ApplicationStore is the application-record surface the pipelines need.
type ApplicationStore interface {
	CountPending(ctx context.Context) (int64, error)
	PendingApplications(ctx context.Context, limit int64) ([]store.Application, error)
	MarkIndexed(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error
	SetResumeStatus(ctx context.Context, applicationID, status string) error
}

// JobStore resolves AI-enabled companies and their open jobs.
type JobStore interface {
	AICompanies(ctx context.Context) ([]store.Company, error)
	OpenStatusID(ctx context.Context, companyID primitive.ObjectID) (primitive.ObjectID, error)
	OpenJobs(ctx context.Context, companyID, statusID primitive.ObjectID) ([]store.Job, error)
}

// Fetcher returns the raw bytes stored under an object key.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Extractor converts document bytes into plain text.
type Extractor interface {
	Extract(data []byte, sourceKey string) (string, error)
}

// Deps carries the collaborators and knobs for one pipeline run. It is
// constructed once per process and injected; the pipelines hold no ambient
// state.
type Deps struct {
	Applications ApplicationStore
	Jobs         JobStore
	Blobs        Fetcher
	Extractor    Extractor
	Embedder     embed.Embedder
	Index        vector.Index
	Logger       *zap.Logger

	BatchSize   int64
	PollDelay   time.Duration
	SearchLimit uint64
}

// ready verifies every collaborator is present. Called once at pipeline
// entry; a missing collaborator aborts the run before any partial progress.
func (d *Deps) ready() error {
	switch {
	case d == nil:
		return &NotReadyError{Collaborator: "pipeline dependencies"}
	case d.Applications == nil:
		return &NotReadyError{Collaborator: "document store"}
	case d.Jobs == nil:
		return &NotReadyError{Collaborator: "job store"}
	case d.Blobs == nil:
		return &NotReadyError{Collaborator: "object store"}
	case d.Extractor == nil:
		return &NotReadyError{Collaborator: "extractor"}
	case d.Embedder == nil:
		return &NotReadyError{Collaborator: "embedding model"}
	case d.Index == nil:
		return &NotReadyError{Collaborator: "vector index"}
	}
	return nil
}

func (d *Deps) batchSize() int64 {
	if d.BatchSize > 0 {
		return d.BatchSize
	}
	return defaultBatchSize
}

func (d *Deps) pollDelay() time.Duration {
	if d.PollDelay > 0 {
		return d.PollDelay
	}
	return defaultPollDelay
}

func (d *Deps) searchLimit() uint64 {
	if d.SearchLimit > 0 {
		return d.SearchLimit
	}
	return defaultSearchLimit
}

func (d *Deps) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}
