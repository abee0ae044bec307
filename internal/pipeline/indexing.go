package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/blob"
	"github.com/jonathan/resume-matcher/internal/identity"
	"github.com/jonathan/resume-matcher/internal/store"
	"github.com/jonathan/resume-matcher/internal/vector"
)

// snippetLimit caps the resume text stored in the vector payload.
const snippetLimit = 1500

// RunIndexing drains all eligible applications. Each iteration pulls one
// batch, turns every record into a vector point (fetch → extract → embed),
// upserts the batch, and only then flags the records indexed. Records that
// fail inside the chain are marked failed with the reason and the batch
// continues. The loop re-polls until an empty batch is observed, with a short
// delay between iterations, and is cancellable between iterations. A record
// whose status write fails stays eligible and would be re-polled forever, so
// such records are tracked and the run stops with an error once a batch
// contains nothing else.
func RunIndexing(ctx context.Context, deps *Deps) error {
	if err := deps.ready(); err != nil {
		return err
	}
	log := deps.logger()
	log.Info("resume indexing started")

	// Records that stayed eligible because MarkFailed or MarkIndexed errored.
	stuck := make(map[primitive.ObjectID]bool)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pending, err := deps.Applications.CountPending(ctx)
		if err != nil {
			return fmt.Errorf("counting pending applications: %w", err)
		}
		log.Info("pending resumes", zap.Int64("count", pending))

		batch, err := deps.Applications.PendingApplications(ctx, deps.batchSize())
		if err != nil {
			return fmt.Errorf("querying pending applications: %w", err)
		}
		if len(batch) == 0 {
			log.Info("no open resumes pending")
			return nil
		}

		fresh := make([]store.Application, 0, len(batch))
		for _, app := range batch {
			if !stuck[app.ID] {
				fresh = append(fresh, app)
			}
		}
		if len(fresh) == 0 {
			return fmt.Errorf("%d eligible records could not be flagged, stopping", len(batch))
		}

		points := make([]vector.Point, 0, len(fresh))
		built := make([]primitive.ObjectID, 0, len(fresh))

		for _, app := range fresh {
			appID := app.ID.Hex()
			log.Info("processing resume",
				zap.String("application_id", appID),
				zap.String("job_id", app.JobRef()),
			)

			point, err := deps.buildPoint(ctx, app)
			if err != nil {
				log.Warn("indexing failed",
					zap.String("application_id", appID),
					zap.Error(err),
				)
				if markErr := deps.Applications.MarkFailed(ctx, app.ID, err.Error()); markErr != nil {
					log.Error("recording failure status",
						zap.String("application_id", appID),
						zap.Error(markErr),
					)
					stuck[app.ID] = true
				}
				continue
			}
			points = append(points, *point)
			built = append(built, app.ID)
		}

		if len(points) > 0 {
			// Upsert before flagging: a failed upsert leaves the records
			// open for the next poll, and the derived point id turns the
			// retry into an overwrite.
			if err := deps.Index.Upsert(ctx, points); err != nil {
				return fmt.Errorf("upserting %d points: %w", len(points), err)
			}
			log.Info("vectors pushed to index", zap.Int("count", len(points)))

			for _, id := range built {
				if err := deps.Applications.MarkIndexed(ctx, id); err != nil {
					log.Error("marking application indexed",
						zap.String("application_id", id.Hex()),
						zap.Error(err),
					)
					stuck[id] = true
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(deps.pollDelay()):
		}
	}
}

// buildPoint runs one application through fetch → extract → embed and
// assembles its vector point under the derived id.
func (d *Deps) buildPoint(ctx context.Context, app store.Application) (*vector.Point, error) {
	key := blob.KeyFromURL(app.Resume)

	data, err := d.Blobs.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	text, err := d.Extractor.Extract(data, key)
	if err != nil {
		return nil, err
	}

	embedding, err := d.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if want := d.Embedder.Dimension(); len(embedding) != want {
		return nil, fmt.Errorf("embedding has %d dimensions, collection expects %d", len(embedding), want)
	}

	appID := app.ID.Hex()
	return &vector.Point{
		ID:            identity.PointID(appID).String(),
		Vector:        embedding,
		ApplicationID: appID,
		JobID:         app.JobRef(),
		ResumeText:    snippet(text, snippetLimit),
	}, nil
}

func snippet(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
