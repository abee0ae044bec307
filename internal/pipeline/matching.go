package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/store"
	"github.com/jonathan/resume-matcher/internal/vector"
)

// cutoffRatio is the relative selection threshold: every resume scoring at
// least this fraction of the job's best score is selected.
const cutoffRatio = 0.63

// Decision pairs an application with its matching outcome for one job.
type Decision struct {
	ApplicationID string
	Score         float32
	Status        string
}

// Decide applies the relative-cutoff rule to one job's scored resumes and
// returns the decisions alongside the best score the cutoff was derived from.
// Results at exactly the cutoff are selected. Results without an application
// id in their payload are skipped.
func Decide(results []vector.ScoredPoint) ([]Decision, float32) {
	if len(results) == 0 {
		return nil, 0
	}

	best := results[0].Score
	for _, r := range results[1:] {
		if r.Score > best {
			best = r.Score
		}
	}
	cutoff := best * cutoffRatio

	decisions := make([]Decision, 0, len(results))
	for _, r := range results {
		if r.ApplicationID == "" {
			continue
		}
		status := store.StatusRejected
		if r.Score >= cutoff {
			status = store.StatusSelected
		}
		decisions = append(decisions, Decision{
			ApplicationID: r.ApplicationID,
			Score:         r.Score,
			Status:        status,
		})
	}
	return decisions, best
}

// RunMatching classifies indexed resumes for every open job of every
// AI-enabled company. Failures are isolated: a job's query failure is logged
// and the next job proceeds, and no company's failure aborts the run.
func RunMatching(ctx context.Context, deps *Deps) error {
	if err := deps.ready(); err != nil {
		return err
	}
	log := deps.logger()
	log.Info("job matching started")

	companies, err := deps.Jobs.AICompanies(ctx)
	if err != nil {
		return fmt.Errorf("querying companies: %w", err)
	}
	if len(companies) == 0 {
		log.Info("no AI-enabled companies found")
		return nil
	}

	for _, company := range companies {
		if err := ctx.Err(); err != nil {
			return err
		}
		clog := log.With(
			zap.String("company_id", company.ID.Hex()),
			zap.String("company", company.Name),
		)
		clog.Info("matching company jobs")

		statusID, err := deps.Jobs.OpenStatusID(ctx, company.ID)
		if err != nil {
			clog.Warn("no open status for company", zap.Error(err))
			continue
		}

		jobs, err := deps.Jobs.OpenJobs(ctx, company.ID, statusID)
		if err != nil {
			clog.Warn("querying open jobs failed", zap.Error(err))
			continue
		}
		if len(jobs) == 0 {
			clog.Info("no open jobs found")
			continue
		}

		for _, job := range jobs {
			deps.matchJob(ctx, clog, job)
		}
	}

	log.Info("job matching finished")
	return nil
}

// matchJob embeds one job description, ranks the job's indexed resumes and
// writes a decision per application. All failures are logged, never returned.
func (d *Deps) matchJob(ctx context.Context, log *zap.Logger, job store.Job) {
	jobID := job.ID.Hex()
	jlog := log.With(zap.String("job_id", jobID))

	description := CleanHTML(job.Description)
	if description == "" {
		jlog.Warn("job has no description")
		return
	}

	jdVector, err := d.Embedder.Embed(ctx, description)
	if err != nil {
		jlog.Warn("embedding job description failed", zap.Error(err))
		return
	}

	results, err := d.Index.Search(ctx, jdVector, d.searchLimit())
	if err != nil {
		jlog.Warn("similarity query failed", zap.Error(err))
		return
	}

	// The query spans the whole collection; keep only this job's resumes.
	var matches []vector.ScoredPoint
	for _, r := range results {
		if r.JobID == jobID {
			matches = append(matches, r)
		}
	}
	jlog.Info("resumes found for job", zap.Int("count", len(matches)))
	if len(matches) == 0 {
		return
	}

	decisions, best := Decide(matches)
	if len(decisions) == 0 {
		return
	}

	jlog.Info("selection cutoff computed",
		zap.Float32("best_score", best),
		zap.Float32("cutoff", best*cutoffRatio),
	)

	for _, decision := range decisions {
		if err := d.Applications.SetResumeStatus(ctx, decision.ApplicationID, decision.Status); err != nil {
			jlog.Error("writing match status",
				zap.String("application_id", decision.ApplicationID),
				zap.Error(err),
			)
			continue
		}
		jlog.Info("application classified",
			zap.String("application_id", decision.ApplicationID),
			zap.Float32("score", decision.Score),
			zap.String("status", decision.Status),
		)
	}
}
