package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Mode selects which pipelines a run executes.
type Mode string

const (
	ModeIndex    Mode = "index"
	ModeMatching Mode = "matching"
	ModeBoth     Mode = "both"
)

// ParseMode validates a mode string from configuration or a query parameter.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeIndex, ModeMatching, ModeBoth:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid agent mode: %s", s)
}

// DepsProvider yields pipeline dependencies, initializing shared resources on
// first use. It is called at the start of every run so a previously failed
// initialization can recover.
type DepsProvider func(ctx context.Context) (*Deps, error)

// Runner enforces at most one pipeline run in flight. A trigger while a run
// is active is rejected with ErrAlreadyRunning, never queued.
type Runner struct {
	deps DepsProvider

	mu      sync.Mutex
	running bool
	lastRun string
	lastErr string
}

// Status is a point-in-time snapshot of the runner.
type Status struct {
	Running   bool
	LastRun   string
	LastError string
}

// NewRunner builds a runner over a dependency provider.
func NewRunner(deps DepsProvider) *Runner {
	return &Runner{deps: deps}
}

// Trigger starts a run in the background. The context outlives the calling
// request; cancelling it stops the run between iterations.
func (r *Runner) Trigger(ctx context.Context, mode Mode) error {
	if err := r.acquire(); err != nil {
		return err
	}
	go func() {
		r.release(r.execute(ctx, mode))
	}()
	return nil
}

// RunSync executes a run inline, holding the guard for its duration. Used by
// the one-shot CLI mode.
func (r *Runner) RunSync(ctx context.Context, mode Mode) error {
	if err := r.acquire(); err != nil {
		return err
	}
	err := r.execute(ctx, mode)
	r.release(err)
	return err
}

// Status returns the current run state and the outcome of the last run.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		Running:   r.running,
		LastRun:   r.lastRun,
		LastError: r.lastErr,
	}
}

func (r *Runner) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}
	r.running = true
	return nil
}

func (r *Runner) release(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.lastRun = time.Now().UTC().Format("2006-01-02 15:04:05 UTC")
	if err != nil {
		r.lastErr = err.Error()
	} else {
		r.lastErr = ""
	}
}

func (r *Runner) execute(ctx context.Context, mode Mode) error {
	deps, err := r.deps(ctx)
	if err != nil {
		return err
	}
	if mode == ModeIndex || mode == ModeBoth {
		if err := RunIndexing(ctx, deps); err != nil {
			return err
		}
	}
	if mode == ModeMatching || mode == ModeBoth {
		return RunMatching(ctx, deps)
	}
	return nil
}
