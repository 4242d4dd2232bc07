package hostrun

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"assetsync/internal/history"
	"assetsync/internal/logging"
	"assetsync/internal/mirror"
	"assetsync/internal/preflight"
	"assetsync/internal/publish"
	"assetsync/internal/services"
)

// RunPublishPipeline runs one publish cycle and returns the human-readable
// summary. Run-aborting failures are reported as "Error: <err>".
func RunPublishPipeline(ctx context.Context, env *Env) string {
	summary, err := Publish(ctx, env)
	if err != nil {
		return "Error: " + err.Error()
	}
	return summary.String()
}

// RunMirrorSync mirrors published images locally. It reports whether setup
// succeeded; individual download failures do not change the result.
func RunMirrorSync(ctx context.Context, env *Env) bool {
	_, err := Mirror(ctx, env)
	return err == nil
}

// Publish is RunPublishPipeline with the structured summary.
func Publish(ctx context.Context, env *Env) (publish.Summary, error) {
	if err := env.validate(); err != nil {
		return publish.Summary{}, err
	}
	cfg := env.Config
	lock, err := acquireLock(cfg)
	if err != nil {
		return publish.Summary{}, err
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, env.logger())

	if failed := preflight.Failed(preflight.RunAll(ctx, cfg)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, r := range failed {
			details = append(details, r.Name+": "+r.Detail)
		}
		return publish.Summary{}, services.Wrap(services.ErrIO, "hostrun", "preflight", strings.Join(details, "; "), nil)
	}

	pipeline, err := publish.New(cfg, env.Store, env.logger())
	if err != nil {
		return publish.Summary{}, err
	}
	started := time.Now()
	ledger := env.beginRun(ctx, runID, history.KindPublish, started)
	if ledger {
		pipeline.Recorder = env.History
	}

	logger.Info("publish run starting",
		logging.String("store", env.StoreLabel()),
		logging.String("cleanup_mode", cfg.Pipeline.CleanupMode),
		logging.String(logging.FieldEventType, "run_start"),
	)
	summary, runErr := pipeline.Run(ctx)
	if ledger {
		run := history.Run{
			ID:         runID,
			Kind:       history.KindPublish,
			Status:     history.StatusCompleted,
			FinishedAt: time.Now(),
			Processed:  summary.Processed,
			Total:      summary.Total,
			Failed:     summary.Failed(),
			Summary:    summary.String(),
		}
		if runErr != nil {
			run.Status = history.StatusFailed
			run.Summary = "Error: " + runErr.Error()
		}
		env.finishRun(ctx, run)
	}
	if runErr != nil {
		logging.ErrorWithContext(logger, "publish run aborted", "run_failed",
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, "fix the reported problem and rerun; staged files are kept"),
		)
		return summary, runErr
	}
	return summary, nil
}

// Mirror is RunMirrorSync with the structured result.
func Mirror(ctx context.Context, env *Env) (mirror.Result, error) {
	if err := env.validate(); err != nil {
		return mirror.Result{}, err
	}
	lock, err := acquireLock(env.Config)
	if err != nil {
		return mirror.Result{}, err
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ledger := env.beginRun(ctx, runID, history.KindMirror, time.Now())

	result, runErr := mirror.New(env.Config, env.Store, env.logger()).Sync(ctx)
	if ledger {
		run := history.Run{
			ID:         runID,
			Kind:       history.KindMirror,
			Status:     history.StatusCompleted,
			FinishedAt: time.Now(),
			Processed:  result.Downloaded,
			Total:      result.Entries,
			Failed:     result.Failed,
			Summary: fmt.Sprintf("Downloaded %d, skipped %d, failed %d of %d images.",
				result.Downloaded, result.Skipped, result.Failed, result.Entries),
		}
		if runErr != nil {
			run.Status = history.StatusFailed
			run.Summary = "Error: " + runErr.Error()
		}
		env.finishRun(ctx, run)
	}
	if runErr != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, env.logger()), "mirror sync failed", "run_failed",
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, "check that the mirror directory can be created"),
		)
	}
	return result, runErr
}

// beginRun opens a ledger row; it reports false when history is disabled or
// unavailable so the run proceeds without it.
func (e *Env) beginRun(ctx context.Context, runID, kind string, started time.Time) bool {
	if e.History == nil {
		return false
	}
	if err := e.History.BeginRun(ctx, runID, kind, started); err != nil {
		logging.WarnWithContext(e.logger(), "failed to record run start", "history_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will be missing from history"),
		)
		return false
	}
	return true
}

func (e *Env) finishRun(ctx context.Context, run history.Run) {
	// The run may have been cancelled; the ledger row should still close.
	if err := e.History.FinishRun(context.WithoutCancel(ctx), run); err != nil && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(e.logger(), "failed to record run finish", "history_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run stays marked as running in history"),
		)
	}
}
