package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"assetsync/internal/codec"
	"assetsync/internal/config"
	"assetsync/internal/history"
	"assetsync/internal/logging"
	"assetsync/internal/metadata"
	"assetsync/internal/objectstore"
	"assetsync/internal/services"
	"assetsync/internal/staging"
	"assetsync/internal/variants"
)

// Recorder receives one outcome per processed file. *history.Store satisfies it.
type Recorder interface {
	RecordFile(ctx context.Context, outcome history.FileOutcome) error
}

// Pipeline publishes staged assets. Build it with New; fields may be replaced
// before Run for tests.
type Pipeline struct {
	Config   *config.Config
	Store    objectstore.Store
	Codec    codec.ImageCodec
	Writer   *metadata.Writer
	Variants variants.Table
	Layout   staging.Layout
	Logger   *slog.Logger
	Recorder Recorder
	Now      func() time.Time
}

// New wires a pipeline for cfg around store.
func New(cfg *config.Config, store objectstore.Store, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "new", "config is required", nil)
	}
	if store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "new", "object store is required", nil)
	}
	table, err := cfg.VariantTable()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		Config:   cfg,
		Store:    store,
		Codec:    codec.NewImaging(),
		Writer:   metadata.NewWriter(cfg),
		Variants: table,
		Layout:   staging.LayoutFromConfig(cfg),
		Logger:   logging.NewComponentLogger(logger, "publish"),
		Now:      time.Now,
	}, nil
}

// Run executes Relocate, ProcessEach, Cleanup, and Summarize. The returned
// Summary is valid even when err is non-nil and reflects the work done before
// the failure.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := p.now()
	summary := Summary{}
	logger := logging.WithContext(ctx, p.Logger)

	relocateCtx := logging.WithStage(ctx, "relocate")
	relocated, err := staging.Relocate(relocateCtx, p.Layout, logging.WithContext(relocateCtx, p.Logger))
	if err != nil {
		return summary, fmt.Errorf("relocate inbox: %w", err)
	}
	summary.Relocated = len(relocated.Moved)

	staged, err := staging.ListStaged(p.Layout)
	if err != nil {
		return summary, fmt.Errorf("list staged files: %w", err)
	}
	summary.Total = len(staged)
	logger.Info("publish run started",
		logging.Int("staged", len(staged)),
		logging.Int("relocated", summary.Relocated),
		logging.Int("variants", p.Variants.Len()),
		logging.String(logging.FieldEventType, "publish_start"),
	)

	processCtx := logging.WithStage(ctx, "process")
	for _, file := range staged {
		if err := ctx.Err(); err != nil {
			logging.WarnWithContext(logger, "publish run cancelled; remaining files left in staging", "publish_cancelled",
				logging.Int("remaining", summary.Total-len(summary.Outcomes)),
				logging.String(logging.FieldImpact, "unprocessed files will be picked up next run"),
			)
			return summary, err
		}
		outcome := p.processFile(processCtx, file)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Err == nil {
			summary.Processed++
		}
		p.record(processCtx, outcome)
	}

	cleanupCtx := logging.WithStage(ctx, "cleanup")
	summary.Cleanup = staging.Cleanup(p.Layout, p.Config.Pipeline.CleanupMode, logging.WithContext(cleanupCtx, p.Logger))
	if err := summary.Cleanup.Err(); err != nil {
		return summary, services.Wrap(services.ErrIO, "publish", "cleanup", "remove working directories", err)
	}

	summary.Duration = p.now().Sub(started)
	logger.Info("publish run finished",
		logging.Int("processed", summary.Processed),
		logging.Int("total", summary.Total),
		logging.Int("failed", summary.Failed()),
		logging.Duration("duration", summary.Duration),
		logging.String(logging.FieldEventType, "publish_complete"),
	)
	return summary, nil
}

func (p *Pipeline) record(ctx context.Context, outcome Outcome) {
	if p.Recorder == nil {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	entry := history.FileOutcome{
		RunID:      runID,
		UID:        outcome.UID,
		Kind:       string(outcome.File.Kind),
		Source:     outcome.File.Name,
		Status:     history.FilePublished,
		Keys:       outcome.Keys,
		RecordedAt: p.now(),
	}
	if outcome.Err != nil {
		entry.Status = history.FileFailed
		entry.Error = outcome.Err.Error()
	}
	if err := p.Recorder.RecordFile(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(p.Logger, "failed to record file outcome", "history_record_failed",
			logging.String(logging.FieldUID, outcome.UID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database path and permissions"),
			logging.String(logging.FieldImpact, "run history will be incomplete"),
		)
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
