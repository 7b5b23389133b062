package databaserunner

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dadata-project/party-stats/pipeline"
	"github.com/dadata-project/party-stats/runner"
	"github.com/dadata-project/party-stats/store"
)

// dbRunner writes the same files as the file runner and additionally keeps
// every table, summary and the run itself in a database.
type dbRunner struct {
	cfg        *runner.Config
	categories []pipeline.Category
	store      *store.Store
	pipe       *pipeline.Pipeline
}

func New(ctx context.Context, cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeDatabase {
		return nil, runner.ErrInvalidRunMode
	}

	categories, err := runner.CreateCategories(cfg)
	if err != nil {
		return nil, err
	}

	writers, err := runner.Writers(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(ctx, cfg.Dsn)
	if err != nil {
		return nil, err
	}

	writers = append(writers, store.NewResultWriter(s))

	pipe, err := runner.NewPipeline(cfg, writers)
	if err != nil {
		_ = s.Close()

		return nil, err
	}

	return &dbRunner{
		cfg:        cfg,
		categories: categories,
		store:      s,
		pipe:       pipe,
	}, nil
}

func (r *dbRunner) Run(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	runID := r.pipe.RunID()

	if err := r.store.MarkStarted(ctx, runID); err != nil {
		return err
	}

	reports, runErr := r.pipe.RunAll(ctx, r.categories, r.cfg.Concurrency)
	stats := runner.CollectStats(runID, reports)

	// the run row is closed even when the context was cancelled
	if err := r.store.MarkFinished(context.WithoutCancel(ctx), runID, len(stats.Categories), stats.Records, runErr); err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("could not close run")
	}

	runner.Finish(ctx, r.cfg, stats, runErr)

	return runErr
}

func (r *dbRunner) Close(context.Context) error {
	return r.store.Close()
}
