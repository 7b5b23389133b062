package filerunner

import (
	"context"

	"github.com/dadata-project/party-stats/pipeline"
	"github.com/dadata-project/party-stats/runner"
)

type fileRunner struct {
	cfg        *runner.Config
	categories []pipeline.Category
	pipe       *pipeline.Pipeline
}

// New validates the categories up front, so an invalid status fails here
// and nothing is requested.
func New(ctx context.Context, cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeFile {
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

	pipe, err := runner.NewPipeline(cfg, writers)
	if err != nil {
		return nil, err
	}

	return &fileRunner{
		cfg:        cfg,
		categories: categories,
		pipe:       pipe,
	}, nil
}

func (r *fileRunner) Run(ctx context.Context) error {
	reports, err := r.pipe.RunAll(ctx, r.categories, r.cfg.Concurrency)

	runner.Finish(ctx, r.cfg, runner.CollectStats(r.pipe.RunID(), reports), err)

	return err
}

func (r *fileRunner) Close(context.Context) error {
	return nil
}
