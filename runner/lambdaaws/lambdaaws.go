package lambdaaws

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"

	"github.com/dadata-project/party-stats/pipeline"
	"github.com/dadata-project/party-stats/runner"
)

// Only /tmp is writable inside a Lambda sandbox.
const tmpDir = "/tmp/party-stats"

var ErrMissingBucket = errors.New("lambda runs need an S3 bucket for their output")

type lRunner struct {
	cfg *runner.Config
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeAwsLambda {
		return nil, runner.ErrInvalidRunMode
	}

	return &lRunner{cfg: cfg}, nil
}

func (r *lRunner) Run(ctx context.Context) error {
	log := *zerolog.Ctx(ctx)

	lambda.Start(func(ctx context.Context, in Input) (Output, error) {
		return r.handler(log.WithContext(ctx), in)
	})

	return nil
}

func (r *lRunner) Close(context.Context) error {
	return nil
}

// eventConfig overlays the event on top of the process configuration.
func (r *lRunner) eventConfig(in Input) (*runner.Config, error) {
	cfg := *r.cfg

	cfg.OutputDir = tmpDir
	cfg.RunMode = runner.RunModeFile

	if in.Query != "" {
		cfg.Query = in.Query
	}

	if len(in.Statuses) > 0 || in.Type != "" {
		cfg.Statuses = in.Statuses
		cfg.EntityType = in.Type
	}

	if in.Count > 0 {
		cfg.Count = in.Count
	}

	if in.Bucket != "" {
		cfg.S3Bucket = in.Bucket
	}

	if in.Prefix != "" {
		cfg.S3Prefix = in.Prefix
	}

	if cfg.S3Bucket == "" {
		return nil, ErrMissingBucket
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (r *lRunner) handler(ctx context.Context, in Input) (Output, error) {
	cfg, err := r.eventConfig(in)
	if err != nil {
		return Output{}, err
	}

	categories, err := runner.CreateCategories(cfg)
	if err != nil {
		return Output{}, err
	}

	writers, err := runner.Writers(ctx, cfg)
	if err != nil {
		return Output{}, err
	}

	var opts []pipeline.Option
	if in.RunID != "" {
		opts = append(opts, pipeline.WithRunID(in.RunID))
	}

	pipe, err := runner.NewPipeline(cfg, writers, opts...)
	if err != nil {
		return Output{}, err
	}

	reports, runErr := pipe.RunAll(ctx, categories, cfg.Concurrency)
	stats := runner.CollectStats(pipe.RunID(), reports)

	runner.Finish(ctx, cfg, stats, runErr)

	return Output{
		RunID:      stats.RunID,
		Categories: stats.Categories,
		Records:    stats.Records,
		Failed:     stats.Failed,
	}, runErr
}
