package lambdaaws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dadata-project/party-stats/pipeline"
	"github.com/dadata-project/party-stats/runner"
)

// InvokeAPI is the part of the Lambda client the invoker needs.
type InvokeAPI interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

type invoker struct {
	cfg        *runner.Config
	categories []pipeline.Category
	client     InvokeAPI
	runID      string
}

// NewInvoker fans the categories out: one asynchronous function invocation
// per category, all sharing a run id.
func NewInvoker(ctx context.Context, cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeAwsLambdaInvoker {
		return nil, runner.ErrInvalidRunMode
	}

	opts := []func(*awsconfig.LoadOptions) error{}

	if cfg.AwsRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AwsRegion))
	}

	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return newInvoker(cfg, awslambda.NewFromConfig(awsCfg))
}

func newInvoker(cfg *runner.Config, client InvokeAPI) (*invoker, error) {
	categories, err := runner.CreateCategories(cfg)
	if err != nil {
		return nil, err
	}

	return &invoker{
		cfg:        cfg,
		categories: categories,
		client:     client,
		runID:      uuid.New().String(),
	}, nil
}

func (i *invoker) payload(c pipeline.Category) Input {
	in := Input{
		RunID:  i.runID,
		Query:  c.Query.Text,
		Count:  c.Query.Count,
		Bucket: i.cfg.S3Bucket,
		Prefix: i.cfg.S3Prefix,
	}

	if c.Query.Status != "" {
		in.Statuses = []string{string(c.Query.Status)}
	}

	in.Type = string(c.Query.EntityType)

	return in
}

func (i *invoker) Run(ctx context.Context) error {
	log := zerolog.Ctx(ctx)

	var errs []error

	for _, c := range i.categories {
		body, err := json.Marshal(i.payload(c))
		if err != nil {
			errs = append(errs, err)

			continue
		}

		_, err = i.client.Invoke(ctx, &awslambda.InvokeInput{
			FunctionName:   aws.String(i.cfg.FunctionName),
			InvocationType: types.InvocationTypeEvent,
			Payload:        body,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("invoking %s for %s: %w", i.cfg.FunctionName, c.Name, err))

			continue
		}

		log.Info().Str("category", c.Name).Str("run_id", i.runID).Msg("lambda invoked")
	}

	return errors.Join(errs...)
}

func (i *invoker) Close(context.Context) error {
	return nil
}
