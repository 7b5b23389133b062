package exporter

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/dadata-project/party-stats/pipeline"
)

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ pipeline.ResultWriter = (*S3Uploader)(nil)

// S3Uploader stores the same two files the FileWriter produces, under
// <prefix>/<run id>/ in the bucket.
type S3Uploader struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func NewS3Uploader(client PutObjectAPI, bucket, prefix string) *S3Uploader {
	return &S3Uploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// NewS3Client uses static credentials when both keys are given and the
// default AWS credential chain otherwise.
func NewS3Client(ctx context.Context, region, accessKey, secretKey string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}

	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(cfg), nil
}

func (u *S3Uploader) Key(runID, file string) string {
	return path.Join(u.prefix, runID, file)
}

func (u *S3Uploader) Write(ctx context.Context, res *pipeline.Result) error {
	var buf bytes.Buffer

	if err := WriteCompanies(&buf, res.Records); err != nil {
		return err
	}

	if err := u.put(ctx, u.Key(res.RunID, res.Category.Name+".csv"), buf.Bytes()); err != nil {
		return err
	}

	if res.Summary == nil {
		return nil
	}

	buf.Reset()

	if err := WriteSummary(&buf, res.Summary); err != nil {
		return err
	}

	return u.put(ctx, u.Key(res.RunID, res.Category.Name+"_result.csv"), buf.Bytes())
}

func (u *S3Uploader) put(ctx context.Context, key string, body []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", u.bucket, key, err)
	}

	zerolog.Ctx(ctx).Info().Str("bucket", u.bucket).Str("key", key).Msg("uploaded")

	return nil
}
