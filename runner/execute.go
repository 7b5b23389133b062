package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dadata-project/party-stats/dadata"
	"github.com/dadata-project/party-stats/exporter"
	"github.com/dadata-project/party-stats/pipeline"
	"github.com/dadata-project/party-stats/tlmt"
	"github.com/dadata-project/party-stats/webhook"
)

// Writers returns the sinks every runner shares: the CSV/TSV files, and the
// workbook and S3 copies when enabled.
func Writers(ctx context.Context, cfg *Config) ([]pipeline.ResultWriter, error) {
	writers := []pipeline.ResultWriter{exporter.NewFileWriter(cfg.OutputDir)}

	if cfg.XLSX {
		writers = append(writers, exporter.NewXLSXWriter(cfg.OutputDir))
	}

	if cfg.S3Bucket != "" {
		client, err := exporter.NewS3Client(ctx, cfg.AwsRegion, cfg.AwsAccessKey, cfg.AwsSecretKey)
		if err != nil {
			return nil, err
		}

		writers = append(writers, exporter.NewS3Uploader(client, cfg.S3Bucket, cfg.S3Prefix))
	}

	return writers, nil
}

// NewPipeline wires the registry client and the writers.
func NewPipeline(cfg *Config, writers []pipeline.ResultWriter, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	dcfg, err := cfg.DadataConfig()
	if err != nil {
		return nil, err
	}

	for _, w := range writers {
		opts = append(opts, pipeline.WithWriter(w))
	}

	return pipeline.New(dadata.NewClient(dcfg), opts...), nil
}

// Stats sums up a finished run.
type Stats struct {
	RunID      string
	Categories map[string]int
	Records    int
	Failed     []string
}

func CollectStats(runID string, reports []*pipeline.Report) Stats {
	stats := Stats{
		RunID:      runID,
		Categories: make(map[string]int, len(reports)),
	}

	for _, r := range reports {
		if r == nil {
			continue
		}

		stats.Categories[r.Category] = r.Records
		stats.Records += r.Records

		if !r.OK() {
			stats.Failed = append(stats.Failed, r.Category)
		}
	}

	return stats
}

// Finish logs the outcome and sends the optional notifications.
func Finish(ctx context.Context, cfg *Config, stats Stats, runErr error) {
	log := zerolog.Ctx(ctx)

	if runErr != nil {
		log.Error().Err(runErr).Msg("run finished with errors")
	}

	log.Info().
		Str("run_id", stats.RunID).
		Int("categories", len(stats.Categories)).
		Int("records", stats.Records).
		Strs("failed", stats.Failed).
		Msg("run summary")

	if cfg.CompletionAPIURL != "" {
		webhook.NewAPIClient(cfg.CompletionAPIURL).CallRunCompletionAPI(ctx, webhook.RunCompletion{
			RunID:      stats.RunID,
			Categories: stats.Categories,
			Records:    stats.Records,
			Failed:     stats.Failed,
		})
	}

	key := cfg.TelemetryKey
	if cfg.DisableTelemetry {
		key = ""
	}

	t, err := tlmt.New(key)
	if err != nil {
		log.Debug().Err(err).Msg("telemetry disabled")

		return
	}

	defer func() {
		_ = t.Close()
	}()

	err = t.Send(ctx, tlmt.Event{
		Name: "run_finished",
		Properties: map[string]any{
			"categories": len(stats.Categories),
			"records":    stats.Records,
			"failed":     len(stats.Failed),
			"run_mode":   fmt.Sprint(cfg.RunMode),
		},
	})
	if err != nil {
		log.Debug().Err(err).Msg("telemetry event not sent")
	}
}
