package exporter

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dadata-project/party-stats/pipeline"
)

var _ pipeline.ResultWriter = (*FileWriter)(nil)

// FileWriter stores <name>.csv and, when there is a summary,
// <name>_result.csv (tab separated) under dir.
type FileWriter struct {
	dir string
}

func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

func (w *FileWriter) CompaniesPath(name string) string {
	return filepath.Join(w.dir, name+".csv")
}

func (w *FileWriter) SummaryPath(name string) string {
	return filepath.Join(w.dir, name+"_result.csv")
}

func (w *FileWriter) Write(ctx context.Context, res *pipeline.Result) error {
	log := zerolog.Ctx(ctx)

	path := w.CompaniesPath(res.Category.Name)
	if err := SaveCompanies(path, res.Records); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("records", len(res.Records)).Msg("company table saved")

	if res.Summary == nil {
		return nil
	}

	path = w.SummaryPath(res.Category.Name)
	if err := SaveSummary(path, res.Summary); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("labels", len(res.Summary)).Msg("location summary saved")

	return nil
}
