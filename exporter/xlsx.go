package exporter

import (
	"context"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/dadata-project/party-stats/dadata"
	"github.com/dadata-project/party-stats/location"
	"github.com/dadata-project/party-stats/pipeline"
)

const (
	SheetCompanies = "companies"
	SheetSummary   = "summary"
)

var _ pipeline.ResultWriter = (*XLSXWriter)(nil)

// XLSXWriter stores one workbook per category with the company table and,
// when present, the location summary on a second sheet.
type XLSXWriter struct {
	dir string
}

func NewXLSXWriter(dir string) *XLSXWriter {
	return &XLSXWriter{dir: dir}
}

func (w *XLSXWriter) Path(name string) string {
	return filepath.Join(w.dir, name+".xlsx")
}

func (w *XLSXWriter) Write(ctx context.Context, res *pipeline.Result) error {
	path := w.Path(res.Category.Name)

	err := writeFile(path, func(out io.Writer) error {
		return WriteWorkbook(out, res.Records, res.Summary)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("path", path).Msg("workbook saved")

	return nil
}

func WriteWorkbook(out io.Writer, records []dadata.CompanyRecord, summary location.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCompanies); err != nil {
		return err
	}

	if err := setRow(f, SheetCompanies, 1, dadata.Columns); err != nil {
		return err
	}

	for i := range records {
		if err := setRow(f, SheetCompanies, i+2, records[i].Row()); err != nil {
			return err
		}
	}

	if summary != nil {
		if _, err := f.NewSheet(SheetSummary); err != nil {
			return err
		}

		if err := setRow(f, SheetSummary, 1, summaryHeader); err != nil {
			return err
		}

		for i, e := range summary {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}

			if err := f.SetSheetRow(SheetSummary, cell, &[]any{e.Label, e.Count}); err != nil {
				return err
			}
		}
	}

	_, err := f.WriteTo(out)

	return err
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	return f.SetSheetRow(sheet, cell, &values)
}
