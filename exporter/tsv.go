package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dadata-project/party-stats/location"
)

var summaryHeader = []string{"city_or_region", "count"}

// WriteSummary writes one "label<TAB>count" line per entry after a header.
func WriteSummary(w io.Writer, summary location.Summary) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(summaryHeader); err != nil {
		return err
	}

	for _, e := range summary {
		if err := cw.Write([]string{e.Label, strconv.Itoa(e.Count)}); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func ReadSummary(r io.Reader) (location.Summary, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = len(summaryHeader)

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var summary location.Summary

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		count, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("invalid count for %q: %w", row[0], err)
		}

		summary = append(summary, location.Entry{Label: row[0], Count: count})
	}

	return summary, nil
}

func SaveSummary(path string, summary location.Summary) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteSummary(w, summary)
	})
}

func LoadSummary(path string) (location.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadSummary(f)
}
