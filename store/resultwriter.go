package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dadata-project/party-stats/dadata"
	"github.com/dadata-project/party-stats/location"
	"github.com/dadata-project/party-stats/pipeline"
)

const maxBatchSize = 50

var ErrInvalidQuery = errors.New("invalid query")

var _ pipeline.ResultWriter = (*resultWriter)(nil)

type resultWriter struct {
	store *Store
}

// NewResultWriter stores every category's table and summary in one
// transaction.
func NewResultWriter(s *Store) pipeline.ResultWriter {
	return &resultWriter{store: s}
}

func (r *resultWriter) Write(ctx context.Context, res *pipeline.Result) error {
	log := zerolog.Ctx(ctx)

	entries := make([]companyEntry, 0, len(res.Records))
	for i := range res.Records {
		entries = append(entries, companyEntry{
			RunID:    res.RunID,
			Category: res.Category.Name,
			Position: i + 1,
			Record:   res.Records[i],
		})
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(entries); start += maxBatchSize {
		batch := entries[start:min(start+maxBatchSize, len(entries))]

		q, args := r.store.dialect.buildInsertCompanies(batch)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("inserting companies: %w", err)
		}
	}

	if len(res.Summary) > 0 {
		q, args := r.store.dialect.buildInsertSummary(res.RunID, res.Category.Name, res.Summary)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("inserting location summary: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info().Int("records", len(entries)).Int("labels", len(res.Summary)).Msg("saved to database")

	return nil
}

// Companies reads back a stored company table.
func (s *Store) Companies(ctx context.Context, runID, category string) ([]dadata.CompanyRecord, error) {
	q, args, ok := newCompaniesQuery(runID, category).build(s.dialect)
	if !ok {
		return nil, ErrInvalidQuery
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []dadata.CompanyRecord{}

	for rows.Next() {
		var c dadata.CompanyRecord
		if err := rows.Scan(&c.Value, &c.UNP, &c.RegistrationDate, &c.RemovalDate, &c.Status,
			&c.FullNameRu, &c.TradeNameRu, &c.Address, &c.OKED, &c.OKEDName); err != nil {
			return nil, err
		}

		records = append(records, c)
	}

	return records, rows.Err()
}

// Summary reads back a stored location summary in rank order.
func (s *Store) Summary(ctx context.Context, runID, category string) (location.Summary, error) {
	q, args, ok := newSummaryQuery(runID, category).build(s.dialect)
	if !ok {
		return nil, ErrInvalidQuery
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary location.Summary

	for rows.Next() {
		var e location.Entry
		if err := rows.Scan(&e.Label, &e.Count); err != nil {
			return nil, err
		}

		summary = append(summary, e)
	}

	return summary, rows.Err()
}
