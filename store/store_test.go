package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadata-project/party-stats/dadata"
	"github.com/dadata-project/party-stats/location"
	"github.com/dadata-project/party-stats/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		driver  string
		source  string
		dialect dialect
	}{
		{dsn: "postgres://u:p@localhost/db", driver: "pgx", source: "postgres://u:p@localhost/db", dialect: dialectPostgres},
		{dsn: "postgresql://localhost/db", driver: "pgx", source: "postgresql://localhost/db", dialect: dialectPostgres},
		{dsn: "sqlite://data/party.db", driver: "sqlite", source: "data/party.db", dialect: dialectSQLite},
		{dsn: "party.db", driver: "sqlite", source: "party.db", dialect: dialectSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, source, d := parseDSN(tt.dsn)

			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.source, source)
			assert.Equal(t, tt.dialect, d)
		})
	}
}

func TestOpenEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyDSN)
}

func TestValuesList(t *testing.T) {
	assert.Equal(t, "($1, $2), ($3, $4)", dialectPostgres.valuesList(2, 2))
	assert.Equal(t, "(?, ?, ?)", dialectSQLite.valuesList(1, 3))
}

func TestBuildInsertCompanies(t *testing.T) {
	entries := []companyEntry{
		{RunID: "r", Category: "c", Position: 1, Record: dadata.CompanyRecord{Value: "a"}},
		{RunID: "r", Category: "c", Position: 2, Record: dadata.CompanyRecord{Value: "b"}},
	}

	q, args := dialectPostgres.buildInsertCompanies(entries)

	assert.Len(t, args, 26)
	assert.Contains(t, q, "INSERT INTO companies")
	assert.Contains(t, q, "$26)")
	assert.Equal(t, []any{"r", "c", 2, "b"}, args[13:17])
}

func TestLookupQueries(t *testing.T) {
	_, _, ok := newCompaniesQuery("", "c").build(dialectSQLite)
	assert.False(t, ok)

	q, args, ok := newCompaniesQuery("r", "").build(dialectPostgres)
	require.True(t, ok)
	assert.Equal(t, []any{"r"}, args)
	assert.Contains(t, q, "ORDER BY category, position")

	_, _, ok = newSummaryQuery("r", "").build(dialectSQLite)
	assert.False(t, ok)
}

func TestResultWriterRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// more rows than one batch holds
	records := make([]dadata.CompanyRecord, 0, maxBatchSize+7)
	for i := 0; i < maxBatchSize+7; i++ {
		records = append(records, dadata.CompanyRecord{
			Value:   fmt.Sprintf("ООО %d", i),
			UNP:     fmt.Sprintf("%09d", i),
			Address: "г. Минск",
		})
	}

	summary := location.Summary{{Label: "Минск", Count: len(records)}}

	res := &pipeline.Result{
		RunID:    "run-1",
		Category: pipeline.Category{Name: "companies_active"},
		Records:  records,
		Summary:  summary,
	}

	require.NoError(t, NewResultWriter(s).Write(ctx, res))

	got, err := s.Companies(ctx, "run-1", "companies_active")
	require.NoError(t, err)
	assert.Equal(t, records, got)

	gotSummary, err := s.Summary(ctx, "run-1", "companies_active")
	require.NoError(t, err)
	assert.Equal(t, summary, gotSummary)

	other, err := s.Companies(ctx, "run-2", "companies_active")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = s.Summary(ctx, "", "companies_active")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestResultWriterEmptyTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res := &pipeline.Result{
		RunID:    "run-1",
		Category: pipeline.Category{Name: "companies_suspended"},
		Records:  []dadata.CompanyRecord{},
	}

	require.NoError(t, NewResultWriter(s).Write(ctx, res))

	summary, err := s.Summary(ctx, "run-1", "companies_suspended")
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkStarted(ctx, "run-1"))

	run, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)

	require.NoError(t, s.MarkFinished(ctx, "run-1", 6, 120, nil))

	run, err = s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, &Run{ID: "run-1", Status: StatusDone, Categories: 6, Records: 120}, run)

	require.NoError(t, s.MarkStarted(ctx, "run-2"))
	require.NoError(t, s.MarkFinished(ctx, "run-2", 1, 0, errors.New("disk full")))

	run, err = s.GetRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, "disk full", run.Error)
}
