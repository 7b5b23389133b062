package store

import (
	"fmt"
	"strings"

	"github.com/dadata-project/party-stats/dadata"
	"github.com/dadata-project/party-stats/location"
)

const companyColumns = `run_id, category, position, value, unp, registration_date, removal_date,
		status, full_name_ru, trade_name_ru, address, oked, oked_name`

// companyEntry is one row of the companies table.
type companyEntry struct {
	RunID    string
	Category string
	Position int
	Record   dadata.CompanyRecord
}

func (e *companyEntry) args() []any {
	args := []any{e.RunID, e.Category, e.Position}
	for _, v := range e.Record.Row() {
		args = append(args, v)
	}

	return args
}

// valuesList renders rows*cols bind parameters as "(p1, p2), (p3, p4)".
func (d dialect) valuesList(rows, cols int) string {
	elements := make([]string, 0, rows)

	for i := 0; i < rows; i++ {
		params := make([]string, 0, cols)
		for j := 0; j < cols; j++ {
			params = append(params, d.placeholder(i*cols+j+1))
		}

		elements = append(elements, "("+strings.Join(params, ", ")+")")
	}

	return strings.Join(elements, ", ")
}

// buildInsertCompanies returns a multi-row INSERT for entries.
func (d dialect) buildInsertCompanies(entries []companyEntry) (string, []any) {
	const cols = 13

	args := make([]any, 0, len(entries)*cols)
	for i := range entries {
		args = append(args, entries[i].args()...)
	}

	q := "INSERT INTO companies\n\t\t(" + companyColumns + ")\n\t\tVALUES\n\t\t" + d.valuesList(len(entries), cols)

	return q, args
}

func (d dialect) buildInsertSummary(runID, category string, summary location.Summary) (string, []any) {
	const cols = 5

	args := make([]any, 0, len(summary)*cols)
	for i, e := range summary {
		args = append(args, runID, category, i+1, e.Label, e.Count)
	}

	q := "INSERT INTO location_summary\n\t\t(run_id, category, rank, label, count)\n\t\tVALUES\n\t\t" +
		d.valuesList(len(summary), cols)

	return q, args
}

// companiesQuery builds the lookup of a stored company table.
type companiesQuery struct {
	runID    string
	category string
}

func newCompaniesQuery(runID, category string) *companiesQuery {
	return &companiesQuery{
		runID:    runID,
		category: category,
	}
}

// build returns the SQL and its arguments; ok is false when the run id is
// missing. An empty category selects every category of the run.
func (q *companiesQuery) build(d dialect) (string, []any, bool) {
	if q.runID == "" {
		return "", nil, false
	}

	base := `SELECT value, unp, registration_date, removal_date, status,
		full_name_ru, trade_name_ru, address, oked, oked_name
		FROM companies
		WHERE run_id = ` + d.placeholder(1)

	if q.category != "" {
		return base + `
		AND category = ` + d.placeholder(2) + `
		ORDER BY position`, []any{q.runID, q.category}, true
	}

	return base + `
		ORDER BY category, position`, []any{q.runID}, true
}

// summaryQuery builds the lookup of a stored location summary.
type summaryQuery struct {
	runID    string
	category string
}

func newSummaryQuery(runID, category string) *summaryQuery {
	return &summaryQuery{
		runID:    runID,
		category: category,
	}
}

func (q *summaryQuery) build(d dialect) (string, []any, bool) {
	if q.runID == "" || q.category == "" {
		return "", nil, false
	}

	return fmt.Sprintf(`SELECT label, count FROM location_summary
		WHERE run_id = %s AND category = %s
		ORDER BY rank`, d.placeholder(1), d.placeholder(2)), []any{q.runID, q.category}, true
}
