package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dadata-project/party-stats/dadata"
	"github.com/dadata-project/party-stats/location"
)

// Finder is the registry lookup. *dadata.Client implements it.
type Finder interface {
	FindParties(ctx context.Context, payload dadata.PartyRequest) (*dadata.SuggestionsResponse, error)
}

// ResultWriter persists the outcome of one category.
type ResultWriter interface {
	Write(ctx context.Context, res *Result) error
}

// Category is one unit of work: a query and the file stem its outputs use.
type Category struct {
	Name  string
	Query *dadata.Query
}

type Result struct {
	RunID    string
	Category Category
	Records  []dadata.CompanyRecord
	// Summary is nil when there were no records to summarize.
	Summary location.Summary
}

// Report records how a category went. Fetch and normalization problems are
// reported here instead of failing the run.
type Report struct {
	Category       string
	Records        int
	FetchErr       error
	NormalizeErr   error
	SummarySkipped bool
	Duration       time.Duration
}

func (r *Report) OK() bool {
	return r.FetchErr == nil && r.NormalizeErr == nil
}

type Pipeline struct {
	finder  Finder
	writers []ResultWriter
	runID   string
}

type Option func(*Pipeline)

func WithWriter(w ResultWriter) Option {
	return func(p *Pipeline) {
		p.writers = append(p.writers, w)
	}
}

func WithRunID(id string) Option {
	return func(p *Pipeline) {
		p.runID = id
	}
}

func New(finder Finder, opts ...Option) *Pipeline {
	p := &Pipeline{
		finder: finder,
		runID:  uuid.New().String(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Pipeline) RunID() string {
	return p.runID
}

// StatusCategories builds one category per status, named companies_<status>.
// It fails on the first invalid status, before anything is sent. A repeated
// status is dropped, two categories must never share a file stem.
func StatusCategories(text string, statuses []string, count int) ([]Category, error) {
	categories := make([]Category, 0, len(statuses))
	seen := make(map[dadata.Status]bool, len(statuses))

	for _, s := range statuses {
		q, err := dadata.NewQuery(text, s, dadata.WithCount(count))
		if err != nil {
			return nil, err
		}

		if seen[q.Status] {
			continue
		}

		seen[q.Status] = true

		categories = append(categories, Category{
			Name:  "companies_" + strings.ToLower(s),
			Query: q,
		})
	}

	return categories, nil
}

func TypeCategory(text, entityType string, count int) (Category, error) {
	q, err := dadata.NewTypeQuery(text, entityType, dadata.WithCount(count))
	if err != nil {
		return Category{}, err
	}

	return Category{
		Name:  "companies_" + strings.ToLower(entityType),
		Query: q,
	}, nil
}

// Run executes fetch, normalize, persist and summarize for one category.
// Only persistence errors are returned.
func (p *Pipeline) Run(ctx context.Context, category Category) (*Report, error) {
	start := time.Now()
	log := zerolog.Ctx(ctx).With().Str("category", category.Name).Logger()

	report := &Report{Category: category.Name}

	defer func() {
		report.Duration = time.Since(start)
	}()

	resp, err := p.finder.FindParties(ctx, category.Query.Payload())
	if err != nil {
		report.FetchErr = err

		log.Error().Err(err).Msg("request failed, continuing with an empty result")
	}

	records, err := dadata.Normalize(resp)
	if err != nil {
		report.NormalizeErr = err

		log.Warn().Err(err).Msg("no data in response")
	}

	report.Records = len(records)

	res := &Result{
		RunID:    p.runID,
		Category: category,
		Records:  records,
	}

	summary, err := location.Summarize(records)

	switch {
	case errors.Is(err, location.ErrNoRecords):
		report.SummarySkipped = true

		log.Warn().Msgf("table %s is empty, skipping location summary", category.Name)
	case err != nil:
		return report, err
	default:
		res.Summary = summary
	}

	for _, w := range p.writers {
		if err := w.Write(ctx, res); err != nil {
			return report, fmt.Errorf("category %s: %w", category.Name, err)
		}
	}

	log.Info().Int("records", report.Records).Int("labels", len(res.Summary)).Msg("category done")

	return report, nil
}

// RunAll runs the categories independently. With concurrency 1 they run one
// after another in the given order. A failing category does not stop the
// others; all errors are joined.
func (p *Pipeline) RunAll(ctx context.Context, categories []Category, concurrency int) ([]*Report, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	reports := make([]*Report, len(categories))
	errs := make([]error, len(categories))

	var g errgroup.Group

	g.SetLimit(concurrency)

	for i := range categories {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()

			break
		}

		i := i

		g.Go(func() error {
			reports[i], errs[i] = p.Run(ctx, categories[i])

			return nil
		})
	}

	_ = g.Wait()

	return reports, errors.Join(errs...)
}
