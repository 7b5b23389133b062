package runner

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadata-project/party-stats/dadata"
	"github.com/dadata-project/party-stats/pipeline"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("DADATA_API_KEY", "secret")
	t.Setenv("POSTHOG_API_KEY", "")

	cfg, err := ParseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "ООО", cfg.Query)
	assert.Equal(t, []string{"ACTIVE", "LIQUIDATING", "LIQUIDATED", "BANKRUPT", "SUSPENDED", "REORGANIZING"}, cfg.Statuses)
	assert.Equal(t, 20, cfg.Count)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, dadata.DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, RunModeFile, cfg.RunMode)
}

func TestParseConfigFlags(t *testing.T) {
	t.Setenv("DADATA_API_KEY", "secret")

	cfg, err := ParseConfig([]string{
		"-query", "ЗАО",
		"-statuses", "ACTIVE, BANKRUPT,,ACTIVE",
		"-count", "5",
		"-c", "3",
		"-dsn", "party.db",
	})
	require.NoError(t, err)

	assert.Equal(t, "ЗАО", cfg.Query)
	assert.Equal(t, []string{"ACTIVE", "BANKRUPT"}, cfg.Statuses)
	assert.Equal(t, 5, cfg.Count)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, RunModeDatabase, cfg.RunMode)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		args    []string
		wantErr error
	}{
		{name: "missing key", wantErr: ErrMissingAPIKey},
		{name: "both lambda modes", apiKey: "k", args: []string{"-aws-lambda", "-aws-lambda-invoker"}, wantErr: ErrInvalidConfig},
		{name: "zero concurrency", apiKey: "k", args: []string{"-c", "0"}, wantErr: ErrInvalidConfig},
		{name: "zero count", apiKey: "k", args: []string{"-count", "0"}, wantErr: ErrInvalidConfig},
		{name: "nothing to fetch", apiKey: "k", args: []string{"-statuses", ""}, wantErr: ErrInvalidConfig},
		{name: "invoker without function", args: []string{"-aws-lambda-invoker"}, wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DADATA_API_KEY", tt.apiKey)

			cfg, err := ParseConfig(tt.args)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, cfg)
		})
	}
}

func TestInvokerDoesNotNeedAPIKey(t *testing.T) {
	t.Setenv("DADATA_API_KEY", "")

	cfg, err := ParseConfig([]string{"-aws-lambda-invoker", "-function-name", "party-stats"})
	require.NoError(t, err)
	assert.Equal(t, RunModeAwsLambdaInvoker, cfg.RunMode)
}

func TestCreateCategories(t *testing.T) {
	cfg := &Config{Query: "ООО", Statuses: []string{"ACTIVE", "LIQUIDATED"}, EntityType: "LEGAL", Count: 20}

	categories, err := CreateCategories(cfg)
	require.NoError(t, err)

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{"companies_active", "companies_liquidated", "companies_legal"}, names)

	cfg.EntityType = ""
	cfg.Statuses = []string{"BANKRUPT", "BANKRUPT"}

	categories, err = CreateCategories(cfg)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "companies_bankrupt", categories[0].Name)

	cfg.Statuses = []string{"ACTIVE", "DISSOLVED"}

	_, err = CreateCategories(cfg)
	assert.ErrorIs(t, err, dadata.ErrInvalidStatus)
}

func TestCollectStats(t *testing.T) {
	reports := []*pipeline.Report{
		{Category: "companies_active", Records: 20},
		{Category: "companies_bankrupt", FetchErr: errors.New("timeout"), NormalizeErr: dadata.ErrNoSuggestions},
		nil,
	}

	stats := CollectStats("run-1", reports)

	assert.Equal(t, "run-1", stats.RunID)
	assert.Equal(t, 20, stats.Records)
	assert.Equal(t, map[string]int{"companies_active": 20, "companies_bankrupt": 0}, stats.Categories)
	assert.Equal(t, []string{"companies_bankrupt"}, stats.Failed)
}

func TestBanner(t *testing.T) {
	out := banner([]string{"Party registry statistics"}, 30)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "╔"+strings.Repeat("═", 28)+"╗", lines[0])
	assert.Equal(t, "║ Party registry statistics  ║", lines[1])
	assert.Equal(t, "╚"+strings.Repeat("═", 28)+"╝", lines[2])
}

func TestBannerWrapsLongLines(t *testing.T) {
	out := banner([]string{strings.Repeat("x", 20)}, 20)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "║ "+strings.Repeat("x", 16)+" ║", lines[1])
	assert.Equal(t, "║ xxxx"+strings.Repeat(" ", 12)+" ║", lines[2])
}

func TestBannerLines(t *testing.T) {
	cfg := &Config{
		Query:     "ООО",
		Count:     20,
		Statuses:  []string{"ACTIVE", "BANKRUPT"},
		OutputDir: "out",
		RunMode:   RunModeDatabase,
	}

	assert.Equal(t, []string{
		"🏢 Party registry statistics",
		"query: ООО, 20 per category",
		"statuses: ACTIVE, BANKRUPT",
		"mode: database, output: out",
	}, bannerLines(cfg))

	cfg.Statuses = nil
	cfg.EntityType = "LEGAL"
	cfg.RunMode = RunModeFile

	lines := bannerLines(cfg)
	assert.Contains(t, lines, "entity type: LEGAL")
	assert.Equal(t, "mode: files, output: out", lines[len(lines)-1])
}
