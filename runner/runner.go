package runner

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/dadata-project/party-stats/dadata"
)

const (
	RunModeFile = iota + 1
	RunModeDatabase
	RunModeAwsLambda
	RunModeAwsLambdaInvoker
)

const defaultQuery = "ООО"

var (
	ErrInvalidRunMode = errors.New("invalid run mode")
	ErrMissingAPIKey  = dadata.ErrMissingAPIKey
	ErrInvalidConfig  = errors.New("invalid configuration")
)

type Runner interface {
	Run(context.Context) error
	Close(context.Context) error
}

type Config struct {
	APIKey           string
	Endpoint         string
	Query            string
	Statuses         []string
	EntityType       string
	Count            int
	OutputDir        string
	Concurrency      int
	XLSX             bool
	Dsn              string
	S3Bucket         string
	S3Prefix         string
	AwsRegion        string
	AwsAccessKey     string
	AwsSecretKey     string
	FunctionName     string
	CompletionAPIURL string
	TelemetryKey     string
	DisableTelemetry bool
	Debug            bool
	RunMode          int
}

// ParseConfig reads flags from args and credentials from the environment.
// Every flag is optional: with no arguments all six statuses are fetched
// for the default query and written to the current directory.
func ParseConfig(args []string) (*Config, error) {
	cfg := Config{}

	var (
		statuses      string
		awsLambda     bool
		lambdaInvoker bool
	)

	fs := flag.NewFlagSet("party-stats", flag.ContinueOnError)

	fs.StringVar(&cfg.Query, "query", defaultQuery, "free-text search query")
	fs.StringVar(&statuses, "statuses", joinStatuses(dadata.Statuses()), "comma separated party statuses to fetch")
	fs.StringVar(&cfg.EntityType, "type", "", "also fetch one category filtered by entity type (LEGAL or INDIVIDUAL)")
	fs.IntVar(&cfg.Count, "count", 20, "number of suggestions requested per category")
	fs.StringVar(&cfg.OutputDir, "out", ".", "directory for the produced files")
	fs.StringVar(&cfg.Endpoint, "endpoint", dadata.DefaultEndpoint, "suggestion endpoint URL")
	fs.IntVar(&cfg.Concurrency, "c", 1, "number of categories processed at the same time")
	fs.BoolVar(&cfg.XLSX, "xlsx", false, "also write an .xlsx workbook per category")
	fs.StringVar(&cfg.Dsn, "dsn", "", "database connection string (postgres://... or an sqlite file path)")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", "", "upload produced files to this S3 bucket")
	fs.StringVar(&cfg.S3Prefix, "s3-prefix", "party-stats", "key prefix for S3 uploads")
	fs.StringVar(&cfg.AwsRegion, "aws-region", "", "AWS region")
	fs.StringVar(&cfg.AwsAccessKey, "aws-access-key", "", "AWS access key (default credential chain when empty)")
	fs.StringVar(&cfg.AwsSecretKey, "aws-secret-key", "", "AWS secret key")
	fs.BoolVar(&awsLambda, "aws-lambda", false, "run as an AWS Lambda function")
	fs.BoolVar(&lambdaInvoker, "aws-lambda-invoker", false, "invoke the AWS Lambda function once per category")
	fs.StringVar(&cfg.FunctionName, "function-name", "", "AWS Lambda function name used by -aws-lambda-invoker")
	fs.StringVar(&cfg.CompletionAPIURL, "completion-api", "", "URL notified when the run finishes")
	fs.BoolVar(&cfg.DisableTelemetry, "disable-telemetry", false, "disable anonymous usage telemetry")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Statuses = splitList(statuses)
	cfg.APIKey = os.Getenv("DADATA_API_KEY")
	cfg.TelemetryKey = os.Getenv("POSTHOG_API_KEY")

	switch {
	case awsLambda && lambdaInvoker:
		return nil, fmt.Errorf("%w: -aws-lambda and -aws-lambda-invoker are exclusive", ErrInvalidConfig)
	case awsLambda:
		cfg.RunMode = RunModeAwsLambda
	case lambdaInvoker:
		cfg.RunMode = RunModeAwsLambdaInvoker
	case cfg.Dsn != "":
		cfg.RunMode = RunModeDatabase
	default:
		cfg.RunMode = RunModeFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks everything that can be checked without network access.
func (c *Config) Validate() error {
	// the invoker only fans out; the credential lives with the function
	if c.RunMode != RunModeAwsLambdaInvoker && c.APIKey == "" {
		return ErrMissingAPIKey
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be greater than 0", ErrInvalidConfig)
	}

	if c.Count < 1 {
		return fmt.Errorf("%w: count must be greater than 0", ErrInvalidConfig)
	}

	if len(c.Statuses) == 0 && c.EntityType == "" {
		return fmt.Errorf("%w: nothing to fetch", ErrInvalidConfig)
	}

	if c.RunMode == RunModeAwsLambdaInvoker && c.FunctionName == "" {
		return fmt.Errorf("%w: -function-name is required with -aws-lambda-invoker", ErrInvalidConfig)
	}

	return nil
}

func (c *Config) DadataConfig() (dadata.Config, error) {
	return dadata.NewConfig(c.APIKey, c.Endpoint)
}

func joinStatuses(statuses []dadata.Status) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, string(s))
	}

	return strings.Join(parts, ",")
}

// splitList splits a comma separated flag value, dropping blanks and repeats.
func splitList(s string) []string {
	var items []string

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" && !slices.Contains(items, item) {
			items = append(items, item)
		}
	}

	return items
}

// NewLogger returns the console logger used for the whole run.
func NewLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// banner frames lines in a box width columns wide; width <= 0 means the
// terminal width. Long lines are wrapped, wide runes are measured as such.
func banner(lines []string, width int) string {
	if width <= 0 {
		var err error

		width, _, err = term.GetSize(int(os.Stderr.Fd()))
		if err != nil {
			width = 80
		}
	}

	width = max(width, 20)
	inner := width - 4
	rule := strings.Repeat("═", width-2)

	var b strings.Builder

	b.WriteString("╔" + rule + "╗\n")

	for _, line := range lines {
		for _, part := range strings.Split(runewidth.Wrap(line, inner), "\n") {
			b.WriteString("║ " + runewidth.FillRight(part, inner) + " ║\n")
		}
	}

	b.WriteString("╚" + rule + "╝\n")

	return b.String()
}

func runModeName(mode int) string {
	switch mode {
	case RunModeFile:
		return "files"
	case RunModeDatabase:
		return "database"
	case RunModeAwsLambda:
		return "aws lambda"
	case RunModeAwsLambdaInvoker:
		return "aws lambda invoker"
	default:
		return "unknown"
	}
}

func bannerLines(cfg *Config) []string {
	lines := []string{
		"🏢 Party registry statistics",
		fmt.Sprintf("query: %s, %d per category", cfg.Query, cfg.Count),
	}

	if len(cfg.Statuses) > 0 {
		lines = append(lines, "statuses: "+strings.Join(cfg.Statuses, ", "))
	}

	if cfg.EntityType != "" {
		lines = append(lines, "entity type: "+cfg.EntityType)
	}

	return append(lines, fmt.Sprintf("mode: %s, output: %s", runModeName(cfg.RunMode), cfg.OutputDir))
}

// Banner prints what this run is about to fetch.
func Banner(cfg *Config) {
	fmt.Fprintln(os.Stderr, banner(bannerLines(cfg), 0))
}
