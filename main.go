package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dadata-project/party-stats/runner"
	"github.com/dadata-project/party-stats/runner/databaserunner"
	"github.com/dadata-project/party-stats/runner/filerunner"
	"github.com/dadata-project/party-stats/runner/lambdaaws"
)

func main() {
	os.Exit(run())
}

func run() int {
	bootLog := runner.NewLogger(os.Stderr, false)

	if _, err := os.Stat("/.dockerenv"); os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			bootLog.Warn().Err(err).Msg("no .env file loaded, continuing with the process environment")
		}
	}

	cfg, err := runner.ParseConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		bootLog.Error().Err(err).Msg("configuration error")
		bootLog.Info().Msg("process finished")

		return 1
	}

	logger := runner.NewLogger(os.Stderr, cfg.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = logger.WithContext(ctx)

	defer logger.Info().Msg("process finished")

	runner.Banner(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan

		logger.Warn().Msg("received signal, shutting down...")

		cancel()
	}()

	runnerInstance, err := runnerFactory(ctx, cfg)
	if err != nil {
		// an invalid status ends up here, before any request is sent
		logger.Error().Err(err).Msg("could not start")

		return 0
	}

	defer func() {
		_ = runnerInstance.Close(ctx)
	}()

	if err := runnerInstance.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("run failed")
	}

	return 0
}

func runnerFactory(ctx context.Context, cfg *runner.Config) (runner.Runner, error) {
	switch cfg.RunMode {
	case runner.RunModeFile:
		return filerunner.New(ctx, cfg)
	case runner.RunModeDatabase:
		return databaserunner.New(ctx, cfg)
	case runner.RunModeAwsLambda:
		return lambdaaws.New(cfg)
	case runner.RunModeAwsLambdaInvoker:
		return lambdaaws.NewInvoker(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}
}
