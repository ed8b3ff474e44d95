package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/sinaulab/sinau/internal/cache"
	"github.com/sinaulab/sinau/internal/cli"
	"github.com/sinaulab/sinau/internal/config"
	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/logger"
	"github.com/sinaulab/sinau/internal/repository"
	"github.com/sinaulab/sinau/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SINAU_CONFIG names an explicit file; otherwise sinau.yaml is optional.
	cfg, err := config.Load(os.Getenv("SINAU_CONFIG"))
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	database, err := db.Open(ctx, dialect, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire read repositories; tx-scoped ones are built inside each unit of work.
	conn := db.Bind(database, dialect)
	userRepo := repository.NewSQLUserRepo(conn)
	contentRepo := repository.NewSQLContentRepo(conn)
	progressRepo := repository.NewSQLProgressRepo(conn)
	submissionRepo := repository.NewSQLSubmissionRepo(conn)
	enrichmentRepo := repository.NewSQLEnrichmentProgressRepo(conn)
	attemptRepo := repository.NewSQLQuizAttemptRepo(conn)
	standingsRepo := repository.NewSQLStandingsRepo(conn)

	uow := db.NewUnitOfWork(database, dialect)

	var standings cache.StandingsCache = cache.NoopStandingsCache{}
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Timeout)
		if err != nil {
			// Rankings are served straight from the database without a cache.
			log.Warn("standings cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer client.Close()
			standings = cache.NewRedisStandingsCache(client, cfg.Redis.StandingsTTL)
		}
	}

	retry := service.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.Ledger.MaxAttempts
	if cfg.Ledger.RetryInitialInterval > 0 {
		retry.InitialInterval = cfg.Ledger.RetryInitialInterval
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithObserver(service.NewLogUseCaseObserver(log)),
		service.WithRetryPolicy(retry),
		service.WithStandingsCache(standings),
	}

	app := &cli.App{
		Users:       service.NewUserService(uow, userRepo, contentRepo, opts...),
		Ledger:      service.NewLedgerService(uow, progressRepo, opts...),
		Submissions: service.NewSubmissionService(uow, submissionRepo, contentRepo, opts...),
		Enrichments: service.NewEnrichmentService(uow, contentRepo, enrichmentRepo, opts...),
		Quizzes:     service.NewQuizService(uow, attemptRepo, opts...),
		Progress:    service.NewProgressService(userRepo, contentRepo, progressRepo, submissionRepo, attemptRepo, opts...),
		Ranking:     service.NewRankingService(userRepo, contentRepo, standingsRepo, opts...),
		Import:      service.NewImportService(uow, contentRepo, opts...),
	}

	// Detect interactive terminal for the user form.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
