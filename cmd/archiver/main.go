// archiver runs a single retention sweep against the configured database
// and exits. Use it from an external scheduler when the in-process cron
// is disabled.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var horizonMonths int
	var dryRun bool

	flagSet := pflag.NewFlagSet("archiver", pflag.ContinueOnError)
	flagSet.IntVar(&horizonMonths, "horizon-months", 0, "archive rows older than this many months (default: RETENTION_HORIZON_MONTHS)")
	flagSet.BoolVar(&dryRun, "dry-run", false, "count eligible rows without archiving them")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if horizonMonths <= 0 {
		horizonMonths = cfg.Retention.HorizonMonths
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required")
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	store := repository.NewPostgresStore(pg.PoolHandle())
	sweeper := worker.NewSweeper(worker.SweeperDependencies{
		TicketRepo:    store.Tickets,
		NoteRepo:      store.Notes,
		AuditRepo:     store.Audit,
		LoginRepo:     store.Logins,
		ArchiveRepo:   store.Archive,
		Logger:        logger,
		HorizonMonths: horizonMonths,
		DryRun:        dryRun,
	})

	report := sweeper.Run(ctx)
	if report.Failed() {
		errs := make([]error, 0, len(report.Failures))
		for table, ferr := range report.Failures {
			errs = append(errs, fmt.Errorf("%s: %w", table, ferr))
		}
		return errors.Join(errs...)
	}
	return nil
}
