package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	dependencies := map[string]handlers.Pinger{}
	var store *repository.Store
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pool)
		dependencies["postgres"] = pg
	} else {
		store = memory.NewStore()
	}

	var revocations repository.TokenRevocationStore = memory.NewRevocationStore()
	if redis := persistence.NewRedis(cfg.Redis, logger); redis != nil {
		defer redis.Close()
		revocations = redis
		dependencies["redis"] = redis
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	recorder := service.NewAuditRecorder(store.Audit, logger, service.SystemClock)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    store.Users,
		AccountRepo: store.Accounts,
		LoginRepo:   store.Logins,
		Revocations: revocations,
		Audit:       recorder,
		Logger:      logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.Tickets,
		NoteRepo:   store.Notes,
		UserRepo:   store.Users,
		Audit:      recorder,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	userService := service.NewUserService(cfg.Auth, service.UserDependencies{
		UserRepo:    store.Users,
		AccountRepo: store.Accounts,
		AuditRepo:   store.Audit,
		LoginRepo:   store.Logins,
		Audit:       recorder,
		Logger:      logger,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		TicketRepo:  store.Tickets,
		UserRepo:    store.Users,
		AccountRepo: store.Accounts,
		StatsRepo:   store.Stats,
		AuditRepo:   store.Audit,
		LoginRepo:   store.Logins,
		Logger:      logger,
	})

	notificationService := service.NewNotificationService(dispatcher, store.Users, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	if cfg.Bootstrap.Enabled() {
		if _, _, err := authService.EnsureSystemOwner(ctx, cfg.Bootstrap); err != nil {
			logger.Fatal("failed to bootstrap system owner", zap.Error(err))
		}
	}

	var scheduler *worker.Scheduler
	if cfg.Retention.Enabled {
		sweeper := worker.NewSweeper(worker.SweeperDependencies{
			TicketRepo:    store.Tickets,
			NoteRepo:      store.Notes,
			AuditRepo:     store.Audit,
			LoginRepo:     store.Logins,
			ArchiveRepo:   store.Archive,
			Metrics:       metrics,
			Logger:        logger,
			HorizonMonths: cfg.Retention.HorizonMonths,
		})
		scheduler = worker.NewScheduler(sweeper, cfg.Retention.Schedule, logger)
		if err := scheduler.Start(); err != nil {
			logger.Fatal("invalid retention schedule", zap.String("schedule", cfg.Retention.Schedule), zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(userService),
		Accounts:       handlers.NewAccountsHandler(userService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
