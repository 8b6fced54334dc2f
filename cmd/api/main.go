package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/telecom-backoffice/internal/api/http"
	"github.com/spec-kit/telecom-backoffice/internal/api/http/handlers"
	"github.com/spec-kit/telecom-backoffice/internal/clock"
	"github.com/spec-kit/telecom-backoffice/internal/config"
	"github.com/spec-kit/telecom-backoffice/internal/events"
	"github.com/spec-kit/telecom-backoffice/internal/observability"
	"github.com/spec-kit/telecom-backoffice/internal/persistence"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
	"github.com/spec-kit/telecom-backoffice/internal/repository/memory"
	"github.com/spec-kit/telecom-backoffice/internal/service"
	"github.com/spec-kit/telecom-backoffice/internal/worker"
	"github.com/spec-kit/telecom-backoffice/migrations"
)

type repositories struct {
	users         repository.UserRepository
	packages      repository.PackageRepository
	bills         repository.BillRepository
	tickets       repository.TicketRepository
	campaigns     repository.CampaignRepository
	userCampaigns repository.UserCampaignRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.App, cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	clk := clock.System()
	repos := buildRepositories(pg, clk, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(dispatcher, logger, metrics, cfg.Notify)

	rt := service.Runtime{Clock: clk, Logger: logger, Metrics: metrics, Dispatcher: dispatcher}
	campaignService := service.NewCampaignService(service.CampaignDependencies{
		CampaignRepo:     repos.campaigns,
		UserCampaignRepo: repos.userCampaigns,
		UserRepo:         repos.users,
		PackageRepo:      repos.packages,
		Runtime:          rt,
	})
	accountService := service.NewAccountService(service.AccountDependencies{
		UserRepo:    repos.users,
		PackageRepo: repos.packages,
		BillRepo:    repos.bills,
		TicketRepo:  repos.tickets,
		Runtime:     rt,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var metricsHandler http.Handler
	if metrics != nil {
		metricsHandler = metrics.Handler()
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:     handlers.NewUsersHandler(service.NewCustomerService(repos.users, repos.packages, rt)),
		Packages:  handlers.NewPackagesHandler(service.NewCatalogService(repos.packages, rt)),
		Bills:     handlers.NewBillsHandler(service.NewBillingService(repos.bills, repos.users, rt)),
		Tickets:   handlers.NewTicketsHandler(service.NewSupportService(repos.tickets, repos.users, rt)),
		Campaigns: handlers.NewCampaignsHandler(campaignService),
		UserInfo:  handlers.NewUserInfoHandler(accountService),
		Metrics:   metricsHandler,
	})

	expiry := worker.NewExpiryWorker(campaignService, redis, cfg.Campaign, logger)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		expiry.Run(ctx)
	}()

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.ShutdownWithTimeout(10 * time.Second)
	<-workerDone

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
}

// buildRepositories selects Postgres when a pool is open and the in-memory store otherwise.
func buildRepositories(pg *persistence.Postgres, clk clock.Clock, logger *zap.Logger) repositories {
	if !pg.Enabled() {
		logger.Info("repositories backed by in-memory store")
		store := memory.NewStore(clk)
		return repositories{
			users:         store.Users(),
			packages:      store.Packages(),
			bills:         store.Bills(),
			tickets:       store.Tickets(),
			campaigns:     store.Campaigns(),
			userCampaigns: store.UserCampaigns(),
		}
	}
	return repositories{
		users:         repository.NewUserRepository(pg.Pool),
		packages:      repository.NewPackageRepository(pg.Pool),
		bills:         repository.NewBillRepository(pg.Pool),
		tickets:       repository.NewTicketRepository(pg.Pool),
		campaigns:     repository.NewCampaignRepository(pg.Pool),
		userCampaigns: repository.NewUserCampaignRepository(pg.Pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
