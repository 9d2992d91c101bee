package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/course-marketplace/internal/api/http"
	"github.com/spec-kit/course-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/course-marketplace/internal/api/validation"
	"github.com/spec-kit/course-marketplace/internal/auth"
	"github.com/spec-kit/course-marketplace/internal/cache"
	"github.com/spec-kit/course-marketplace/internal/config"
	"github.com/spec-kit/course-marketplace/internal/events"
	"github.com/spec-kit/course-marketplace/internal/observability"
	"github.com/spec-kit/course-marketplace/internal/persistence"
	"github.com/spec-kit/course-marketplace/internal/repository"
	"github.com/spec-kit/course-marketplace/internal/service"
	"github.com/spec-kit/course-marketplace/internal/worker"
)

type repositories struct {
	principals repository.PrincipalRepository
	courses    repository.CourseRepository
	purchases  repository.PurchaseRepository
}

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

	dependencies := map[string]handlers.Pinger{}
	var repos repositories

	switch cfg.Storage.Adapter {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		store := repository.NewMemoryStore()
		repos = repositories{
			principals: store.Principals(),
			courses:    store.Courses(),
			purchases:  store.Purchases(),
		}
	default:
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		dependencies["postgres"] = pg

		pool := pg.PoolHandle()
		repos = repositories{
			principals: repository.NewPrincipalRepository(pool),
			courses:    repository.NewCourseRepository(pool),
			purchases:  repository.NewPurchaseRepository(pool),
		}
	}

	redis, err := persistence.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to init redis", zap.Error(err))
	}
	defer redis.Close()
	dependencies["redis"] = redis

	catalog := cache.NewCatalogCache(redis.Client, cfg.Cache.CatalogTTL())
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartCatalogWorker(service.NewCatalogSubscriber(dispatcher, catalog, logger))

	tokens := auth.NewTokenManager(cfg.Auth.UserJWTSecret, cfg.Auth.AdminJWTSecret, cfg.Auth.TokenTTL())
	authService := service.NewAuthService(service.AuthDependencies{
		PrincipalRepo: repos.principals,
		Hasher:        auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:        tokens,
	})
	courseService := service.NewCourseService(service.CourseDependencies{
		CourseRepo: repos.courses,
		Catalog:    catalog,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	purchaseService := service.NewPurchaseService(service.PurchaseDependencies{
		PurchaseRepo: repos.purchases,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})

	metrics := observability.NewMetrics()
	validator := validation.New()

	app := httptransport.NewApp(cfg.App.Name, logger, metrics)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Users:   handlers.NewUsersHandler(authService, purchaseService, validator),
		Admins:  handlers.NewAdminsHandler(authService, courseService, validator),
		Courses: handlers.NewCoursesHandler(courseService, purchaseService, validator),
		Guard:   auth.NewGuard(tokens, cfg.Auth.TokenHeader),
	})

	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("storage", cfg.Storage.Adapter),
			zap.Bool("embedded_redis", redis.Embedded()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
