package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/storage/pg"
	"github.com/admin/tg-bots/astro-api/internal/pkg/logger"
	chartRepo "github.com/admin/tg-bots/astro-api/internal/repository/chart"
	referenceRepo "github.com/admin/tg-bots/astro-api/internal/repository/reference"
	natalUsecase "github.com/admin/tg-bots/astro-api/internal/usecases/natal"
	referenceUsecase "github.com/admin/tg-bots/astro-api/internal/usecases/reference"
	"golang.org/x/sync/errgroup"

	"github.com/jmoiron/sqlx"
)

type App struct {
	Name string
	Cfg  *Config
	Log  *slog.Logger
}

func New(name string, cfg *Config) *App {
	return &App{
		Name: name,
		Cfg:  cfg,
		Log:  logger.New(name, cfg.Log),
	}
}

func (a *App) Run(ctx context.Context) error {
	a.Log.Info("running astro-api")

	db, err := a.initPostgres()
	if err != nil {
		return fmt.Errorf("failed to init postgres: %w", err)
	}

	persistenceLayer := pg.NewDB(db)

	resultCache, err := a.initCache()
	if err != nil {
		return fmt.Errorf("failed to init cache: %w", err)
	}

	publisher, err := a.initEvents()
	if err != nil {
		return fmt.Errorf("failed to init events: %w", err)
	}

	fileStore, err := a.initEphemerisFileStore()
	if err != nil {
		return fmt.Errorf("failed to init ephemeris file store: %w", err)
	}

	recorder := a.newRecorder()
	nativeEngine := a.initNativeEngine(ctx, fileStore, recorder)
	fallbackEngine := a.newFallbackEngine()
	tzFinder := a.initTzFinder()

	refService := referenceUsecase.New(
		referenceRepo.New(persistenceLayer, a.Log),
		inmemory.NewReferenceCache(),
		a.Log,
	)

	if a.Cfg.Natal.SeedReferenceOnStart {
		if _, err := refService.Seed(ctx, referenceUsecase.DefaultVersion, nil); err != nil {
			return fmt.Errorf("failed to seed reference data: %w", err)
		}
	}

	natalService := natalUsecase.New(
		refService,
		chartRepo.New(persistenceLayer, a.Log),
		nativeEngine,
		fallbackEngine,
		tzFinder,
		resultCache, // может быть nil
		publisher,   // может быть nil
		recorder,
		natalUsecase.Settings{
			RulesetVersion: a.Cfg.Natal.RulesetVersion,
			TTEnabled:      a.Cfg.Natal.TTEnabled,
			DeriveTimezone: a.Cfg.Natal.DeriveTimezone && tzFinder != nil,
			CacheTTL:       a.Cfg.Natal.CacheTTL,
		},
		a.Log,
	)

	httpServer := a.initHTTP(db, nativeEngine, refService, natalService)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting http server",
			"host", a.Cfg.Server.Host,
			"port", a.Cfg.Server.Port)

		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.Log.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.Log.Error("failed to shutdown http server", "error", err)
		}

		if publisher != nil {
			if err := publisher.Close(); err != nil {
				a.Log.Error("failed to close kafka producer", "error", err)
			}
		}

		if resultCache != nil {
			if err := resultCache.Close(); err != nil {
				a.Log.Error("failed to close redis client", "error", err)
			}
		}

		if err := db.Close(); err != nil {
			a.Log.Error("failed to close database", "error", err)
		}

		a.Log.Info("application shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("application error", "error", err)
		return err
	}

	return nil
}

func (a *App) initPostgres() (*sqlx.DB, error) {
	db, err := a.Cfg.Postgres.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	a.Log.Info("postgres connected successfully")

	if err := pg.RunMigrations(db, a.Log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
