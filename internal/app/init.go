package app

import (
	"context"
	"fmt"
	"net/http"

	server "github.com/admin/tg-bots/astro-api/internal/adapters/primary/http"
	adminController "github.com/admin/tg-bots/astro-api/internal/adapters/primary/http/controllers/admin"
	healthcheckController "github.com/admin/tg-bots/astro-api/internal/adapters/primary/http/controllers/healthcheck"
	metricsController "github.com/admin/tg-bots/astro-api/internal/adapters/primary/http/controllers/metrics"
	natalController "github.com/admin/tg-bots/astro-api/internal/adapters/primary/http/controllers/natal"
	kafkaAdapter "github.com/admin/tg-bots/astro-api/internal/adapters/secondary/kafka"
	metricsAdapter "github.com/admin/tg-bots/astro-api/internal/adapters/secondary/metrics"
	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/simplified"
	redisAdapter "github.com/admin/tg-bots/astro-api/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/astro-api/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/swisseph"
	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/tzdata"
	"github.com/admin/tg-bots/astro-api/internal/ports/cache"
	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
	"github.com/admin/tg-bots/astro-api/internal/ports/events"
	"github.com/admin/tg-bots/astro-api/internal/ports/metrics"
	"github.com/admin/tg-bots/astro-api/internal/ports/storage"
	"github.com/admin/tg-bots/astro-api/internal/ports/tz"
	natalUsecase "github.com/admin/tg-bots/astro-api/internal/usecases/natal"
	referenceUsecase "github.com/admin/tg-bots/astro-api/internal/usecases/reference"

	"github.com/jmoiron/sqlx"
)

// initCache инициализирует Redis-кэш результатов; nil, когда выключен
func (a *App) initCache() (cache.Cache, error) {
	if a.Cfg.Redis == nil || !a.Cfg.Redis.Enabled {
		a.Log.Info("redis cache disabled")
		return nil, nil
	}

	client, err := a.Cfg.Redis.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.Log.Info("redis connected successfully",
		"host", a.Cfg.Redis.Host,
		"port", a.Cfg.Redis.Port)
	return redisAdapter.NewClient(client), nil
}

// initEvents инициализирует Kafka-продюсер событий; nil, когда выключен
func (a *App) initEvents() (events.IPublisher, error) {
	if a.Cfg.Kafka == nil || !a.Cfg.Kafka.Enabled {
		a.Log.Info("kafka events disabled")
		return nil, nil
	}

	producer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	a.Log.Info("kafka producer created",
		"topic", a.Cfg.Kafka.Topic)
	return producer, nil
}

// initEphemerisFileStore инициализирует S3-хранилище файлов эфемерид
func (a *App) initEphemerisFileStore() (storage.IEphemerisFileStore, error) {
	if a.Cfg.S3 == nil || !a.Cfg.S3.Enabled {
		return nil, nil
	}

	client, err := a.Cfg.S3.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	a.Log.Info("s3 client created",
		"host", a.Cfg.S3.Host,
		"bucket", a.Cfg.S3.Bucket)
	return s3Adapter.NewClient(client, a.Cfg.S3.Bucket, a.Log), nil
}

// initNativeEngine выполняет бутстрап нативного движка.
// Сбой бутстрапа не фатален: сервис деградирует до упрощённого движка.
func (a *App) initNativeEngine(
	ctx context.Context,
	fileStore storage.IEphemerisFileStore,
	recorder metrics.IRecorder,
) ephemeris.IProvider {
	if a.Cfg.Swisseph == nil || !a.Cfg.Swisseph.Enabled {
		a.Log.Info("native ephemeris engine disabled")
		return nil
	}

	result, err := swisseph.Bootstrap(ctx, a.Cfg.Swisseph, fileStore, recorder, a.Log)
	if err != nil {
		a.Log.Error("native engine bootstrap failed, degrading to simplified engine",
			"error", err)
		return nil
	}

	a.Log.Info("native ephemeris engine ready",
		"path_version", result.PathVersion,
		"path_hash", result.PathHash)
	return swisseph.NewProvider(a.Cfg.Swisseph, recorder, a.Log)
}

// initTzFinder загружает офлайн-данные полигонов таймзон
func (a *App) initTzFinder() tz.IFinder {
	finder, err := tzdata.NewFinder(a.Log)
	if err != nil {
		a.Log.Error("failed to init timezone finder, derivation disabled",
			"error", err)
		return nil
	}
	return finder
}

// initHTTP инициализирует HTTP сервер и контроллеры
func (a *App) initHTTP(
	db *sqlx.DB,
	nativeEngine ephemeris.IProvider,
	refService *referenceUsecase.Service,
	natalService *natalUsecase.Service,
) *http.Server {
	controllers := []server.Controller{
		healthcheckController.New(db, nativeEngine, a.Log),
		natalController.New(natalService, a.Cfg.Server.GenerationTimeout, a.Log),
		adminController.New(refService, a.Log),
		metricsController.New(),
	}

	return server.NewHTTPServer(a.Cfg.Server, a.Log, controllers...)
}

// newRecorder метрики Prometheus, /metrics отдаёт HTTP-сервер
func (a *App) newRecorder() metrics.IRecorder {
	return metricsAdapter.NewRecorder()
}

// newFallbackEngine упрощённый движок, доступен всегда
func (a *App) newFallbackEngine() ephemeris.IProvider {
	return simplified.NewEngine(a.Log)
}
