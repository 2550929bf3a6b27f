package app

import (
	"time"

	server "github.com/admin/tg-bots/astro-api/internal/adapters/primary/http"
	kafkaAdapter "github.com/admin/tg-bots/astro-api/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/astro-api/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/astro-api/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/swisseph"
	"github.com/admin/tg-bots/astro-api/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres *pg.Config           `envconfig:"POSTGRES"`
	Log      *logger.Config       `envconfig:"LOG"`
	Server   *server.Config       `envconfig:"APISERVER"`
	Redis    *redisAdapter.Config `envconfig:"REDIS"`
	S3       *s3Adapter.Config    `envconfig:"S3"`
	Kafka    *kafkaAdapter.Config `envconfig:"KAFKA"`
	Swisseph *swisseph.Config     `envconfig:"SWISSEPH"`
	Natal    *NatalConfig         `envconfig:"NATAL"`
}

// NatalConfig параметры расчётного конвейера
type NatalConfig struct {
	// RulesetVersion версия алгоритмов, входит в fingerprint входа
	RulesetVersion string `envconfig:"RULESET_VERSION" default:"2.3.0"`
	// TTEnabled переводит движок на шкалу TT (UT + ΔT)
	TTEnabled bool `envconfig:"TT_ENABLED" default:"false"`
	// DeriveTimezone включает вывод таймзоны по координатам рождения
	DeriveTimezone bool          `envconfig:"DERIVE_TIMEZONE" default:"true"`
	CacheTTL       time.Duration `envconfig:"CACHE_TTL" default:"24h"`
	// SeedReferenceOnStart создаёт и наполняет дефолтную версию справочника
	SeedReferenceOnStart bool `envconfig:"SEED_REFERENCE_ON_START" default:"true"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
