package healthcheckController

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
)

type HealthCheckController struct {
	db     *sqlx.DB
	engine ephemeris.IProvider
	log    *slog.Logger
}

func New(db *sqlx.DB, engine ephemeris.IProvider, log *slog.Logger) *HealthCheckController {
	return &HealthCheckController{
		db:     db,
		engine: engine,
		log:    log,
	}
}

func (c *HealthCheckController) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", c.health)
	r.GET("/ready", c.ready)
}

// health базовая проверка (всегда возвращает 200)
func (c *HealthCheckController) health(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":  "ok",
		"service": "astro-api",
	})
}

// ready проверка готовности: БД обязательна, нативный движок опционален
// (при недоступном движке сервис деградирует до упрощённого)
func (c *HealthCheckController) ready(ctx *gin.Context) {
	if err := c.db.Ping(); err != nil {
		c.log.Error("Database not ready", "error", err)
		ctx.JSON(503, gin.H{
			"status": "not ready",
			"error":  "database unavailable",
		})
		return
	}

	nativeAvailable := c.engine != nil && c.engine.Available()
	ctx.JSON(200, gin.H{
		"status":           "ready",
		"native_ephemeris": nativeAvailable,
	})
}
