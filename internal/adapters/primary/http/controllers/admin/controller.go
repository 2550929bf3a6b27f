package admin

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	referenceUsecase "github.com/admin/tg-bots/astro-api/internal/usecases/reference"
)

type Controller struct {
	RefService *referenceUsecase.Service
	Log        *slog.Logger
}

func New(
	refService *referenceUsecase.Service,
	log *slog.Logger,
) *Controller {
	return &Controller{
		RefService: refService,
		Log:        log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/admin")
	{
		admin.POST("/reference/seed", c.seedReference)
		admin.POST("/reference/clone", c.cloneReference)
		admin.POST("/reference/activate", c.activateReference)
		admin.POST("/reference/cache/purge", c.purgeReferenceCache)
	}
}

// SeedReferenceRequest запрос сида версии справочных данных
type SeedReferenceRequest struct {
	Version     string  `json:"version"`
	Description *string `json:"description,omitempty"`
}

// CloneReferenceRequest запрос клонирования версии справочника
type CloneReferenceRequest struct {
	SourceVersion string `json:"source_version" binding:"required"`
	NewVersion    string `json:"new_version" binding:"required"`
}

// seedReference создаёт версию справочника и наполняет её дефолтами.
// Повторный вызов для существующей версии с данными - no-op.
func (c *Controller) seedReference(ctx *gin.Context) {
	var req SeedReferenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind seed reference request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	version := req.Version
	if version == "" {
		version = referenceUsecase.DefaultVersion
	}

	row, err := c.RefService.Seed(ctx.Request.Context(), version, req.Description)
	if err != nil {
		c.Log.Error("failed to seed reference version", "error", err, "version", version)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to seed reference version"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"version":   row.Version,
		"is_active": row.IsActive,
	})
}

// cloneReference создаёт новую версию копированием данных существующей
func (c *Controller) cloneReference(ctx *gin.Context) {
	var req CloneReferenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind clone reference request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	row, err := c.RefService.Clone(ctx.Request.Context(), req.SourceVersion, req.NewVersion)
	if err != nil {
		if domain.IsCode(err, domain.CodeReferenceVersionNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "source version not found"})
			return
		}
		c.Log.Error("failed to clone reference version",
			"error", err,
			"source_version", req.SourceVersion,
			"new_version", req.NewVersion)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clone reference version"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"version":   row.Version,
		"is_active": row.IsActive,
	})
}

// ActivateReferenceRequest запрос переключения активной версии
type ActivateReferenceRequest struct {
	Version string `json:"version" binding:"required"`
}

// activateReference делает версию единственной активной
func (c *Controller) activateReference(ctx *gin.Context) {
	var req ActivateReferenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind activate reference request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	row, err := c.RefService.Activate(ctx.Request.Context(), req.Version)
	if err != nil {
		if domain.IsCode(err, domain.CodeReferenceVersionNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "reference version not found"})
			return
		}
		c.Log.Error("failed to activate reference version", "error", err, "version", req.Version)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate reference version"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"version":   row.Version,
		"is_active": row.IsActive,
	})
}

// purgeReferenceCache сбрасывает in-memory кэш снапшотов
func (c *Controller) purgeReferenceCache(ctx *gin.Context) {
	c.RefService.PurgeCache()
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
