package natalController

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	natalUsecase "github.com/admin/tg-bots/astro-api/internal/usecases/natal"
)

type Controller struct {
	NatalService      *natalUsecase.Service
	GenerationTimeout time.Duration
	Log               *slog.Logger
}

func New(natalService *natalUsecase.Service, generationTimeout time.Duration, log *slog.Logger) *Controller {
	return &Controller{
		NatalService:      natalService,
		GenerationTimeout: generationTimeout,
		Log:               log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/v3/charts/natal/calculate", c.handleCalculate)
	router.POST("/v3/charts/natal", c.handleGenerate)
	router.GET("/v3/charts/natal/latest", c.handleLatest)
	router.POST("/v3/charts/natal/claim", c.handleClaim)
	router.POST("/v3/charts/natal/verify", c.handleVerify)
}

// handleCalculate чистый расчёт без сохранения
func (c *Controller) handleCalculate(ctx *gin.Context) {
	var req CalculateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind calculate request",
			"error", err,
		)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": err.Error()}})
		return
	}

	reqCtx, cancel, params := c.withDeadline(ctx.Request.Context(), req.Options)
	defer cancel()

	result, err := c.NatalService.Calculate(reqCtx, req.BirthInput.toDomain(), params)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"result": result})
}

// handleGenerate расчёт с персистом, кэшем и событием
func (c *Controller) handleGenerate(ctx *gin.Context) {
	var req GenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind generate request",
			"error", err,
		)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": err.Error()}})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": "user_id is not a valid uuid"}})
		return
	}

	reqCtx, cancel, params := c.withDeadline(ctx.Request.Context(), req.Options)
	defer cancel()

	output, err := c.NatalService.GenerateForUser(reqCtx, userID, req.BirthInput.toDomain(), params)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, output)
}

// handleLatest последняя карта пользователя без клейма
func (c *Controller) handleLatest(ctx *gin.Context) {
	userID, err := uuid.Parse(ctx.Query("user_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": "user_id is not a valid uuid"}})
		return
	}

	trace, result, err := c.NatalService.GetLatestForUser(ctx.Request.Context(), userID, nil, "")
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"chart_id":   trace.ChartID,
		"input_hash": trace.InputHash,
		"created_at": trace.CreatedAt,
		"result":     result,
	})
}

// handleClaim последняя карта с попыткой клейма legacy-строки
// по fingerprint переданного birth-профиля
func (c *Controller) handleClaim(ctx *gin.Context) {
	var req ClaimRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind claim request",
			"error", err,
		)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": err.Error()}})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": "user_id is not a valid uuid"}})
		return
	}

	input := req.BirthInput.toDomain()
	trace, result, err := c.NatalService.GetLatestForUser(ctx.Request.Context(), userID, &input, req.ReferenceVersion)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"chart_id":   trace.ChartID,
		"input_hash": trace.InputHash,
		"created_at": trace.CreatedAt,
		"result":     result,
	})
}

// handleVerify проверка детерминизма двух последних сопоставимых карт
func (c *Controller) handleVerify(ctx *gin.Context) {
	var req VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": err.Error()}})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_request", "message": "user_id is not a valid uuid"}})
		return
	}

	report, err := c.NatalService.VerifyConsistencyForUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// withDeadline навешивает дедлайн генерации и проверку для фаз расчёта
func (c *Controller) withDeadline(parent context.Context, opts CalculateOptionsDTO) (context.Context, context.CancelFunc, natalUsecase.CalculateParams) {
	reqCtx := parent
	cancel := context.CancelFunc(func() {})
	if c.GenerationTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(parent, c.GenerationTimeout)
	}

	params := opts.toParams()
	params.TimeoutCheck = func() error { return reqCtx.Err() }
	return reqCtx, cancel, params
}
