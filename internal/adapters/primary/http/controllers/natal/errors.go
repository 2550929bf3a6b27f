package natalController

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// statusByCode отображение кодов доменных ошибок на HTTP-статусы
var statusByCode = map[string]int{
	domain.CodeMissingTimezone:           http.StatusUnprocessableEntity,
	domain.CodeInvalidTimezone:           http.StatusUnprocessableEntity,
	domain.CodeTimezoneDerivationFailed:  http.StatusUnprocessableEntity,
	domain.CodeInvalidBirthTime:          http.StatusUnprocessableEntity,
	domain.CodeInvalidBirthInput:         http.StatusUnprocessableEntity,
	domain.CodeDateOutOfRange:            http.StatusUnprocessableEntity,
	domain.CodeMissingBirthTime:          http.StatusUnprocessableEntity,
	domain.CodeMissingBirthPlaceResolved: http.StatusUnprocessableEntity,
	domain.CodeUnsupportedHouseSystem:    http.StatusBadRequest,
	domain.CodeUnknownAyanamsa:           http.StatusBadRequest,
	domain.CodeReferenceVersionNotFound:  http.StatusNotFound,
	domain.CodeNatalChartNotFound:        http.StatusNotFound,
	domain.CodeNatalEngineUnavailable:    http.StatusServiceUnavailable,
	domain.CodeNatalGenerationTimeout:    http.StatusGatewayTimeout,
	domain.CodeEphemerisCalcFailed:       http.StatusInternalServerError,
	domain.CodeHousesCalcFailed:          http.StatusInternalServerError,
	domain.CodeInvalidReferenceData:      http.StatusInternalServerError,
	domain.CodeInconsistentNatalResult:   http.StatusInternalServerError,
	domain.CodeNatalResultMismatch:       http.StatusConflict,
	domain.CodeInvalidChartResultPayload: http.StatusInternalServerError,
}

// respondError сериализует доменную ошибку в единый конверт.
// Детали наружу не уходят для внутренних статусов (>= 500).
func respondError(ctx *gin.Context, err error) {
	domainErr, ok := domain.AsError(err)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "internal_error",
				"message": "internal server error",
			},
		})
		return
	}

	status, ok := statusByCode[domainErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := gin.H{
		"code":      domainErr.Code,
		"message":   domainErr.Message,
		"retryable": domainErr.Retryable,
	}
	if status < http.StatusInternalServerError && len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}

	ctx.JSON(status, gin.H{"error": body})
}
