package natalController

import (
	"github.com/admin/tg-bots/astro-api/internal/domain"
	natalUsecase "github.com/admin/tg-bots/astro-api/internal/usecases/natal"
)

// BirthInputDTO данные о рождении в запросе
type BirthInputDTO struct {
	BirthDate       string   `json:"birth_date" binding:"required"`
	BirthTime       *string  `json:"birth_time"`
	BirthPlace      string   `json:"birth_place" binding:"required"`
	BirthTimezone   *string  `json:"birth_timezone"`
	BirthLat        *float64 `json:"birth_lat"`
	BirthLon        *float64 `json:"birth_lon"`
	PlaceResolvedID *string  `json:"place_resolved_id"`
}

// CalculateOptionsDTO параметры расчёта
type CalculateOptionsDTO struct {
	ReferenceVersion string   `json:"reference_version"`
	Accurate         bool     `json:"accurate"`
	Zodiac           string   `json:"zodiac"`
	Ayanamsa         string   `json:"ayanamsa"`
	Frame            string   `json:"frame"`
	HouseSystem      string   `json:"house_system"`
	AltitudeM        *float64 `json:"altitude_m"`
}

// CalculateRequest запрос чистого расчёта без персиста
type CalculateRequest struct {
	BirthInput BirthInputDTO       `json:"birth_input" binding:"required"`
	Options    CalculateOptionsDTO `json:"options"`
}

// GenerateRequest запрос генерации карты для пользователя
type GenerateRequest struct {
	UserID     string              `json:"user_id" binding:"required,uuid"`
	BirthInput BirthInputDTO       `json:"birth_input" binding:"required"`
	Options    CalculateOptionsDTO `json:"options"`
}

// ClaimRequest запрос последней карты с возможным клеймом legacy-строки
type ClaimRequest struct {
	UserID           string        `json:"user_id" binding:"required,uuid"`
	BirthInput       BirthInputDTO `json:"birth_input" binding:"required"`
	ReferenceVersion string        `json:"reference_version"`
}

// VerifyRequest запрос проверки консистентности
type VerifyRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

func (d BirthInputDTO) toDomain() domain.BirthInput {
	return domain.BirthInput{
		BirthDate:       d.BirthDate,
		BirthTime:       d.BirthTime,
		BirthPlace:      d.BirthPlace,
		BirthTimezone:   d.BirthTimezone,
		BirthLat:        d.BirthLat,
		BirthLon:        d.BirthLon,
		PlaceResolvedID: d.PlaceResolvedID,
	}
}

func (d CalculateOptionsDTO) toParams() natalUsecase.CalculateParams {
	return natalUsecase.CalculateParams{
		ReferenceVersion: d.ReferenceVersion,
		Accurate:         d.Accurate,
		Zodiac:           domain.Zodiac(d.Zodiac),
		Ayanamsa:         d.Ayanamsa,
		Frame:            domain.Frame(d.Frame),
		HouseSystem:      domain.HouseSystem(d.HouseSystem),
		AltitudeM:        d.AltitudeM,
	}
}
