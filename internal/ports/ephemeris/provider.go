package ephemeris

import (
	"context"

	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// PlanetsRequest запрос позиций десяти тел
type PlanetsRequest struct {
	JdUT      float64
	Lat       *float64
	Lon       *float64
	Zodiac    domain.Zodiac
	Ayanamsa  string
	Frame     domain.Frame
	AltitudeM float64
}

// PlanetsResult позиции в каноническом порядке тел.
// EffectiveAyanamsa заполнен только для сидерического зодиака.
type PlanetsResult struct {
	Planets           []domain.PlanetData
	EffectiveAyanamsa *float64
}

// HousesRequest запрос куспидов домов
type HousesRequest struct {
	JdUT   float64
	Lat    float64
	Lon    float64
	System domain.HouseSystem
}

// HousesResult куспиды 1..12, нормализованные в [0, 360)
type HousesResult struct {
	Cusps              []domain.HouseCuspData
	AscendantLongitude float64
	MidheavenLongitude float64
	SystemUsed         domain.HouseSystem
}

// Provenance метаданные нативных данных движка.
// Сырой путь к файлам наружу не выходит, только версия и хэш.
type Provenance struct {
	PathVersion string
	PathHash    string
}

// IProvider провайдер эфемеридных расчётов (нативный или упрощённый)
type IProvider interface {
	CalculatePlanets(ctx context.Context, req PlanetsRequest) (*PlanetsResult, error)
	CalculateHouses(ctx context.Context, req HousesRequest) (*HousesResult, error)
	Engine() domain.Engine
	Available() bool
	// Provenance nil для движков без нативных данных
	Provenance() *Provenance
}
