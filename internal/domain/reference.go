package domain

import "github.com/google/uuid"

// ReferenceVersion версия справочных данных (знаки, дома, аспекты, орбисы)
type ReferenceVersion struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Version     string    `json:"version" db:"version"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
}

// ReferencePlanet планета в справочнике
type ReferencePlanet struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Code string    `json:"code" db:"code"`
	Name string    `json:"name" db:"name"`
}

// ReferenceSign знак зодиака в справочнике
type ReferenceSign struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Code string    `json:"code" db:"code"`
	Name string    `json:"name" db:"name"`
}

// ReferenceHouse дом в справочнике
type ReferenceHouse struct {
	ID     uuid.UUID `json:"id" db:"id"`
	Number int       `json:"number" db:"number"`
	Name   string    `json:"name" db:"name"`
}

// ReferenceAspect аспект в справочнике. OrbLuminaries и OrbPairOverrides
// подмешиваются из characteristics при сборке снапшота.
type ReferenceAspect struct {
	ID               uuid.UUID          `json:"id" db:"id"`
	Code             string             `json:"code" db:"code"`
	Name             string             `json:"name" db:"name"`
	Angle            float64            `json:"angle" db:"angle"`
	DefaultOrbDeg    float64            `json:"default_orb_deg" db:"default_orb_deg"`
	OrbLuminaries    *float64           `json:"orb_luminaries,omitempty" db:"-"`
	OrbPairOverrides map[string]float64 `json:"orb_pair_overrides,omitempty" db:"-"`
}

// Characteristic свободный атрибут сущности справочника
type Characteristic struct {
	ID         uuid.UUID `json:"id" db:"id"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityCode string    `json:"entity_code" db:"entity_code"`
	Trait      string    `json:"trait" db:"trait"`
	Value      string    `json:"value" db:"value"`
}

// ReferenceSnapshot консюмируемый срез справочных данных одной версии.
// Неизменяем после сборки, кэшируется по версии.
type ReferenceSnapshot struct {
	Version         string            `json:"version"`
	Planets         []ReferencePlanet `json:"planets"`
	Signs           []ReferenceSign   `json:"signs"`
	Houses          []ReferenceHouse  `json:"houses"`
	Aspects         []ReferenceAspect `json:"aspects"`
	Characteristics []Characteristic  `json:"characteristics"`
}

// AspectByCode ищет аспект по коду
func (s *ReferenceSnapshot) AspectByCode(code string) (*ReferenceAspect, bool) {
	for i := range s.Aspects {
		if s.Aspects[i].Code == code {
			return &s.Aspects[i], true
		}
	}
	return nil, false
}
