package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// Трейты характеристик, несущие переопределения орбисов
const (
	traitOrbLuminaries    = "orb_luminaries"
	traitOrbPairOverrides = "orb_pair_overrides"
	entityTypeAspect      = "aspect"
)

// ResolveVersion возвращает явную версию либо активную по умолчанию
func (s *Service) ResolveVersion(ctx context.Context, version string) (string, error) {
	if version != "" {
		return version, nil
	}

	active, err := s.RefRepo.GetActiveVersion(ctx)
	if err != nil {
		return "", err
	}
	return active.Version, nil
}

// GetReferenceData возвращает снапшот справочных данных версии.
// Повторные вызовы для той же версии внутри процесса мемоизированы.
func (s *Service) GetReferenceData(ctx context.Context, version string) (*domain.ReferenceSnapshot, error) {
	if snapshot, ok := s.Cache.GetSnapshot(version); ok {
		return snapshot, nil
	}

	row, err := s.RefRepo.GetVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	rows, err := s.RefRepo.GetReferenceData(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference rows: %w", err)
	}

	if len(rows.Aspects) == 0 {
		return nil, domain.NewError(domain.CodeInvalidReferenceData, "reference version has no aspect definitions").
			WithDetail("field", "aspects").
			WithDetail("version", version)
	}

	snapshot := &domain.ReferenceSnapshot{
		Version:         version,
		Planets:         rows.Planets,
		Signs:           rows.Signs,
		Houses:          rows.Houses,
		Aspects:         mergeAspectOrbs(rows.Aspects, rows.Characteristics),
		Characteristics: rows.Characteristics,
	}

	s.Cache.SetSnapshot(version, snapshot)

	s.Log.Debug("reference snapshot assembled", "version", version)
	return snapshot, nil
}

// mergeAspectOrbs подмешивает орбисы светил и парные переопределения
// из характеристик. Невалидный JSON и нечисловые значения молча отбрасываются,
// они никогда не должны ронять расчёт карты.
func mergeAspectOrbs(aspects []domain.ReferenceAspect, characteristics []domain.Characteristic) []domain.ReferenceAspect {
	merged := make([]domain.ReferenceAspect, len(aspects))
	copy(merged, aspects)

	for _, c := range characteristics {
		if c.EntityType != entityTypeAspect {
			continue
		}
		for i := range merged {
			if merged[i].Code != c.EntityCode {
				continue
			}
			switch c.Trait {
			case traitOrbLuminaries:
				if v, err := strconv.ParseFloat(c.Value, 64); err == nil {
					merged[i].OrbLuminaries = &v
				}
			case traitOrbPairOverrides:
				var overrides map[string]float64
				if err := json.Unmarshal([]byte(c.Value), &overrides); err == nil {
					merged[i].OrbPairOverrides = overrides
				}
			}
		}
	}

	return merged
}
