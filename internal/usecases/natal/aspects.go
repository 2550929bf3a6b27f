package natal

import (
	"math"
	"sort"

	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// ComputeAspects находит аспекты между всеми парами тел.
// Детерминизм: пары в лексикографическом порядке, результат отсортирован
// по углу аспекта, затем по паре планет.
func ComputeAspects(longitudes map[string]float64, aspects []domain.ReferenceAspect) []domain.AspectResult {
	planets := make([]string, 0, len(longitudes))
	for code := range longitudes {
		planets = append(planets, code)
	}
	sort.Strings(planets)

	results := make([]domain.AspectResult, 0)
	for i := 0; i < len(planets); i++ {
		for j := i + 1; j < len(planets); j++ {
			planetA, planetB := planets[i], planets[j]
			separation := angularSeparation(longitudes[planetA], longitudes[planetB])

			for k := range aspects {
				aspect := &aspects[k]
				orb := math.Abs(separation - aspect.Angle)
				if orb <= effectiveOrb(aspect, planetA, planetB) {
					results = append(results, domain.AspectResult{
						AspectCode: aspect.Code,
						PlanetA:    planetA,
						PlanetB:    planetB,
						Angle:      aspect.Angle,
						Orb:        orb,
					})
				}
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Angle != results[j].Angle {
			return results[i].Angle < results[j].Angle
		}
		if results[i].PlanetA != results[j].PlanetA {
			return results[i].PlanetA < results[j].PlanetA
		}
		return results[i].PlanetB < results[j].PlanetB
	})

	return results
}

// angularSeparation минимальная дуга между долготами, в [0, 180]
func angularSeparation(a, b float64) float64 {
	d := math.Abs(domain.NormalizeDegrees(a) - domain.NormalizeDegrees(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// effectiveOrb применяет приоритет: переопределение пары, затем орбис
// светил, затем орбис аспекта по умолчанию
func effectiveOrb(aspect *domain.ReferenceAspect, planetA, planetB string) float64 {
	if len(aspect.OrbPairOverrides) > 0 {
		key := planetA + "|" + planetB
		if planetB < planetA {
			key = planetB + "|" + planetA
		}
		if orb, ok := aspect.OrbPairOverrides[key]; ok {
			return orb
		}
	}

	if aspect.OrbLuminaries != nil && (isLuminary(planetA) || isLuminary(planetB)) {
		return *aspect.OrbLuminaries
	}

	return aspect.DefaultOrbDeg
}

func isLuminary(planet string) bool {
	return planet == "sun" || planet == "moon"
}
