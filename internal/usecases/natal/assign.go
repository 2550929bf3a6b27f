package natal

import (
	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// AssignHouseNumber определяет дом планеты по полуоткрытым дугам
// [куспид_i, куспид_{i+1}) с переходом через 0°/360°.
// Долгота ровно на куспиде принадлежит начинающемуся дому.
func AssignHouseNumber(longitude float64, houses []domain.HouseCuspData) (int, error) {
	if len(houses) != 12 {
		return 0, domain.NewError(domain.CodeInvalidReferenceData, "house cusps list must contain exactly 12 entries").
			WithDetail("field", "houses").
			WithDetail("count", len(houses))
	}

	lon := domain.NormalizeDegrees(longitude)
	for i := 0; i < 12; i++ {
		start := domain.NormalizeDegrees(houses[i].CuspLongitude)
		end := domain.NormalizeDegrees(houses[(i+1)%12].CuspLongitude)

		if start < end {
			if lon >= start && lon < end {
				return houses[i].Number, nil
			}
			continue
		}
		// Дуга пересекает 0°
		if lon >= start || lon < end {
			return houses[i].Number, nil
		}
	}

	// Недостижимо для 12 различных куспидов, но дубликаты превращают
	// какие-то дуги в пустые
	return 0, domain.NewError(domain.CodeInvalidReferenceData, "longitude does not fall into any house arc").
		WithDetail("field", "houses").
		WithDetail("reason", "duplicate_cusp_longitude").
		WithDetail("longitude", lon)
}

// validateCuspUniqueness проверяет попарную различность куспидов.
// Совпадающие куспиды (например, все нули) - повреждённые данные домов.
func validateCuspUniqueness(houses []domain.HouseCuspData) error {
	seen := make(map[float64]int, len(houses))
	for _, h := range houses {
		lon := domain.NormalizeDegrees(h.CuspLongitude)
		if prev, ok := seen[lon]; ok {
			return domain.NewError(domain.CodeInvalidReferenceData, "house cusps contain duplicate longitudes").
				WithDetail("field", "houses").
				WithDetail("reason", "duplicate_cusp_longitude").
				WithDetail("houses", []int{prev, h.Number})
		}
		seen[lon] = h.Number
	}
	return nil
}
