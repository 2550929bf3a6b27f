package tzdata

import (
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/astro-api/internal/ports/tz"
	"github.com/ringsaturn/tzf"
)

// Finder офлайн-поиск IANA-таймзоны по координатам через полигоны tzf.
// Данные полигонов загружаются один раз при создании (прогрев на бутстрапе).
type Finder struct {
	finder tzf.F
	log    *slog.Logger
}

// NewFinder создаёт новый поисковик таймзон с загрузкой полигонов
func NewFinder(log *slog.Logger) (tz.IFinder, error) {
	f, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone polygon data: %w", err)
	}

	log.Info("timezone polygon data loaded")

	return &Finder{
		finder: f,
		log:    log,
	}, nil
}

// TimezoneAt возвращает IANA-идентификатор для координат,
// пустую строку для точек вне полигонов (океан, null island)
func (f *Finder) TimezoneAt(lat, lon float64) string {
	// tzf принимает (lng, lat)
	return f.finder.GetTimezoneName(lon, lat)
}
