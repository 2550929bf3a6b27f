package natal

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
)

// Calculate выполняет полный расчёт натальной карты: справочник, подготовка
// времени, выбор движка, позиции, дома, аспекты и сборка результата.
// Дедлайн проверяется перед подготовкой и перед вызовом движка.
func (s *Service) Calculate(ctx context.Context, input domain.BirthInput, params CalculateParams) (*domain.NatalResult, error) {
	params.fillDefaults()
	requestID := uuid.New().String()
	log := s.Log.With("request_id", requestID)

	version, err := s.RefService.ResolveVersion(ctx, params.ReferenceVersion)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.RefService.GetReferenceData(ctx, version)
	if err != nil {
		return nil, err
	}
	if err := validateSnapshotCompleteness(snapshot); err != nil {
		return nil, err
	}

	if err := checkTimeout(params.TimeoutCheck, "reference_loaded"); err != nil {
		return nil, err
	}

	prepared, err := s.PrepareBirthData(ctx, input)
	if err != nil {
		return nil, err
	}

	provider, err := s.selectProvider(input, params, log)
	if err != nil {
		return nil, err
	}

	engine := provider.Engine()
	zodiac := params.Zodiac
	frame := params.Frame
	if engine == domain.EngineSimplified {
		// Упрощённый движок не умеет сидерический зодиак и топоцентрику
		zodiac = domain.ZodiacTropical
		frame = domain.FrameGeocentric
	}

	log = log.With("engine", engine)
	if prov := provider.Provenance(); prov != nil {
		log = log.With("ephe_version", prov.PathVersion, "ephe_hash", prov.PathHash)
	}

	if err := checkTimeout(params.TimeoutCheck, "before_engine_call"); err != nil {
		return nil, err
	}

	// Движкам всегда уходит jd_ut: *_ut-вызовы применяют дельта-T сами,
	// jd_tt остаётся provenance-полем подготовленного входа
	jd := prepared.JdUT()

	var altitude float64
	if params.AltitudeM != nil {
		altitude = *params.AltitudeM
	}

	planetsResult, err := provider.CalculatePlanets(ctx, ephemeris.PlanetsRequest{
		JdUT:      jd,
		Lat:       input.BirthLat,
		Lon:       input.BirthLon,
		Zodiac:    zodiac,
		Ayanamsa:  params.Ayanamsa,
		Frame:     frame,
		AltitudeM: altitude,
	})
	if err != nil {
		log.Error("planet calculation failed", "error", err)
		return nil, err
	}

	var lat, lon float64
	if input.BirthLat != nil {
		lat = *input.BirthLat
	}
	if input.BirthLon != nil {
		lon = *input.BirthLon
	}

	housesResult, err := provider.CalculateHouses(ctx, ephemeris.HousesRequest{
		JdUT:   jd,
		Lat:    lat,
		Lon:    lon,
		System: params.HouseSystem,
	})
	if err != nil {
		log.Error("house calculation failed", "error", err)
		return nil, err
	}

	if err := validateCuspUniqueness(housesResult.Cusps); err != nil {
		return nil, err
	}

	longitudes := make(map[string]float64, len(planetsResult.Planets))
	positions := make([]domain.PlanetPosition, 0, len(planetsResult.Planets))
	for _, planet := range planetsResult.Planets {
		signCode, err := signCodeFor(planet, snapshot)
		if err != nil {
			log.Error("sign coherence check failed", "error", err, "planet", planet.PlanetID)
			return nil, err
		}

		houseNumber, err := AssignHouseNumber(planet.Longitude, housesResult.Cusps)
		if err != nil {
			return nil, err
		}

		longitudes[planet.PlanetID] = planet.Longitude
		positions = append(positions, domain.PlanetPosition{
			PlanetCode:  planet.PlanetID,
			Longitude:   planet.Longitude,
			SignCode:    signCode,
			HouseNumber: houseNumber,
		})
	}

	aspects := ComputeAspects(longitudes, snapshot.Aspects)

	result := &domain.NatalResult{
		ReferenceVersion:   version,
		RulesetVersion:     s.settings.RulesetVersion,
		HouseSystem:        housesResult.SystemUsed,
		Engine:             engine,
		Zodiac:             zodiac,
		Frame:              frame,
		AltitudeM:          params.AltitudeM,
		TimeScale:          prepared.TimeScale,
		PreparedInput:      *prepared,
		AscendantLongitude: housesResult.AscendantLongitude,
		MidheavenLongitude: housesResult.MidheavenLongitude,
		PlanetPositions:    positions,
		Houses:             housesResult.Cusps,
		Aspects:            aspects,
	}

	if zodiac == domain.ZodiacSidereal {
		ayanamsa := params.Ayanamsa
		result.Ayanamsa = &ayanamsa
		result.AyanamsaDeg = planetsResult.EffectiveAyanamsa
	}
	if prov := provider.Provenance(); prov != nil {
		pathVersion := prov.PathVersion
		result.EphemerisPathVersion = &pathVersion
	}

	log.Info("natal chart calculated",
		"reference_version", version,
		"ruleset_version", s.settings.RulesetVersion,
		"house_system", result.HouseSystem,
		"zodiac", zodiac,
		"planet_count", len(positions),
		"aspect_count", len(aspects))

	return result, nil
}

// selectProvider выбирает движок: accurate требует нативный и полные данные,
// иначе деградация до упрощённого при недоступном нативном или без координат
func (s *Service) selectProvider(input domain.BirthInput, params CalculateParams, log *slog.Logger) (ephemeris.IProvider, error) {
	if params.Accurate {
		if input.BirthTime == nil {
			return nil, domain.NewError(domain.CodeMissingBirthTime, "accurate calculation requires an explicit birth time")
		}
		if !input.HasCoordinates() {
			return nil, domain.NewError(domain.CodeMissingBirthPlaceResolved, "accurate calculation requires resolved birth place coordinates")
		}
		if s.Native == nil || !s.Native.Available() {
			return nil, domain.NewError(domain.CodeNatalEngineUnavailable, "native ephemeris engine is not available").
				WithRetryable()
		}
		return s.Native, nil
	}

	if s.Native != nil && s.Native.Available() && input.HasCoordinates() {
		return s.Native, nil
	}

	log.Info("falling back to simplified engine",
		"native_available", s.Native != nil && s.Native.Available(),
		"has_coordinates", input.HasCoordinates())
	return s.Fallback, nil
}

// checkTimeout переводит истёкший дедлайн в natal_generation_timeout
func checkTimeout(check TimeoutChecker, phase string) error {
	if check == nil {
		return nil
	}
	if err := check(); err != nil {
		return domain.NewError(domain.CodeNatalGenerationTimeout, "natal chart generation deadline exceeded").
			WithDetail("phase", phase).
			WithRetryable().
			WithCause(err)
	}
	return nil
}

// signCodeFor возвращает код знака из справочника и сверяет его
// с каноническим порядком знаков для данной долготы
func signCodeFor(planet domain.PlanetData, snapshot *domain.ReferenceSnapshot) (string, error) {
	idx := int(math.Floor(domain.NormalizeDegrees(planet.Longitude)/30)) % 12
	code := snapshot.Signs[idx].Code
	if canonical := domain.SignCodes[idx]; code != canonical {
		return "", domain.NewError(domain.CodeInconsistentNatalResult, "sign code does not match planet longitude").
			WithDetail("planet", planet.PlanetID).
			WithDetail("longitude", planet.Longitude).
			WithDetail("sign_code", code).
			WithDetail("expected_sign_code", canonical)
	}
	return code, nil
}

// validateSnapshotCompleteness проверяет наличие всех блоков справочника
func validateSnapshotCompleteness(snapshot *domain.ReferenceSnapshot) error {
	if len(snapshot.Planets) == 0 {
		return incompleteReference(snapshot.Version, "planets")
	}
	if len(snapshot.Signs) != 12 {
		return incompleteReference(snapshot.Version, "signs")
	}
	if len(snapshot.Houses) != 12 {
		return incompleteReference(snapshot.Version, "houses")
	}
	if len(snapshot.Aspects) == 0 {
		return incompleteReference(snapshot.Version, "aspects")
	}
	return nil
}

func incompleteReference(version, field string) error {
	return domain.NewError(domain.CodeInvalidReferenceData, "reference data block is missing or incomplete").
		WithDetail("version", version).
		WithDetail("field", field)
}
