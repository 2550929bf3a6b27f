package natal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/pkg/astrotime"
	"github.com/admin/tg-bots/astro-api/internal/ports/metrics"
)

const birthDateLayout = "2006-01-02"

// Форматы времени рождения от самого точного к самому короткому
var birthTimeLayouts = []string{
	"15:04:05.999999",
	"15:04:05",
	"15:04",
}

// PrepareBirthData выполняет конвейер гражданское время → астрономическое:
// резолв таймзоны, локальная стена часов, UTC, юлианский день и
// опциональный переход на шкалу TT. Полностью детерминирован.
func (s *Service) PrepareBirthData(ctx context.Context, input domain.BirthInput) (*domain.BirthPreparedData, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, classifyValidationError(err)
	}

	loc, zoneName, source, err := s.resolveTimezone(input)
	if err != nil {
		return nil, err
	}

	hour, minute, sec, nsec, missingTime, err := parseBirthTime(input.BirthTime)
	if err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation(birthDateLayout, input.BirthDate, loc)
	if err != nil {
		return nil, domain.NewError(domain.CodeDateOutOfRange, "birth date is not a valid calendar date").
			WithDetail("birth_date", input.BirthDate).
			WithCause(err)
	}

	// time.Date нормализует переходы DST: несуществующая стена часов
	// сдвигается вперёд, как делает сама стандартная библиотека
	localDT := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, sec, nsec, loc)
	utcDT := localDT.UTC()
	timestamp := localDT.Unix()

	jd := astrotime.JulianDayFromUnix(timestamp)
	if !astrotime.InRange(jd) {
		return nil, domain.NewError(domain.CodeDateOutOfRange, "birth date is outside the supported ephemeris range").
			WithDetail("julian_day", jd)
	}

	prepared := &domain.BirthPreparedData{
		BirthDatetimeLocal: localDT.Format(time.RFC3339),
		BirthDatetimeUTC:   utcDT.Format(time.RFC3339),
		TimestampUTC:       timestamp,
		JulianDay:          jd,
		BirthTimezone:      zoneName,
		TimezoneIANA:       zoneName,
		TimezoneSource:     source,
		TimeScale:          domain.TimeScaleUT,
		MissingBirthTime:   missingTime,
	}

	if s.settings.TTEnabled {
		deltaT := astrotime.DeltaTSeconds(astrotime.DecimalYearFromJD(jd))
		jdTT := astrotime.JdTT(jd, deltaT)
		prepared.DeltaTSec = &deltaT
		prepared.JdTT = &jdTT
		prepared.TimeScale = domain.TimeScaleTT
		s.Metrics.IncrementCounter(metrics.TimePipelineTTEnabled, 1, nil)
	}

	s.Log.Debug("birth data prepared",
		"timezone", zoneName,
		"timezone_source", source,
		"julian_day", jd,
		"time_scale", prepared.TimeScale,
		"missing_birth_time", missingTime)

	return prepared, nil
}

// classifyValidationError переводит ошибку валидатора в доменный код
// по первому упавшему полю: дата отдельно от структурных нарушений
func classifyValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		if field == "BirthDate" {
			return domain.NewError(domain.CodeDateOutOfRange, "birth date is missing or malformed").
				WithCause(err)
		}
		return domain.NewError(domain.CodeInvalidBirthInput, "birth input failed validation").
			WithDetail("field", field).
			WithCause(err)
	}
	return domain.NewError(domain.CodeInvalidBirthInput, "birth input failed validation").
		WithCause(err)
}

// resolveTimezone применяет приоритет: зона пользователя, затем вывод
// по координатам, иначе missing_timezone
func (s *Service) resolveTimezone(input domain.BirthInput) (*time.Location, string, domain.TimezoneSource, error) {
	if input.BirthTimezone != nil && *input.BirthTimezone != "" {
		name := *input.BirthTimezone
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, "", "", domain.NewError(domain.CodeInvalidTimezone, "birth timezone is not a valid IANA zone").
				WithDetail("birth_timezone", name).
				WithCause(err)
		}
		return loc, name, domain.TimezoneSourceUserProvided, nil
	}

	if s.settings.DeriveTimezone && input.HasCoordinates() && s.TzFinder != nil {
		name := s.TzFinder.TimezoneAt(*input.BirthLat, *input.BirthLon)
		if name == "" {
			return nil, "", "", domain.NewError(domain.CodeTimezoneDerivationFailed, "coordinates do not resolve to a known timezone").
				WithDetail("birth_lat", *input.BirthLat).
				WithDetail("birth_lon", *input.BirthLon)
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to load derived timezone %s: %w", name, err)
		}
		return loc, name, domain.TimezoneSourceDerived, nil
	}

	return nil, "", "", domain.NewError(domain.CodeMissingTimezone, "birth timezone is not provided and cannot be derived")
}

// parseBirthTime разбирает стену часов рождения.
// nil - деградация до местной полночи, пустая строка - ошибка валидации.
func parseBirthTime(birthTime *string) (hour, minute, sec, nsec int, missing bool, err error) {
	if birthTime == nil {
		return 0, 0, 0, 0, true, nil
	}

	raw := strings.TrimSpace(*birthTime)
	if raw == "" {
		return 0, 0, 0, 0, false, domain.NewError(domain.CodeInvalidBirthTime, "birth time is blank").
			WithDetail("birth_time", *birthTime)
	}

	for _, layout := range birthTimeLayouts {
		parsed, parseErr := time.Parse(layout, raw)
		if parseErr == nil {
			return parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(), false, nil
		}
	}

	return 0, 0, 0, 0, false, domain.NewError(domain.CodeInvalidBirthTime, "birth time does not match HH:MM[:SS[.ffffff]]").
		WithDetail("birth_time", raw)
}
