package natal

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metricsAdapter "github.com/admin/tg-bots/astro-api/internal/adapters/secondary/metrics"
	"github.com/admin/tg-bots/astro-api/internal/domain"
	portsMetrics "github.com/admin/tg-bots/astro-api/internal/ports/metrics"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// TestPrepareHistoricalTimezone лето 1973 года в Париже - UTC+01:00,
// до возвращения летнего времени во Франции.
func TestPrepareHistoricalTimezone(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)

	prepared, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:     "1973-07-15",
		BirthTime:     strPtr("14:30"),
		BirthPlace:    "Paris",
		BirthTimezone: strPtr("Europe/Paris"),
	})
	require.NoError(t, err)

	assert.Equal(t, "1973-07-15T14:30:00+01:00", prepared.BirthDatetimeLocal)
	assert.Equal(t, "1973-07-15T13:30:00Z", prepared.BirthDatetimeUTC)
	assert.Equal(t, domain.TimezoneSourceUserProvided, prepared.TimezoneSource)
	assert.Equal(t, "Europe/Paris", prepared.BirthTimezone)
	assert.Equal(t, domain.TimeScaleUT, prepared.TimeScale)
	assert.False(t, prepared.MissingBirthTime)
}

// TestPrepareDerivedTimezone без зоны пользователя таймзона выводится
// по координатам.
func TestPrepareDerivedTimezone(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)

	prepared, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:  "1990-03-01",
		BirthTime:  strPtr("08:00"),
		BirthPlace: "Paris",
		BirthLat:   floatPtr(48.85),
		BirthLon:   floatPtr(2.35),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TimezoneSourceDerived, prepared.TimezoneSource)
	assert.Equal(t, "Europe/Paris", prepared.BirthTimezone)
}

// TestPrepareMissingTimezone нет ни зоны, ни координат.
func TestPrepareMissingTimezone(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)

	_, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:  "1990-03-01",
		BirthTime:  strPtr("08:00"),
		BirthPlace: "Paris",
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeMissingTimezone))
}

// TestPrepareDerivationFailed координаты вне известных полигонов.
func TestPrepareDerivationFailed(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)
	svc.TzFinder = &fakeTzFinder{zone: ""}

	_, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:  "1990-03-01",
		BirthTime:  strPtr("08:00"),
		BirthPlace: "Ocean",
		BirthLat:   floatPtr(0),
		BirthLon:   floatPtr(-30),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeTimezoneDerivationFailed))
}

// TestPrepareInvalidTimezone несуществующая IANA-зона.
func TestPrepareInvalidTimezone(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)

	_, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:     "1990-03-01",
		BirthTime:     strPtr("08:00"),
		BirthPlace:    "Nowhere",
		BirthTimezone: strPtr("Mars/Olympus_Mons"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidTimezone))
}

// TestPrepareBlankBirthTime пустая строка времени - ошибка, не деградация.
func TestPrepareBlankBirthTime(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)

	_, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:     "1990-03-01",
		BirthTime:     strPtr("   "),
		BirthPlace:    "Moscow",
		BirthTimezone: strPtr("Europe/Moscow"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidBirthTime))
}

// TestPrepareStructuralValidation нарушения по месту и координатам
// не маскируются под ошибку времени рождения.
func TestPrepareStructuralValidation(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)

	longPlace := strings.Repeat("x", 256)
	_, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:     "1990-03-01",
		BirthPlace:    longPlace,
		BirthTimezone: strPtr("Europe/Moscow"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidBirthInput))
	domainErr, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "BirthPlace", domainErr.Details["field"])

	_, err = svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:     "1990-03-01",
		BirthPlace:    "Moscow",
		BirthTimezone: strPtr("Europe/Moscow"),
		BirthLat:      floatPtr(120),
		BirthLon:      floatPtr(37.6),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidBirthInput))

	_, err = svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthPlace:    "Moscow",
		BirthTimezone: strPtr("Europe/Moscow"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeDateOutOfRange))
}

// TestPrepareNilVsExplicitMidnight отсутствующее время даёт ту же полночь,
// но помечается флагом деградации.
func TestPrepareNilVsExplicitMidnight(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)
	input := domain.BirthInput{
		BirthDate:     "1990-03-01",
		BirthPlace:    "Moscow",
		BirthTimezone: strPtr("Europe/Moscow"),
	}

	withoutTime, err := svc.PrepareBirthData(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, withoutTime.MissingBirthTime)

	input.BirthTime = strPtr("00:00")
	explicit, err := svc.PrepareBirthData(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, explicit.MissingBirthTime)

	assert.Equal(t, withoutTime.TimestampUTC, explicit.TimestampUTC)
	assert.Equal(t, withoutTime.JulianDay, explicit.JulianDay)
}

// TestPrepareSecondsAndFraction время с секундами и микросекундами.
func TestPrepareSecondsAndFraction(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)

	for _, birthTime := range []string{"14:30:45", "14:30:45.250000"} {
		_, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
			BirthDate:     "1990-03-01",
			BirthTime:     strPtr(birthTime),
			BirthPlace:    "Moscow",
			BirthTimezone: strPtr("Europe/Moscow"),
		})
		require.NoError(t, err, "time %q", birthTime)
	}

	_, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:     "1990-03-01",
		BirthTime:     strPtr("25:99"),
		BirthPlace:    "Moscow",
		BirthTimezone: strPtr("Europe/Moscow"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidBirthTime))
}

// TestPrepareDateOutOfRange дата за пределами поддерживаемого диапазона.
func TestPrepareDateOutOfRange(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)

	_, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:     "9999-12-31",
		BirthTime:     strPtr("12:00"),
		BirthPlace:    "Moscow",
		BirthTimezone: strPtr("UTC"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeDateOutOfRange))
}

// TestPrepareTTUpgrade переход на шкалу TT: дельта заполнена, инвариант
// JdTT = JD + ΔT/86400 держится с высокой точностью, метрика растёт.
func TestPrepareTTUpgrade(t *testing.T) {
	svc := newTestService(newFakeRefRepo(), &fakeChartRepo{}, nil)
	svc.settings.TTEnabled = true
	recorder := metricsAdapter.NewInMemoryRecorder()
	svc.Metrics = recorder

	prepared, err := svc.PrepareBirthData(context.Background(), domain.BirthInput{
		BirthDate:     "2000-01-01",
		BirthTime:     strPtr("12:00"),
		BirthPlace:    "Greenwich",
		BirthTimezone: strPtr("UTC"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TimeScaleTT, prepared.TimeScale)
	require.NotNil(t, prepared.DeltaTSec)
	require.NotNil(t, prepared.JdTT)
	assert.InDelta(t, 63.86, *prepared.DeltaTSec, 0.2)
	assert.InDelta(t, prepared.JulianDay+*prepared.DeltaTSec/86400.0, *prepared.JdTT, 1e-10)
	assert.Equal(t, 1.0, recorder.CounterValue(portsMetrics.TimePipelineTTEnabled, nil))
}
