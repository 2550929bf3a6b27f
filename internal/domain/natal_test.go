package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDegrees(t *testing.T) {
	assert.InDelta(t, 0.0, NormalizeDegrees(0), 1e-12)
	assert.InDelta(t, 0.0, NormalizeDegrees(360), 1e-12)
	assert.InDelta(t, 350.0, NormalizeDegrees(-10), 1e-12)
	assert.InDelta(t, 10.0, NormalizeDegrees(730), 1e-12)
}

// TestSignForLongitude границы знаков: ровно 30° уже Телец.
func TestSignForLongitude(t *testing.T) {
	assert.Equal(t, "aries", SignForLongitude(0))
	assert.Equal(t, "aries", SignForLongitude(29.999))
	assert.Equal(t, "taurus", SignForLongitude(30))
	assert.Equal(t, "pisces", SignForLongitude(359.999))
	assert.Equal(t, "aries", SignForLongitude(360))
	assert.Equal(t, "capricorn", SignForLongitude(-75))
}

// TestDecodeResultLegacyPayload payload без поздних полей читается
// с дефолтами, а не падает.
func TestDecodeResultLegacyPayload(t *testing.T) {
	trace := &ChartTrace{
		ResultPayload: json.RawMessage(`{"reference_version": "1.0.0", "ruleset_version": "2.0.0"}`),
	}

	result, err := trace.DecodeResult()
	require.NoError(t, err)
	assert.Equal(t, EngineSimplified, result.Engine)
	assert.Equal(t, ZodiacTropical, result.Zodiac)
	assert.Equal(t, FrameGeocentric, result.Frame)
	assert.Equal(t, HouseSystemPlacidus, result.HouseSystem)
	assert.Equal(t, TimeScaleUT, result.TimeScale)
}

// TestDecodeResultCorruptPayload повреждённый payload - нарушение инварианта.
func TestDecodeResultCorruptPayload(t *testing.T) {
	trace := &ChartTrace{
		ResultPayload: json.RawMessage(`{"reference_version": `),
	}

	_, err := trace.DecodeResult()
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInvalidChartResultPayload))
}
