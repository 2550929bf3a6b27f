package astrotime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJulianDayJ2000 сверяет юлианский день эпохи J2000.0
// (2000-01-01 12:00 UTC) с каноническим значением 2451545.0.
func TestJulianDayJ2000(t *testing.T) {
	epoch := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	jd := JulianDayFromUnix(epoch.Unix())
	assert.InDelta(t, 2451545.0, jd, 1e-9)
}

// TestJulianDayUnixEpoch полночь 1970-01-01 UTC соответствует JD 2440587.5.
func TestJulianDayUnixEpoch(t *testing.T) {
	jd := JulianDayFromUnix(0)
	assert.InDelta(t, 2440587.5, jd, 1e-9)
}

// TestJulianDayMonotonic сутки дают ровно единицу юлианского дня.
func TestJulianDayMonotonic(t *testing.T) {
	day0 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	day1 := day0.Add(24 * time.Hour)
	assert.InDelta(t, 1.0, JulianDayFromUnix(day1.Unix())-JulianDayFromUnix(day0.Unix()), 1e-9)
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(2451545.0))
	assert.True(t, InRange(MinJulianDay))
	assert.True(t, InRange(MaxJulianDay))
	assert.False(t, InRange(MinJulianDay-0.5))
	assert.False(t, InRange(MaxJulianDay+0.5))
}

// TestDecimalYearFromJD середина 2000 года лежит между 2000 и 2001.
func TestDecimalYearFromJD(t *testing.T) {
	year := DecimalYearFromJD(2451545.0)
	require.Greater(t, year, 1999.9)
	require.Less(t, year, 2000.1)
}

// TestJdTT переход на TT сдвигает день ровно на ΔT/86400.
func TestJdTT(t *testing.T) {
	jd := 2451545.0
	deltaT := 63.86
	assert.InDelta(t, jd+deltaT/86400.0, JdTT(jd, deltaT), 1e-12)
}
