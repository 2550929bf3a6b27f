package astrotime

// Перевод между Unix-временем, юлианским днём и десятичным годом.
// JD(Unix epoch 1970-01-01T00:00:00Z) = 2440587.5

const (
	unixEpochJD   = 2440587.5
	secondsPerDay = 86400.0

	// J2000.0 = 2000-01-01T12:00:00 TT
	J2000 = 2451545.0

	// Допустимый диапазон юлианского дня, примерно годы -3000..3000
	MinJulianDay = 625674.5
	MaxJulianDay = 2817152.5
)

// JulianDayFromUnix переводит Unix-секунды в юлианский день (шкала UT)
func JulianDayFromUnix(timestamp int64) float64 {
	return float64(timestamp)/secondsPerDay + unixEpochJD
}

// InRange проверяет попадание юлианского дня в поддерживаемый диапазон
func InRange(jd float64) bool {
	return jd >= MinJulianDay && jd <= MaxJulianDay
}

// DecimalYearFromJD переводит юлианский день в десятичный год относительно J2000
func DecimalYearFromJD(jd float64) float64 {
	return 2000.0 + (jd-J2000)/365.25
}

// JdTT переводит JD_UT в JD_TT по известной дельте: JD_TT = JD_UT + ΔT/86400
func JdTT(jdUT, deltaTSec float64) float64 {
	return jdUT + deltaTSec/secondsPerDay
}
