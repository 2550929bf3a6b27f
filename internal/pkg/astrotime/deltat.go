package astrotime

// DeltaTSeconds возвращает ΔT = TT − UT1 в секундах для десятичного года.
// Кусочно-полиномиальная модель Espenak–Meeus (NASA), непрерывная на
// границах интервалов в пределах численного допуска.
func DeltaTSeconds(year float64) float64 {
	switch {
	case year < -500:
		u := (year - 1820) / 100
		return -20 + 32*u*u

	case year < 500:
		u := year / 100
		return 10583.6 - 1014.41*u + 33.78311*u*u - 5.952053*u*u*u -
			0.1798452*u*u*u*u + 0.022174192*u*u*u*u*u + 0.0090316521*u*u*u*u*u*u

	case year < 1600:
		u := (year - 1000) / 100
		return 1574.2 - 556.01*u + 71.23472*u*u + 0.319781*u*u*u -
			0.8503463*u*u*u*u - 0.005050998*u*u*u*u*u + 0.0083572073*u*u*u*u*u*u

	case year < 1700:
		t := year - 1600
		return 120 - 0.9808*t - 0.01532*t*t + t*t*t/7129

	case year < 1800:
		t := year - 1700
		return 8.83 + 0.1603*t - 0.0059285*t*t + 0.00013336*t*t*t - t*t*t*t/1174000

	case year < 1860:
		t := year - 1800
		return 13.72 - 0.332447*t + 0.0068612*t*t + 0.0041116*t*t*t -
			0.00037436*t*t*t*t + 0.0000121272*t*t*t*t*t -
			0.0000001699*t*t*t*t*t*t + 0.000000000875*t*t*t*t*t*t*t

	case year < 1900:
		t := year - 1860
		return 7.62 + 0.5737*t - 0.251754*t*t + 0.01680668*t*t*t -
			0.0004473624*t*t*t*t + t*t*t*t*t/233174

	case year < 1920:
		t := year - 1900
		return -2.79 + 1.494119*t - 0.0598939*t*t + 0.0061966*t*t*t - 0.000197*t*t*t*t

	case year < 1941:
		t := year - 1920
		return 21.20 + 0.84493*t - 0.076100*t*t + 0.0020936*t*t*t

	case year < 1961:
		t := year - 1950
		return 29.07 + 0.407*t - t*t/233 + t*t*t/2547

	case year < 1986:
		t := year - 1975
		return 45.45 + 1.067*t - t*t/260 - t*t*t/718

	case year < 2005:
		t := year - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*t*t*t +
			0.000651814*t*t*t*t + 0.00002373599*t*t*t*t*t

	case year < 2050:
		t := year - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t

	case year < 2150:
		u := (year - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-year)

	default:
		u := (year - 1820) / 100
		return -20 + 32*u*u
	}
}
