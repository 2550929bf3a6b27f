package domain

// TimezoneSource источник таймзоны: задана пользователем или выведена по координатам
type TimezoneSource string

const (
	TimezoneSourceUserProvided TimezoneSource = "user_provided"
	TimezoneSourceDerived      TimezoneSource = "derived"
)

// TimeScale шкала времени расчёта: UT (приближение UT1) или TT (земное время)
type TimeScale string

const (
	TimeScaleUT TimeScale = "UT"
	TimeScaleTT TimeScale = "TT"
)

// BirthInput входные данные о рождении. Создаётся на запрос, не мутируется,
// не сохраняется как есть (в БД попадает только fingerprint).
type BirthInput struct {
	BirthDate       string   `json:"birth_date" validate:"required"`
	BirthTime       *string  `json:"birth_time,omitempty"`
	BirthPlace      string   `json:"birth_place" validate:"required,max=255"`
	BirthTimezone   *string  `json:"birth_timezone,omitempty"`
	BirthLat        *float64 `json:"birth_lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	BirthLon        *float64 `json:"birth_lon,omitempty" validate:"omitempty,gte=-180,lte=180"`
	PlaceResolvedID *string  `json:"place_resolved_id,omitempty"`
}

// HasCoordinates проверяет наличие обеих координат
func (b BirthInput) HasCoordinates() bool {
	return b.BirthLat != nil && b.BirthLon != nil
}

// BirthPreparedData результат подготовки: локальное и UTC время, юлианский день,
// фактически применённая таймзона и опциональный переход на шкалу TT.
// Инвариант: при TimeScale == TT поля DeltaTSec и JdTT заполнены и
// JdTT == JulianDay + DeltaTSec/86400.
type BirthPreparedData struct {
	BirthDatetimeLocal string         `json:"birth_datetime_local"`
	BirthDatetimeUTC   string         `json:"birth_datetime_utc"`
	TimestampUTC       int64          `json:"timestamp_utc"`
	JulianDay          float64        `json:"julian_day"`
	BirthTimezone      string         `json:"birth_timezone"`
	TimezoneIANA       string         `json:"timezone_iana"`
	TimezoneSource     TimezoneSource `json:"timezone_source"`
	DeltaTSec          *float64       `json:"delta_t_sec,omitempty"`
	JdTT               *float64       `json:"jd_tt,omitempty"`
	TimeScale          TimeScale      `json:"time_scale"`
	// MissingBirthTime true, когда время рождения не задано и использована
	// локальная полночь (деградация, отличается от явного "00:00")
	MissingBirthTime bool `json:"missing_birth_time,omitempty"`
}

// JdUT синоним JulianDay (шкала UT)
func (p *BirthPreparedData) JdUT() float64 {
	return p.JulianDay
}

// TimezoneUsed синоним BirthTimezone - фактически применённая IANA-зона
func (p *BirthPreparedData) TimezoneUsed() string {
	return p.BirthTimezone
}

// FillCanonicalFields проставляет значения по умолчанию для полей, добавленных
// в поздних ревизиях. Десериализация legacy-payload никогда не падает.
func (p *BirthPreparedData) FillCanonicalFields() {
	if p.TimeScale == "" {
		p.TimeScale = TimeScaleUT
	}
	if p.TimezoneIANA == "" {
		p.TimezoneIANA = p.BirthTimezone
	}
	if p.TimezoneSource == "" {
		p.TimezoneSource = TimezoneSourceUserProvided
	}
}
