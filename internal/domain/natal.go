package domain

import "math"

// Engine движок расчёта натальной карты
type Engine string

const (
	EngineSwisseph   Engine = "swisseph"
	EngineSimplified Engine = "simplified"
)

// Zodiac тип зодиака
type Zodiac string

const (
	ZodiacTropical Zodiac = "tropical"
	ZodiacSidereal Zodiac = "sidereal"
)

// Frame система отсчёта наблюдателя
type Frame string

const (
	FrameGeocentric  Frame = "geocentric"
	FrameTopocentric Frame = "topocentric"
)

// HouseSystem система домов
type HouseSystem string

const (
	HouseSystemPlacidus  HouseSystem = "placidus"
	HouseSystemKoch      HouseSystem = "koch"
	HouseSystemEqual     HouseSystem = "equal"
	HouseSystemWholeSign HouseSystem = "whole_sign"
	HouseSystemPorphyry  HouseSystem = "porphyry"
)

// PlanetOrder канонический порядок десяти тел
var PlanetOrder = []string{
	"sun", "moon", "mercury", "venus", "mars",
	"jupiter", "saturn", "uranus", "neptune", "pluto",
}

// SignCodes двенадцать знаков в каноническом порядке, начиная с Овна
var SignCodes = []string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

// NormalizeDegrees приводит угол к диапазону [0, 360)
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// SignForLongitude возвращает код знака для эклиптической долготы
func SignForLongitude(longitude float64) string {
	idx := int(math.Floor(NormalizeDegrees(longitude)/30)) % 12
	return SignCodes[idx]
}

// PlanetData позиция планеты от провайдера эфемерид
type PlanetData struct {
	PlanetID       string  `json:"planet_id"`
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	SpeedLongitude float64 `json:"speed_longitude"`
	IsRetrograde   bool    `json:"is_retrograde"`
}

// HouseCuspData куспид дома, номер 1..12, долгота в [0, 360)
type HouseCuspData struct {
	Number        int     `json:"number"`
	CuspLongitude float64 `json:"cusp_longitude"`
}

// AspectResult найденный аспект между парой планет.
// PlanetA и PlanetB упорядочены лексикографически для детерминизма.
type AspectResult struct {
	AspectCode string  `json:"aspect_code"`
	PlanetA    string  `json:"planet_a"`
	PlanetB    string  `json:"planet_b"`
	Angle      float64 `json:"angle"`
	Orb        float64 `json:"orb"`
}

// PlanetPosition позиция планеты в собранном результате
type PlanetPosition struct {
	PlanetCode  string  `json:"planet_code"`
	Longitude   float64 `json:"longitude"`
	SignCode    string  `json:"sign_code"`
	HouseNumber int     `json:"house_number"`
}

// NatalResult полный результат расчёта натальной карты с метаданными провенанса
type NatalResult struct {
	ReferenceVersion     string            `json:"reference_version"`
	RulesetVersion       string            `json:"ruleset_version"`
	HouseSystem          HouseSystem       `json:"house_system"`
	Engine               Engine            `json:"engine"`
	Zodiac               Zodiac            `json:"zodiac"`
	Ayanamsa             *string           `json:"ayanamsa,omitempty"`
	AyanamsaDeg          *float64          `json:"ayanamsa_deg,omitempty"`
	Frame                Frame             `json:"frame"`
	AltitudeM            *float64          `json:"altitude_m,omitempty"`
	EphemerisPathVersion *string           `json:"ephemeris_path_version,omitempty"`
	TimeScale            TimeScale         `json:"time_scale"`
	PreparedInput        BirthPreparedData `json:"prepared_input"`
	AscendantLongitude   float64           `json:"ascendant_longitude"`
	MidheavenLongitude   float64           `json:"midheaven_longitude"`
	PlanetPositions      []PlanetPosition  `json:"planet_positions"`
	Houses               []HouseCuspData   `json:"houses"`
	Aspects              []AspectResult    `json:"aspects"`
}

// FillCanonicalFields проставляет значения по умолчанию для legacy-payload
func (r *NatalResult) FillCanonicalFields() {
	if r.Engine == "" {
		r.Engine = EngineSimplified
	}
	if r.Zodiac == "" {
		r.Zodiac = ZodiacTropical
	}
	if r.Frame == "" {
		r.Frame = FrameGeocentric
	}
	if r.HouseSystem == "" {
		r.HouseSystem = HouseSystemPlacidus
	}
	if r.TimeScale == "" {
		r.TimeScale = TimeScaleUT
	}
	r.PreparedInput.FillCanonicalFields()
}
