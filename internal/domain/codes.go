package domain

// Коды ошибок на границе сервиса (см. таксономию в errors.go)
const (
	CodeMissingTimezone           = "missing_timezone"
	CodeInvalidTimezone           = "invalid_timezone"
	CodeTimezoneDerivationFailed  = "timezone_derivation_failed"
	CodeInvalidBirthTime          = "invalid_birth_time"
	CodeInvalidBirthInput         = "invalid_birth_input"
	CodeDateOutOfRange            = "date_out_of_range"
	CodeMissingBirthTime          = "missing_birth_time"
	CodeMissingBirthPlaceResolved = "missing_birth_place_resolved"
	CodeNatalEngineUnavailable    = "natal_engine_unavailable"
	CodeNatalGenerationTimeout    = "natal_generation_timeout"
	CodeReferenceVersionNotFound  = "reference_version_not_found"
	CodeInvalidReferenceData      = "invalid_reference_data"
	CodeInconsistentNatalResult   = "inconsistent_natal_result"
	CodeEphemerisCalcFailed       = "ephemeris_calc_failed"
	CodeHousesCalcFailed          = "houses_calc_failed"
	CodeNatalChartNotFound        = "natal_chart_not_found"
	CodeNatalResultMismatch       = "natal_result_mismatch"
	CodeInvalidChartResultPayload = "invalid_chart_result_payload"
	CodeUnsupportedHouseSystem    = "unsupported_house_system"
	CodeUnknownAyanamsa           = "unknown_ayanamsa"
	CodeEphemerisDataMissing      = "ephemeris_data_missing"
	CodeSwissephInitFailed        = "swisseph_init_failed"
)
