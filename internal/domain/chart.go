package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChartTrace сохранённый результат расчёта с контент-адресацией.
// UserID может быть nil для legacy-строк (до появления владения).
type ChartTrace struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ChartID          uuid.UUID       `json:"chart_id" db:"chart_id"`
	UserID           *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	ReferenceVersion string          `json:"reference_version" db:"reference_version"`
	RulesetVersion   string          `json:"ruleset_version" db:"ruleset_version"`
	InputHash        string          `json:"input_hash" db:"input_hash"`
	ResultPayload    json.RawMessage `json:"result_payload" db:"result_payload"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// DecodeResult разбирает сохранённый payload с заполнением legacy-полей.
// Повреждённый payload - нарушение инварианта invalid_chart_result_payload.
func (t *ChartTrace) DecodeResult() (*NatalResult, error) {
	var result NatalResult
	if err := json.Unmarshal(t.ResultPayload, &result); err != nil {
		return nil, NewError(CodeInvalidChartResultPayload, "stored chart payload is not a valid natal result").
			WithDetail("chart_id", t.ChartID.String()).
			WithCause(err)
	}
	result.FillCanonicalFields()
	return &result, nil
}

// ChartComputedEvent событие для downstream-конвейера интерпретации
type ChartComputedEvent struct {
	ChartID          uuid.UUID  `json:"chart_id"`
	UserID           *uuid.UUID `json:"user_id,omitempty"`
	InputHash        string     `json:"input_hash"`
	ReferenceVersion string     `json:"reference_version"`
	RulesetVersion   string     `json:"ruleset_version"`
	Engine           Engine     `json:"engine"`
	ComputedAt       time.Time  `json:"computed_at"`
}
