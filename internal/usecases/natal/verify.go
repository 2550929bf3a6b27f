package natal

import (
	"bytes"
	"context"

	"github.com/google/uuid"

	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// Причины несопоставимости пары карт
const (
	MismatchReasonVersion = "version_mismatch"
	MismatchReasonHash    = "hash_mismatch"
	MismatchReasonPayload = "payload_mismatch"
)

// ConsistencyReport результат сверки двух последних сопоставимых карт
type ConsistencyReport struct {
	Consistent       bool      `json:"consistent"`
	LatestChartID    uuid.UUID `json:"latest_chart_id"`
	BaselineChartID  uuid.UUID `json:"baseline_chart_id"`
	InputHash        string    `json:"input_hash"`
	ReferenceVersion string    `json:"reference_version"`
	RulesetVersion   string    `json:"ruleset_version"`
}

// VerifyConsistencyForUser сверяет последнюю карту пользователя с предыдущей
// сопоставимой: при одинаковых (input_hash, reference_version, ruleset_version)
// канонические payload обязаны совпадать побайтно. Расхождение - поломка
// детерминизма, natal_result_mismatch.
func (s *Service) VerifyConsistencyForUser(ctx context.Context, userID uuid.UUID) (*ConsistencyReport, error) {
	latest, err := s.ChartRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	baseline, err := s.ChartRepo.GetPreviousComparable(ctx, userID, latest.ChartID,
		latest.InputHash, latest.ReferenceVersion, latest.RulesetVersion)
	if err != nil {
		if !domain.IsCode(err, domain.CodeNatalChartNotFound) {
			return nil, err
		}
		// Сопоставимой пары нет: диагностируем почему по любой предыдущей
		return nil, s.diagnoseIncomparable(ctx, userID, latest)
	}

	latestCanonical, err := canonicalPayload(latest)
	if err != nil {
		return nil, err
	}
	baselineCanonical, err := canonicalPayload(baseline)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(latestCanonical, baselineCanonical) {
		s.Log.Error("determinism check failed",
			"user_id", userID,
			"latest_chart_id", latest.ChartID,
			"baseline_chart_id", baseline.ChartID,
			"input_hash", latest.InputHash)
		return nil, domain.NewError(domain.CodeNatalResultMismatch, "stored results differ for identical input and versions").
			WithDetail("reason", MismatchReasonPayload).
			WithDetail("latest_chart_id", latest.ChartID.String()).
			WithDetail("baseline_chart_id", baseline.ChartID.String()).
			WithDetail("input_hash", latest.InputHash)
	}

	s.Log.Info("determinism check passed",
		"user_id", userID,
		"latest_chart_id", latest.ChartID,
		"baseline_chart_id", baseline.ChartID)

	return &ConsistencyReport{
		Consistent:       true,
		LatestChartID:    latest.ChartID,
		BaselineChartID:  baseline.ChartID,
		InputHash:        latest.InputHash,
		ReferenceVersion: latest.ReferenceVersion,
		RulesetVersion:   latest.RulesetVersion,
	}, nil
}

// diagnoseIncomparable объясняет, почему пара несопоставима: нет предыдущей
// карты вовсе, разошлись версии или разошёлся вход
func (s *Service) diagnoseIncomparable(ctx context.Context, userID uuid.UUID, latest *domain.ChartTrace) error {
	previous, err := s.ChartRepo.GetPreviousByUserID(ctx, userID, latest.ChartID)
	if err != nil {
		return err
	}

	if previous.ReferenceVersion != latest.ReferenceVersion || previous.RulesetVersion != latest.RulesetVersion {
		return domain.NewError(domain.CodeNatalResultMismatch, "previous chart was computed with different versions").
			WithDetail("reason", MismatchReasonVersion).
			WithDetail("latest_reference_version", latest.ReferenceVersion).
			WithDetail("previous_reference_version", previous.ReferenceVersion).
			WithDetail("latest_ruleset_version", latest.RulesetVersion).
			WithDetail("previous_ruleset_version", previous.RulesetVersion)
	}

	return domain.NewError(domain.CodeNatalResultMismatch, "previous chart was computed from a different birth profile").
		WithDetail("reason", MismatchReasonHash).
		WithDetail("latest_input_hash", latest.InputHash).
		WithDetail("previous_input_hash", previous.InputHash)
}

// canonicalPayload перегоняет сохранённый payload в каноническую форму.
// Сравнение устойчиво к порядку ключей в хранилище.
func canonicalPayload(trace *domain.ChartTrace) ([]byte, error) {
	result, err := trace.DecodeResult()
	if err != nil {
		return nil, err
	}
	return domain.CanonicalJSON(result)
}
