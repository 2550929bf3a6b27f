package natal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/cache"
)

const natalCacheKeyPrefix = "astro:natal:"

// GenerateOutput результат генерации: идентификатор трассировки и сам расчёт
type GenerateOutput struct {
	ChartID          uuid.UUID          `json:"chart_id"`
	InputHash        string             `json:"input_hash"`
	ReferenceVersion string             `json:"reference_version"`
	RulesetVersion   string             `json:"ruleset_version"`
	Engine           domain.Engine      `json:"engine"`
	CreatedAt        time.Time          `json:"created_at"`
	Result           *domain.NatalResult `json:"result"`
}

// GenerateForUser считает карту, сохраняет трассировку с fingerprint входа,
// кэширует последний результат пользователя и публикует событие для
// downstream-конвейера. Сбой кэша или события не роняет генерацию.
func (s *Service) GenerateForUser(ctx context.Context, userID uuid.UUID, input domain.BirthInput, params CalculateParams) (*GenerateOutput, error) {
	result, err := s.Calculate(ctx, input, params)
	if err != nil {
		return nil, err
	}

	inputHash, err := domain.InputHash(input, result.ReferenceVersion, result.RulesetVersion)
	if err != nil {
		return nil, err
	}

	payload, err := domain.CanonicalJSON(result)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize natal result: %w", err)
	}

	trace := &domain.ChartTrace{
		ID:               uuid.New(),
		ChartID:          uuid.New(),
		UserID:           &userID,
		ReferenceVersion: result.ReferenceVersion,
		RulesetVersion:   result.RulesetVersion,
		InputHash:        inputHash,
		ResultPayload:    payload,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.ChartRepo.Persist(ctx, trace); err != nil {
		return nil, err
	}

	s.cacheLatest(ctx, userID, trace)
	s.publishComputed(ctx, trace, result.Engine)

	s.Log.Info("natal chart generated",
		"user_id", userID,
		"chart_id", trace.ChartID,
		"input_hash", inputHash,
		"engine", result.Engine,
		"reference_version", result.ReferenceVersion)

	return &GenerateOutput{
		ChartID:          trace.ChartID,
		InputHash:        inputHash,
		ReferenceVersion: trace.ReferenceVersion,
		RulesetVersion:   trace.RulesetVersion,
		Engine:           result.Engine,
		CreatedAt:        trace.CreatedAt,
		Result:           result,
	}, nil
}

// GetLatestForUser возвращает последнюю карту пользователя: сперва Redis,
// затем хранилище с обратной записью в кэш. Если карт нет, но передан
// birth-профиль, пытается забрать legacy-строку с тем же fingerprint;
// клейм только при однозначном владельце.
func (s *Service) GetLatestForUser(ctx context.Context, userID uuid.UUID, input *domain.BirthInput, referenceVersion string) (*domain.ChartTrace, *domain.NatalResult, error) {
	if trace := s.cachedLatest(ctx, userID); trace != nil {
		result, err := trace.DecodeResult()
		if err == nil {
			return trace, result, nil
		}
		s.Log.Warn("cached chart payload is invalid, falling back to storage",
			"error", err,
			"user_id", userID)
	}

	trace, err := s.ChartRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		if !domain.IsCode(err, domain.CodeNatalChartNotFound) || input == nil {
			return nil, nil, err
		}
		trace, err = s.claimLegacy(ctx, userID, *input, referenceVersion)
		if err != nil {
			return nil, nil, err
		}
	}

	result, err := trace.DecodeResult()
	if err != nil {
		return nil, nil, err
	}

	s.cacheLatest(ctx, userID, trace)
	return trace, result, nil
}

// claimLegacy ищет строку без владельца с тем же fingerprint входа.
// Клейм запрещён, когда тот же birth-профиль уже принадлежит другому
// пользователю: один fingerprint - не больше одного владельца.
func (s *Service) claimLegacy(ctx context.Context, userID uuid.UUID, input domain.BirthInput, referenceVersion string) (*domain.ChartTrace, error) {
	version, err := s.RefService.ResolveVersion(ctx, referenceVersion)
	if err != nil {
		return nil, err
	}

	inputHash, err := domain.InputHash(input, version, s.settings.RulesetVersion)
	if err != nil {
		return nil, err
	}

	candidates, err := s.ChartRepo.GetLegacyCandidates(ctx, inputHash, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.NewError(domain.CodeNatalChartNotFound, "no natal chart for user").
			WithDetail("user_id", userID.String())
	}

	owners, err := s.ChartRepo.CountOwnersByHash(ctx, inputHash)
	if err != nil {
		return nil, err
	}
	if owners > 0 {
		return nil, domain.NewError(domain.CodeNatalChartNotFound, "legacy chart with this birth profile already has an owner").
			WithDetail("user_id", userID.String()).
			WithDetail("input_hash", inputHash)
	}

	candidate := candidates[0]
	claimed, err := s.ChartRepo.ClaimLegacy(ctx, candidate.ChartID, userID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Конкурирующий клеймер успел раньше
		return nil, domain.NewError(domain.CodeNatalChartNotFound, "legacy chart was claimed concurrently").
			WithDetail("user_id", userID.String())
	}

	s.Log.Info("legacy chart claimed",
		"user_id", userID,
		"chart_id", candidate.ChartID,
		"input_hash", inputHash)

	candidate.UserID = &userID
	return &candidate, nil
}

// cacheLatest пишет последнюю трассировку пользователя в Redis, best-effort
func (s *Service) cacheLatest(ctx context.Context, userID uuid.UUID, trace *domain.ChartTrace) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(trace)
	if err != nil {
		s.Log.Warn("failed to marshal chart trace for cache",
			"error", err,
			"user_id", userID)
		return
	}
	key := natalCacheKeyPrefix + userID.String()
	if err := s.Cache.Set(ctx, key, string(raw), s.settings.cacheTTL()); err != nil {
		s.Log.Warn("failed to cache latest natal chart",
			"error", err,
			"user_id", userID)
	}
}

// cachedLatest читает трассировку из Redis; любой сбой трактуется как промах
func (s *Service) cachedLatest(ctx context.Context, userID uuid.UUID) *domain.ChartTrace {
	if s.Cache == nil {
		return nil
	}
	raw, err := s.Cache.Get(ctx, natalCacheKeyPrefix+userID.String())
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.Log.Warn("natal cache lookup failed",
				"error", err,
				"user_id", userID)
		}
		return nil
	}
	if raw == "" {
		return nil
	}
	var trace domain.ChartTrace
	if err := json.Unmarshal([]byte(raw), &trace); err != nil {
		s.Log.Warn("failed to decode cached chart trace",
			"error", err,
			"user_id", userID)
		return nil
	}
	return &trace
}

// publishComputed публикует chart.computed, best-effort
func (s *Service) publishComputed(ctx context.Context, trace *domain.ChartTrace, engine domain.Engine) {
	if s.Events == nil {
		return
	}
	event := domain.ChartComputedEvent{
		ChartID:          trace.ChartID,
		UserID:           trace.UserID,
		InputHash:        trace.InputHash,
		ReferenceVersion: trace.ReferenceVersion,
		RulesetVersion:   trace.RulesetVersion,
		Engine:           engine,
		ComputedAt:       trace.CreatedAt,
	}
	if err := s.Events.PublishChartComputed(ctx, event); err != nil {
		s.Log.Warn("failed to publish chart computed event",
			"error", err,
			"chart_id", trace.ChartID)
	}
}
