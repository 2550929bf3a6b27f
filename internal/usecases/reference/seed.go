package reference

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/persistence"
)

// Seed создаёт версию (если нет) и наполняет её данными по умолчанию.
// Повторный вызов для наполненной версии ничего не меняет.
func (s *Service) Seed(ctx context.Context, version string, description *string) (*domain.ReferenceVersion, error) {
	if version == "" {
		version = DefaultVersion
	}

	row, err := s.RefRepo.GetVersion(ctx, version)
	if err != nil {
		if !domain.IsCode(err, domain.CodeReferenceVersionNotFound) {
			return nil, fmt.Errorf("failed to resolve version for seed: %w", err)
		}
		row, err = s.RefRepo.CreateVersion(ctx, version, description)
		if err != nil {
			return nil, fmt.Errorf("failed to create version for seed: %w", err)
		}
	}

	hasData, err := s.RefRepo.HasVersionData(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check version data before seed: %w", err)
	}
	if hasData {
		s.Log.Debug("reference version already seeded", "version", version)
		if err := s.ensureActive(ctx, row); err != nil {
			return nil, err
		}
		return row, nil
	}

	err = s.RefRepo.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		return s.RefRepo.SeedVersionDefaults(ctx, tx, row.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed version defaults: %w", err)
	}

	if err := s.ensureActive(ctx, row); err != nil {
		return nil, err
	}

	// Кэш инвалидируется до того, как читатели увидят новую версию
	s.Cache.Invalidate(version)

	s.Log.Info("reference version seeded", "version", version)
	return row, nil
}

// ensureActive назначает версию активной, когда активной нет вовсе:
// иначе разрешение версии по умолчанию упирается в пустой справочник
func (s *Service) ensureActive(ctx context.Context, row *domain.ReferenceVersion) error {
	if row.IsActive {
		return nil
	}

	_, err := s.RefRepo.GetActiveVersion(ctx)
	if err == nil {
		return nil
	}
	if !domain.IsCode(err, domain.CodeReferenceVersionNotFound) {
		return fmt.Errorf("failed to check active version: %w", err)
	}

	if err := s.RefRepo.ActivateVersion(ctx, row.ID); err != nil {
		return fmt.Errorf("failed to activate seeded version: %w", err)
	}
	row.IsActive = true
	s.Log.Info("reference version activated", "version", row.Version)
	return nil
}

// Activate переключает активную версию справочника
func (s *Service) Activate(ctx context.Context, version string) (*domain.ReferenceVersion, error) {
	row, err := s.RefRepo.GetVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	if err := s.RefRepo.ActivateVersion(ctx, row.ID); err != nil {
		return nil, err
	}
	row.IsActive = true

	s.Log.Info("active reference version switched", "version", version)
	return row, nil
}

// Clone копирует все данные справочника из существующей версии в новую
func (s *Service) Clone(ctx context.Context, sourceVersion, newVersion string) (*domain.ReferenceVersion, error) {
	src, err := s.RefRepo.GetVersion(ctx, sourceVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source version: %w", err)
	}

	dst, err := s.RefRepo.CreateVersion(ctx, newVersion, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create target version: %w", err)
	}

	err = s.RefRepo.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		return s.RefRepo.CloneVersionData(ctx, tx, src.ID, dst.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone version data: %w", err)
	}

	s.Cache.Invalidate(newVersion)

	s.Log.Info("reference version cloned",
		"source_version", sourceVersion,
		"new_version", newVersion)
	return dst, nil
}

// HasVersionData проверяет наличие данных у версии
func (s *Service) HasVersionData(ctx context.Context, version string) (bool, error) {
	row, err := s.RefRepo.GetVersion(ctx, version)
	if err != nil {
		return false, err
	}
	return s.RefRepo.HasVersionData(ctx, row.ID)
}

// PurgeCache очищает кэш снапшотов (для тестов)
func (s *Service) PurgeCache() {
	s.Cache.Purge()
}
