package repository

import (
	"context"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/persistence"
	"github.com/google/uuid"
)

// IReferenceRepo интерфейс для работы со справочными данными
type IReferenceRepo interface {
	GetVersion(ctx context.Context, version string) (*domain.ReferenceVersion, error)
	GetActiveVersion(ctx context.Context) (*domain.ReferenceVersion, error)
	CreateVersion(ctx context.Context, version string, description *string) (*domain.ReferenceVersion, error)
	ActivateVersion(ctx context.Context, versionID uuid.UUID) error
	HasVersionData(ctx context.Context, versionID uuid.UUID) (bool, error)
	ClearVersionData(ctx context.Context, tx persistence.Transaction, versionID uuid.UUID) error
	SeedVersionDefaults(ctx context.Context, tx persistence.Transaction, versionID uuid.UUID) error
	CloneVersionData(ctx context.Context, tx persistence.Transaction, srcID, dstID uuid.UUID) error
	GetReferenceData(ctx context.Context, versionID uuid.UUID) (*ReferenceRows, error)
	WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error
}

// ReferenceRows сырые строки справочника одной версии до сборки снапшота
type ReferenceRows struct {
	Planets         []domain.ReferencePlanet
	Signs           []domain.ReferenceSign
	Houses          []domain.ReferenceHouse
	Aspects         []domain.ReferenceAspect
	Characteristics []domain.Characteristic
}
