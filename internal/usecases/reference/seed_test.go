package reference

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// TestSeedActivatesFirstVersion на пустой базе посеянная версия становится
// активной: разрешение версии по умолчанию обязано работать сразу после сида.
func TestSeedActivatesFirstVersion(t *testing.T) {
	repo := &stubRefRepo{
		version: &domain.ReferenceVersion{ID: uuid.New(), Version: "1.0.0", IsActive: false},
		rows:    rowsWithAspects(),
	}
	svc := New(repo, inmemory.NewReferenceCache(), slog.Default())

	row, err := svc.Seed(context.Background(), "1.0.0", nil)
	require.NoError(t, err)
	assert.True(t, row.IsActive)
	assert.Equal(t, 1, repo.activations)

	resolved, err := svc.ResolveVersion(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", resolved)
}

// TestSeedKeepsExistingActive повторный сид активной версии ничего
// не переключает.
func TestSeedKeepsExistingActive(t *testing.T) {
	svc, repo := newStubService(rowsWithAspects())

	row, err := svc.Seed(context.Background(), "1.0.0", nil)
	require.NoError(t, err)
	assert.True(t, row.IsActive)
	assert.Equal(t, 0, repo.activations)
}

// TestActivateSwitchesVersion явное переключение активной версии
func TestActivateSwitchesVersion(t *testing.T) {
	repo := &stubRefRepo{
		version: &domain.ReferenceVersion{ID: uuid.New(), Version: "2.0.0", IsActive: false},
		rows:    rowsWithAspects(),
	}
	svc := New(repo, inmemory.NewReferenceCache(), slog.Default())

	row, err := svc.Activate(context.Background(), "2.0.0")
	require.NoError(t, err)
	assert.True(t, row.IsActive)
	assert.Equal(t, 1, repo.activations)
}

// TestActivateUnknownVersion переключение на несуществующую версию
func TestActivateUnknownVersion(t *testing.T) {
	svc, _ := newStubService(rowsWithAspects())

	_, err := svc.Activate(context.Background(), "9.9.9")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeReferenceVersionNotFound))
}
