package swisseph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"log/slog"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/metrics"
	"github.com/admin/tg-bots/astro-api/internal/ports/storage"
	"github.com/mshafiee/swephgo"
)

// BootstrapResult read-only запись об инициализации нативного движка.
// Сырой путь к данным наружу не отдаётся - только PathVersion и PathHash.
type BootstrapResult struct {
	Success     bool
	PathVersion string
	PathHash    string
	ErrCode     string
}

var (
	// engineMu сериализует доступ к глобальному состоянию нативной библиотеки:
	// путь к данным, сидерический режим, станция наблюдателя
	engineMu sync.Mutex

	bootstrapMu     sync.Mutex
	bootstrapResult *BootstrapResult
)

// Bootstrap одноразовая инициализация нативных эфемерид: опциональная
// синхронизация файлов из S3, валидация пути и хэша, установка ephe path.
// При любой ошибке результат всё равно записывается с Success=false.
func Bootstrap(ctx context.Context, cfg *Config, fileStore storage.IEphemerisFileStore, recorder metrics.IRecorder, log *slog.Logger) (*BootstrapResult, error) {
	bootstrapMu.Lock()
	defer bootstrapMu.Unlock()

	if bootstrapResult != nil {
		return bootstrapResult, nil
	}

	result, err := runBootstrap(ctx, cfg, fileStore, log)
	bootstrapResult = result

	status := "success"
	if !result.Success {
		status = result.ErrCode
	}
	recorder.IncrementCounter(metrics.EphemerisBootstrapRuns, 1, map[string]string{"status": status})

	if err != nil {
		log.Error("ephemeris bootstrap failed",
			"error_code", result.ErrCode,
			"path_version", result.PathVersion)
		return result, err
	}

	log.Info("ephemeris bootstrap completed",
		"path_version", result.PathVersion,
		"path_hash", result.PathHash)
	return result, nil
}

func runBootstrap(ctx context.Context, cfg *Config, fileStore storage.IEphemerisFileStore, log *slog.Logger) (*BootstrapResult, error) {
	result := &BootstrapResult{PathVersion: cfg.PathVersion}

	if cfg.PathVersion == "" {
		result.ErrCode = domain.CodeSwissephInitFailed
		return result, domain.NewError(domain.CodeSwissephInitFailed, "ephemeris path version must not be empty")
	}

	if cfg.SyncFromS3 && fileStore != nil {
		for _, name := range cfg.GetRequiredFiles() {
			if err := fileStore.FetchFile(ctx, name, cfg.DataPath); err != nil {
				log.Warn("ephemeris file sync failed, falling back to local data",
					"file", name)
				break
			}
		}
	}

	info, err := os.Stat(cfg.DataPath)
	if err != nil || !info.IsDir() {
		result.ErrCode = domain.CodeEphemerisDataMissing
		return result, domain.NewError(domain.CodeEphemerisDataMissing, "ephemeris data directory is missing").
			WithDetail("path_version", cfg.PathVersion)
	}

	if cfg.ValidateRequiredFiles {
		pathHash, missing, err := hashRequiredFiles(cfg.DataPath, cfg.GetRequiredFiles())
		if err != nil {
			if missing != "" {
				result.ErrCode = domain.CodeEphemerisDataMissing
				return result, domain.NewError(domain.CodeEphemerisDataMissing, "required ephemeris file is missing").
					WithDetail("file", missing).
					WithDetail("path_version", cfg.PathVersion)
			}
			result.ErrCode = domain.CodeSwissephInitFailed
			return result, domain.NewError(domain.CodeSwissephInitFailed, "failed to validate ephemeris data").WithCause(err)
		}
		result.PathHash = pathHash

		if cfg.ExpectedPathHash != "" && cfg.ExpectedPathHash != pathHash {
			result.ErrCode = domain.CodeSwissephInitFailed
			return result, domain.NewError(domain.CodeSwissephInitFailed, "ephemeris data hash mismatch").
				WithDetail("path_version", cfg.PathVersion)
		}
	}

	engineMu.Lock()
	swephgo.SetEphePath([]byte(cfg.DataPath))
	engineMu.Unlock()

	result.Success = true
	return result, nil
}

// hashRequiredFiles детерминированный агрегатный SHA-256: имя, размер и
// хэш содержимого каждого файла в отсортированном порядке
func hashRequiredFiles(dataPath string, files []string) (string, string, error) {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	aggregate := sha256.New()
	for _, name := range sorted {
		f, err := os.Open(filepath.Join(dataPath, name))
		if err != nil {
			if os.IsNotExist(err) {
				return "", name, fmt.Errorf("required file missing: %s", name)
			}
			return "", "", fmt.Errorf("failed to open %s: %w", name, err)
		}

		fileHash := sha256.New()
		size, err := io.Copy(fileHash, f)
		f.Close()
		if err != nil {
			return "", "", fmt.Errorf("failed to read %s: %w", name, err)
		}

		fmt.Fprintf(aggregate, "%s:%d:%s;", name, size, hex.EncodeToString(fileHash.Sum(nil)))
	}

	return hex.EncodeToString(aggregate.Sum(nil)), "", nil
}

// GetBootstrapResult возвращает записанный результат бутстрапа (nil до запуска)
func GetBootstrapResult() *BootstrapResult {
	bootstrapMu.Lock()
	defer bootstrapMu.Unlock()
	return bootstrapResult
}

// ResetBootstrapForTest сбрасывает состояние бутстрапа (только для тестов)
func ResetBootstrapForTest() {
	bootstrapMu.Lock()
	defer bootstrapMu.Unlock()
	bootstrapResult = nil
}
