package storage

import "context"

// IEphemerisFileStore интерфейс для загрузки файлов эфемерид из
// S3-совместимого хранилища (MinIO) в локальную директорию
type IEphemerisFileStore interface {
	FetchFile(ctx context.Context, name string, destDir string) error
	ListFiles(ctx context.Context, prefix string) ([]string, error)
}
