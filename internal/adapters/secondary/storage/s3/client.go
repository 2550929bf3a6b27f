package s3

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/admin/tg-bots/astro-api/internal/ports/storage"
	"github.com/minio/minio-go/v7"
)

// Client обёртка над minio.Client для загрузки файлов эфемерид
type Client struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

// NewClient создаёт новый S3 клиент для файлов эфемерид
func NewClient(client *minio.Client, bucket string, log *slog.Logger) storage.IEphemerisFileStore {
	return &Client{
		client: client,
		bucket: bucket,
		log:    log,
	}
}

// FetchFile скачивает файл эфемерид в destDir, пропуская уже существующие
func (c *Client) FetchFile(ctx context.Context, name string, destDir string) error {
	destPath := filepath.Join(destDir, name)

	if _, err := os.Stat(destPath); err == nil {
		c.log.Debug("ephemeris file already present, skipping download", "file", name)
		return nil
	}

	if err := c.client.FGetObject(ctx, c.bucket, name, destPath, minio.GetObjectOptions{}); err != nil {
		c.log.Error("failed to download ephemeris file",
			"error", err,
			"file", name,
			"bucket", c.bucket)
		return fmt.Errorf("failed to download ephemeris file %s: %w", name, err)
	}

	c.log.Info("ephemeris file downloaded", "file", name)
	return nil
}

// ListFiles получает список файлов в бакете по префиксу
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	var files []string

	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		files = append(files, object.Key)
	}

	return files, nil
}
