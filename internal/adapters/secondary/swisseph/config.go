package swisseph

import "strings"

// Config конфигурация нативного движка эфемерид
type Config struct {
	Enabled               bool   `envconfig:"ENABLED" default:"true"`
	DataPath              string `envconfig:"DATA_PATH" default:"/usr/share/sweph/ephe"`
	PathVersion           string `envconfig:"PATH_VERSION" default:"sweph-2.10"`
	ExpectedPathHash      string `envconfig:"EXPECTED_PATH_HASH"`
	ValidateRequiredFiles bool   `envconfig:"VALIDATE_REQUIRED_FILES" default:"true"`
	RequiredFiles         string `envconfig:"REQUIRED_FILES"` // через запятую, пусто = набор по умолчанию
	SyncFromS3            bool   `envconfig:"SYNC_FROM_S3" default:"false"`
}

// defaultRequiredFiles шесть базовых файлов эфемерид:
// планеты, Луна и астероиды для эр AD (1800..2399) и BC
var defaultRequiredFiles = []string{
	"sepl_18.se1",
	"semo_18.se1",
	"seas_18.se1",
	"seplm18.se1",
	"semom18.se1",
	"seasm18.se1",
}

// GetRequiredFiles возвращает список обязательных файлов
func (c *Config) GetRequiredFiles() []string {
	if c.RequiredFiles == "" {
		return defaultRequiredFiles
	}
	parts := strings.Split(c.RequiredFiles, ",")
	files := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			files = append(files, trimmed)
		}
	}
	return files
}
