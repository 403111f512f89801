package config

import (
	"os"
	"strings"

	"github.com/Veraticus/spend-sage/internal/report"
	"github.com/spf13/viper"
)

// LoadArchiveConfig loads object-store archive settings from Viper, falling
// back to ARCHIVE_S3_* and MINIO_ROOT_* environment variables.
func LoadArchiveConfig() (*report.ArchiveConfig, error) {
	cfg := report.ArchiveConfig{
		Endpoint:  firstNonEmpty(viper.GetString("archive.endpoint"), os.Getenv("ARCHIVE_S3_ENDPOINT")),
		Region:    firstNonEmpty(viper.GetString("archive.region"), os.Getenv("ARCHIVE_S3_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(viper.GetString("archive.access_key"), os.Getenv("ARCHIVE_S3_ACCESS_KEY"), os.Getenv("MINIO_ROOT_USER")),
		SecretKey: firstNonEmpty(viper.GetString("archive.secret_key"), os.Getenv("ARCHIVE_S3_SECRET_KEY"), os.Getenv("MINIO_ROOT_PASSWORD")),
		Bucket:    firstNonEmpty(viper.GetString("archive.bucket"), os.Getenv("ARCHIVE_S3_BUCKET"), "spend-sage-reports"),
		Prefix:    firstNonEmpty(viper.GetString("archive.prefix"), "reports"),
		UseSSL:    viper.GetBool("archive.use_ssl"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
