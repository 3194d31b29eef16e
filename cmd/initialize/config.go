package initialize

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/denismitr/goenv"
	"github.com/denismitr/stockresizer/internal/media/manipulator"
	units "github.com/docker/go-units"
	"github.com/pkg/errors"
)

const (
	StorageFS = "fs"
	StorageS3 = "s3"
)

type Config struct {
	ProxyPort      string
	BackofficePort string

	ImagesDir string
	Storage   string

	MaxDimension    int
	MaxOriginalSize int64
	JPEGQuality     int
	VerifyCached    bool
	CacheMaxAge     time.Duration

	LogLevel string

	LocalHTTPS  bool
	TLSCertFile string
	TLSKeyFile  string
}

// ConfigFromEnv reads the RESIZER_* environment, unset values fall back to defaults
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		ProxyPort:      stringOrDefault("RESIZER_PROXY_PORT", ":3030"),
		BackofficePort: stringOrDefault("RESIZER_BACKOFFICE_PORT", ":3031"),
		ImagesDir:      stringOrDefault("RESIZER_IMAGES_DIR", "./images"),
		Storage:        strings.ToLower(stringOrDefault("RESIZER_STORAGE", StorageFS)),
		VerifyCached:   goenv.IsTruthy("RESIZER_VERIFY_CACHED"),
		LogLevel:       stringOrDefault("RESIZER_LOG_LEVEL", "info"),
		LocalHTTPS:     goenv.IsTruthy("LOCAL_HTTPS"),
	}

	var err error
	if cfg.MaxDimension, err = intOrDefault("RESIZER_MAX_DIMENSION", manipulator.DefaultMaxDimension); err != nil {
		return nil, err
	}

	if cfg.JPEGQuality, err = intOrDefault("RESIZER_JPEG_QUALITY", manipulator.DefaultQuality); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, errors.Errorf("RESIZER_JPEG_QUALITY must be within 1..100, got %d", cfg.JPEGQuality)
	}

	if cfg.MaxOriginalSize, err = units.FromHumanSize(stringOrDefault("RESIZER_MAX_ORIGINAL_SIZE", "50MB")); err != nil {
		return nil, errors.Wrap(err, "RESIZER_MAX_ORIGINAL_SIZE")
	}

	if cfg.CacheMaxAge, err = time.ParseDuration(stringOrDefault("RESIZER_CACHE_MAX_AGE", "24h")); err != nil {
		return nil, errors.Wrap(err, "RESIZER_CACHE_MAX_AGE")
	}

	if cfg.LocalHTTPS {
		cfg.TLSCertFile = goenv.MustString("TLS_CERT_FILE")
		cfg.TLSKeyFile = goenv.MustString("TLS_KEY_FILE")
	}

	return cfg, nil
}

func stringOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	return def
}

func intOrDefault(key string, def int) (int, error) {
	v := stringOrDefault(key, "")
	if v == "" {
		return def, nil
	}

	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return 0, errors.Errorf("%s must be a positive integer, got %q", key, v)
	}

	return i, nil
}
