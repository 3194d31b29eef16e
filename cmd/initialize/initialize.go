package initialize

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/denismitr/goenv"
	"github.com/denismitr/stockresizer/internal/media/manipulator"
	"github.com/denismitr/stockresizer/internal/metrics"
	"github.com/denismitr/stockresizer/internal/storage"
	"github.com/denismitr/stockresizer/internal/storage/fsstorage"
	"github.com/denismitr/stockresizer/internal/storage/s3storage"
	"github.com/denismitr/stockresizer/internal/variant"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func S3StorageFromEnv() (*s3storage.RemoteStorage, error) {
	cfg := s3storage.Config{
		AccessKey:        goenv.MustString("S3_ACCESS_KEY_ID"),
		AccessSecret:     goenv.MustString("S3_SECRET_ACCESS_KEY"),
		AccessToken:      "",
		Region:           goenv.MustString("S3_REGION"),
		Endpoint:         goenv.MustString("S3_ENDPOINT"),
		Bucket:           goenv.MustString("S3_BUCKET"),
		S3ForcePathStyle: goenv.IsTruthy("S3_FORCE_PATH_STYLE"),
		EnableSSL:        goenv.IsTruthy("S3_SSL"),
	}

	return s3storage.New(cfg)
}

// Storage builds the backend selected by cfg.Storage
func Storage(cfg *Config, logger *logrus.Logger) (storage.Storage, error) {
	switch cfg.Storage {
	case StorageFS:
		s, err := fsstorage.New(cfg.ImagesDir, logger)
		if err != nil {
			return nil, err
		}

		return s, nil
	case StorageS3:
		s, err := S3StorageFromEnv()
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}

		return s, nil
	default:
		return nil, errors.Errorf("unknown storage %q, use %s or %s", cfg.Storage, StorageFS, StorageS3)
	}
}

func Manipulator(cfg *Config) *manipulator.Manipulator {
	return manipulator.New(&manipulator.Config{
		JPEGQuality:     cfg.JPEGQuality,
		MaxDimension:    cfg.MaxDimension,
		MaxOriginalSize: cfg.MaxOriginalSize,
	})
}

func Resolver(cfg *Config, s storage.Storage, reg prometheus.Registerer, logger *logrus.Logger) *variant.Resolver {
	return variant.NewResolver(
		variant.Config{VerifyCached: cfg.VerifyCached},
		s,
		Manipulator(cfg),
		metrics.New(reg),
		logger,
	)
}

func Logger(level string) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{
		TimestampFormat: time.StampMilli,
		FullTimestamp:   true,
	}

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		log.Warnf("unknown log level %q, falling back to info", level)
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

// DotEnv loads .env files into the environment, a missing file is not an error
func DotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(errors.Cause(err)) {
		panic(errors.Wrap(err, "Error loading .env file"))
	}
}
