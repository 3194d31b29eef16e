package initialize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"RESIZER_PROXY_PORT", "RESIZER_BACKOFFICE_PORT", "RESIZER_IMAGES_DIR", "RESIZER_STORAGE",
	"RESIZER_MAX_DIMENSION", "RESIZER_MAX_ORIGINAL_SIZE", "RESIZER_JPEG_QUALITY",
	"RESIZER_VERIFY_CACHED", "RESIZER_CACHE_MAX_AGE", "RESIZER_LOG_LEVEL", "LOCAL_HTTPS",
}

func clearEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":3030", cfg.ProxyPort)
	assert.Equal(t, ":3031", cfg.BackofficePort)
	assert.Equal(t, "./images", cfg.ImagesDir)
	assert.Equal(t, StorageFS, cfg.Storage)
	assert.Equal(t, 10000, cfg.MaxDimension)
	assert.Equal(t, int64(50000000), cfg.MaxOriginalSize)
	assert.Equal(t, 90, cfg.JPEGQuality)
	assert.False(t, cfg.VerifyCached)
	assert.Equal(t, 24*time.Hour, cfg.CacheMaxAge)
	assert.False(t, cfg.LocalHTTPS)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESIZER_PROXY_PORT", ":8080")
	t.Setenv("RESIZER_STORAGE", "S3")
	t.Setenv("RESIZER_MAX_DIMENSION", "4096")
	t.Setenv("RESIZER_MAX_ORIGINAL_SIZE", "2MB")
	t.Setenv("RESIZER_JPEG_QUALITY", "75")
	t.Setenv("RESIZER_VERIFY_CACHED", "true")
	t.Setenv("RESIZER_CACHE_MAX_AGE", "10m")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ProxyPort)
	assert.Equal(t, StorageS3, cfg.Storage)
	assert.Equal(t, 4096, cfg.MaxDimension)
	assert.Equal(t, int64(2000000), cfg.MaxOriginalSize)
	assert.Equal(t, 75, cfg.JPEGQuality)
	assert.True(t, cfg.VerifyCached)
	assert.Equal(t, 10*time.Minute, cfg.CacheMaxAge)
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	tt := []struct {
		key   string
		value string
	}{
		{key: "RESIZER_MAX_DIMENSION", value: "wide"},
		{key: "RESIZER_MAX_DIMENSION", value: "-1"},
		{key: "RESIZER_JPEG_QUALITY", value: "101"},
		{key: "RESIZER_MAX_ORIGINAL_SIZE", value: "lots"},
		{key: "RESIZER_CACHE_MAX_AGE", value: "1 day"},
	}

	for _, tc := range tt {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			cfg, err := ConfigFromEnv()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestStorage_UnknownBackend(t *testing.T) {
	s, err := Storage(&Config{Storage: "ftp"}, Logger("error"))
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestStorage_LocalBackend(t *testing.T) {
	s, err := Storage(&Config{Storage: StorageFS, ImagesDir: t.TempDir()}, Logger("error"))
	require.NoError(t, err)
	assert.NotNil(t, s)
}
