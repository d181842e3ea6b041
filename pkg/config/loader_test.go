package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/config"
)

type defaultsConfig struct {
	URL     string        `env:"CFG_TEST_URL" envDefault:"http://localhost:8000/api/v1"`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"15s"`
	Size    int           `env:"CFG_TEST_SIZE" envDefault:"256"`
}

type cachedConfig struct {
	Value string `env:"CFG_TEST_CACHED" envDefault:"default"`
}

type requiredConfig struct {
	Value string `env:"CFG_TEST_REQUIRED,required"`
}

type fileConfig struct {
	Value string `env:"CFG_TEST_FILE_VALUE"`
	Int   int    `env:"CFG_TEST_FILE_INT"`
}

type prefixedConfig struct {
	Driver string `env:"DRIVER" envDefault:"bolt"`
}

func TestLoad_Defaults(t *testing.T) {
	config.Reset()

	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.URL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 256, cfg.Size)
}

func TestLoad_Cached(t *testing.T) {
	config.Reset()
	t.Setenv("CFG_TEST_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CFG_TEST_CACHED", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)

	config.Reset()
	var third cachedConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, "second", third.Value)
}

func TestLoad_MissingRequired(t *testing.T) {
	config.Reset()
	require.NoError(t, os.Unsetenv("CFG_TEST_REQUIRED"))

	var cfg requiredConfig
	err := config.Load(&cfg)
	require.ErrorIs(t, err, config.ErrParsingConfig)

	t.Setenv("CFG_TEST_REQUIRED", "present")
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "present", cfg.Value)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *defaultsConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	assert.ErrorIs(t, config.Parse(cfg, ""), config.ErrNilPointer)
}

func TestLoadEnv(t *testing.T) {
	config.Reset()
	t.Cleanup(func() {
		_ = os.Unsetenv("CFG_TEST_FILE_VALUE")
		_ = os.Unsetenv("CFG_TEST_FILE_INT")
	})

	require.NoError(t, config.LoadEnv("testdata/.env.test"))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from_file", cfg.Value)
	assert.Equal(t, 7, cfg.Int)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := config.LoadEnv("testdata/missing.env")
	require.ErrorIs(t, err, config.ErrLoadingEnvFile)

	assert.Panics(t, func() { config.MustLoadEnv("testdata/missing.env") })
	assert.NotPanics(t, func() { config.MustLoadEnv() })
}

func TestParse_Prefix(t *testing.T) {
	t.Setenv("STOREFRONT_STORE_DRIVER", "redis")

	var cfg prefixedConfig
	require.NoError(t, config.Parse(&cfg, "STOREFRONT_STORE_"))
	assert.Equal(t, "redis", cfg.Driver)

	var plain prefixedConfig
	require.NoError(t, config.Parse(&plain, "UNSET_PREFIX_"))
	assert.Equal(t, "bolt", plain.Driver)
}
