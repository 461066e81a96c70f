package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/config"
)

type pipelineConfig struct {
	Partitions int           `env:"TEST_PARTITIONS" envDefault:"4"`
	Timeout    time.Duration `env:"TEST_TIMEOUT" envDefault:"2s"`
	Prefix     string        `env:"TEST_PREFIX"`
}

type requiredConfig struct {
	URL string `env:"TEST_REQUIRED_URL,required"`
}

type cachedConfig struct {
	Name string `env:"TEST_CACHED_NAME" envDefault:"first"`
}

func TestParse(t *testing.T) {
	t.Setenv("TEST_PARTITIONS", "8")
	t.Setenv("TEST_PREFIX", "stage.")

	cfg, err := config.Parse[pipelineConfig]()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Partitions)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "stage.", cfg.Prefix)
}

func TestParse_RequiredMissing(t *testing.T) {
	_, err := config.Parse[requiredConfig]()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_CachesPerType(t *testing.T) {
	var first cachedConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "first", first.Name)

	t.Setenv("TEST_CACHED_NAME", "second")

	var again cachedConfig
	require.NoError(t, config.Load(&again))
	assert.Equal(t, "first", again.Name)
}

func TestLoad_NilPointer(t *testing.T) {
	assert.ErrorIs(t, config.Load[cachedConfig](nil), config.ErrNilPointer)
}
