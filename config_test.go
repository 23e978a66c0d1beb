package xlsxtemplate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("XLSXTEMPLATE_LOG_LEVEL", "DEBUG")
	t.Setenv("XLSXTEMPLATE_RESOLVER", "expr")
	t.Setenv("XLSXTEMPLATE_PARALLELISM", "3")
	t.Setenv("XLSXTEMPLATE_FETCH_TIMEOUT", "5s")
	t.Setenv("XLSXTEMPLATE_ADDR", ":9000")

	cfg := ConfigFromEnvironment()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "expr", cfg.Resolver)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, ":9000", cfg.Addr)

	o := newOptions(cfg.Options(nil))
	assert.IsType(t, &ExprResolver{}, o.Resolver)
	assert.True(t, o.Debug)
	assert.Equal(t, 3, o.Parallelism)
	assert.NotNil(t, o.Logger)
}

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	o := newOptions(cfg.Options(nil))
	assert.IsType(t, PathResolver{}, o.Resolver)
	assert.False(t, o.Debug)
	assert.Positive(t, o.Parallelism)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Resolver = "jq"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Parallelism = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.FetchTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}
