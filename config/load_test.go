package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	dir := t.TempDir()

	t.Run("file not found", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "404.json"))
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "404.json")
		}
	})

	t.Run("file contains null", func(t *testing.T) {
		name := filepath.Join(dir, "null.json")
		require.NoError(t, os.WriteFile(name, []byte("null"), 0644))
		_, err := Load(name)
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "nil config")
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		name := filepath.Join(dir, "unknown.json")
		require.NoError(t, os.WriteFile(name, []byte(`{"bogus_field": 1}`), 0644))
		_, err := Load(name)
		assert.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		name := filepath.Join(dir, "cfg.json")
		cfg := &Config{
			EnableSpaceLevelMetrics: true,
			SlowQueryThresholdUs:    500000,
			Metrics:                 Metrics{ListenAddr: ":9090"},
			Tracing:                 Tracing{ServiceName: "queryexecd", SamplerParam: 0.1},
		}
		require.NoError(t, Write(cfg, name))
		loaded, err := Load(name)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	})
}

func Test_Default(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.EnableSpaceLevelMetrics)
	assert.Equal(t, uint64(200000), cfg.SlowQueryThresholdUs)
}
