package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/freelist/pkg/errors"
	"github.com/ajitpratap0/freelist/pkg/pool"
)

func TestSimConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *SimConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*SimConfig) {}},
		{name: "zero prewarm", mutate: func(c *SimConfig) { c.Pool.Prewarm = 0 }},
		{name: "missing name", mutate: func(c *SimConfig) { c.Pool.Name = "" }, wantErr: true},
		{name: "negative prewarm", mutate: func(c *SimConfig) { c.Pool.Prewarm = -1 }, wantErr: true},
		{name: "negative capacity", mutate: func(c *SimConfig) { c.Pool.Capacity = -1 }, wantErr: true},
		{name: "bad mode", mutate: func(c *SimConfig) { c.Pool.Mode = "editor" }, wantErr: true},
		{name: "no ticks", mutate: func(c *SimConfig) { c.Simulation.Ticks = 0 }, wantErr: true},
		{name: "negative spawn", mutate: func(c *SimConfig) { c.Simulation.SpawnPerTick = -2 }, wantErr: true},
		{name: "zero lifetime", mutate: func(c *SimConfig) { c.Simulation.MinLifetime = 0 }, wantErr: true},
		{name: "inverted lifetimes", mutate: func(c *SimConfig) { c.Simulation.MaxLifetime = 2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewSimConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad_EnvSubstitutionAndDefaults(t *testing.T) {
	t.Setenv("FREELIST_POOL_NAME", "bullets")

	path := filepath.Join(t.TempDir(), "freelist.yaml")
	content := `
pool:
  name: ${FREELIST_POOL_NAME}
  prewarm: 8
  mode: authoring
simulation:
  ticks: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := NewSimConfig()
	require.NoError(t, Load(path, cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "bullets", cfg.Pool.Name)
	assert.Equal(t, 8, cfg.Pool.Prewarm)
	assert.Equal(t, pool.ModeAuthoring, cfg.PoolMode())
	assert.Equal(t, 10, cfg.Simulation.Ticks)
	assert.Equal(t, 4, cfg.Simulation.SpawnPerTick, "unset fields keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), NewSimConfig())
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool: [unclosed"), 0o600))
	err = Load(path, NewSimConfig())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	orig := NewSimConfig()
	orig.Pool.Name = "particles"
	orig.Simulation.Seed = 99

	require.NoError(t, Save(path, orig))

	loaded := &SimConfig{}
	require.NoError(t, Load(path, loaded))
	assert.Equal(t, orig, loaded)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("A", "1")
	assert.Equal(t, "x=1 y=", substituteEnvVars("x=${A} y=${FREELIST_UNSET_VAR}"))
	assert.Equal(t, "open ${A", substituteEnvVars("open ${A"))
}
