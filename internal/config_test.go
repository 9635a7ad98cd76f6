package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/starford/hangar/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.App.DevMode())
	assert.Equal(t, ":8080", cfg.App.HTTP.Address())
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled"}
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.AuthEnabled())
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, AuthModeDisabled, cfg.Mode)
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.AuthEnabled())

	cfg = AuthConfig{Mode: "token"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is empty")
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	assert.Error(t, cfg.Validate())
}

func TestConfig_RejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"mode":        func(c *Config) { c.App.Mode = "staging" },
		"port":        func(c *Config) { c.App.HTTP.Port = 70000 },
		"content dir": func(c *Config) { c.Content.Dir = "" },
		"artifacts":   func(c *Config) { c.Artifacts.Dir = "" },
		"engine":      func(c *Config) { c.Render.Engine = "pandoc" },
		"driver":      func(c *Config) { c.Store.Driver = "redis" },
		"store path":  func(c *Config) { c.Store.Path = "" },
		"limits":      func(c *Config) { c.Limits.Note = 0 },
		"auth":        func(c *Config) { c.Auth.Mode = "token" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_LoadYAMLWithEnv(t *testing.T) {
	t.Setenv("HANGAR_TEST_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  log_level: debug
  mode: dev
  http:
    port: 9090
content:
  dir: ./training
render:
  engine: goldmark
store:
  driver: file
  path: ./state
auth:
  mode: token
  token: ${HANGAR_TEST_TOKEN}
`), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))

	assert.True(t, cfg.App.DevMode())
	assert.Equal(t, 9090, cfg.App.HTTP.Port)
	assert.Equal(t, "./training", cfg.Content.Dir)
	assert.Equal(t, "./dist/content", cfg.Artifacts.Dir, "unset keys keep defaults")
	assert.Equal(t, "goldmark", cfg.Render.Engine)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "from-env", cfg.Auth.Token)
	assert.Equal(t, "DEBUG", cfg.App.LogLevel.String())
	assert.Equal(t, 5000, cfg.Limits.Note)
}
