package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty data dir":     func(c *Config) { c.Paths.DataDir = " " },
		"same dirs":          func(c *Config) { c.Paths.WorkspaceDir = "./data" },
		"bad addr":           func(c *Config) { c.Viewer.HTTPAddr = "8080" },
		"bad generator url":  func(c *Config) { c.Generator.URL = "ftp://x" },
		"zero timeout":       func(c *Config) { c.Generator.TimeoutSeconds = 0 },
		"auth without id":    func(c *Config) { c.Auth.Enabled = true },
		"unknown log level":  func(c *Config) { c.Log.Level = "chatty" },
		"auth without redir": func(c *Config) {
			c.Auth = Auth{Enabled: true, ClientID: "x", AuthURL: "https://id/a", TokenURL: "https://id/t", UserInfoURL: "https://id/u"}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRedirectURL(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.RedirectURL())
	cfg.Viewer.BaseURL = "https://seed.example.com/"
	assert.Equal(t, "https://seed.example.com/auth/callback", cfg.RedirectURL())
	cfg.Auth.RedirectURL = "https://other/cb"
	assert.Equal(t, "https://other/cb", cfg.RedirectURL())
}

func TestEnsureCreatesThenLoads(t *testing.T) {
	p := filepath.Join(t.TempDir(), "codeseed.json")

	cfg, created, err := Ensure(p)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, Default().Viewer.HTTPAddr, cfg.Viewer.HTTPAddr)

	cfg.Preview.Minify = true
	require.NoError(t, Save(p, cfg))

	again, created, err := Ensure(p)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, again.Preview.Minify)
}

func TestLoadPartialKeepsDefaultsAndStripsBOM(t *testing.T) {
	p := filepath.Join(t.TempDir(), "codeseed.json")
	body := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"generator":{"url":"http://gen:9000"}}`)...)
	require.NoError(t, os.WriteFile(p, body, 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "http://gen:9000", cfg.Generator.URL)
	assert.Equal(t, "/generate-site", cfg.Generator.Path)
	assert.Equal(t, 120, cfg.Generator.TimeoutSeconds)
}

func TestYAMLRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "codeseed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
viewer:
  http_addr: 0.0.0.0:9090
preview:
  allow_same_origin: true
log:
  level: debug
`), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Viewer.HTTPAddr)
	assert.True(t, cfg.Preview.AllowSameOrigin)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "data", cfg.Paths.DataDir)

	out := filepath.Join(t.TempDir(), "saved.yml")
	require.NoError(t, Save(out, cfg))
	back, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLoadInvalidFails(t *testing.T) {
	p := filepath.Join(t.TempDir(), "codeseed.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"log":{"level":"loud"}}`), 0o644))
	_, err := Load(p)
	assert.Error(t, err)

	cfg, err := LoadPartial(p)
	require.NoError(t, err)
	assert.Equal(t, "loud", cfg.Log.Level)
}
