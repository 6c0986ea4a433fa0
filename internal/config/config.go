package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/petervdpas/codeseed/internal/util"
)

type Config struct {
	Paths     Paths     `json:"paths" yaml:"paths"`
	Viewer    Viewer    `json:"viewer" yaml:"viewer"`
	Generator Generator `json:"generator" yaml:"generator"`
	Auth      Auth      `json:"auth" yaml:"auth"`
	Preview   Preview   `json:"preview" yaml:"preview"`
	Log       Log       `json:"log" yaml:"log"`
}

type Paths struct {
	// SQLite database directory, relative to the config file's directory.
	DataDir string `json:"data_dir" yaml:"data_dir"`
	// Default checkout/watch directory for project mirrors.
	WorkspaceDir string `json:"workspace_dir" yaml:"workspace_dir"`
}

type Viewer struct {
	HTTPAddr string `json:"http_addr" yaml:"http_addr"`
	Debug    bool   `json:"debug" yaml:"debug"`
	// Public URL of the viewer, used to build the OAuth redirect when
	// auth.redirect_url is empty.
	BaseURL string `json:"base_url" yaml:"base_url"`
}

type Generator struct {
	URL            string `json:"url" yaml:"url"`
	Path           string `json:"path" yaml:"path"`
	Token          string `json:"token" yaml:"token"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

type Auth struct {
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	ClientID     string   `json:"client_id" yaml:"client_id"`
	ClientSecret string   `json:"client_secret" yaml:"client_secret"`
	AuthURL      string   `json:"auth_url" yaml:"auth_url"`
	TokenURL     string   `json:"token_url" yaml:"token_url"`
	UserInfoURL  string   `json:"userinfo_url" yaml:"userinfo_url"`
	RedirectURL  string   `json:"redirect_url" yaml:"redirect_url"`
	Scopes       []string `json:"scopes" yaml:"scopes"`
}

type Preview struct {
	AllowSameOrigin bool `json:"allow_same_origin" yaml:"allow_same_origin"`
	Minify          bool `json:"minify" yaml:"minify"`
}

type Log struct {
	Level string `json:"level" yaml:"level"`
}

func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      "data",
			WorkspaceDir: "workspace",
		},
		Viewer: Viewer{
			HTTPAddr: "127.0.0.1:8080",
		},
		Generator: Generator{
			URL:            "http://localhost:5000",
			Path:           "/generate-site",
			TimeoutSeconds: 120,
		},
		Auth: Auth{
			Scopes: []string{"openid", "email", "profile"},
		},
		Log: Log{
			Level: "info",
		},
	}
}

var logLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
	"dpanic": true, "panic": true, "fatal": true,
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir is required")
	}
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		return errors.New("paths.workspace_dir is required")
	}
	if filepath.Clean(c.Paths.DataDir) == filepath.Clean(c.Paths.WorkspaceDir) {
		return errors.New("paths.data_dir and paths.workspace_dir must differ")
	}

	if a := strings.TrimSpace(c.Viewer.HTTPAddr); a != "" {
		if _, _, err := net.SplitHostPort(a); err != nil {
			return fmt.Errorf("viewer.http_addr: %w", err)
		}
	}
	if b := strings.TrimSpace(c.Viewer.BaseURL); b != "" {
		if err := validateHTTPURL(b); err != nil {
			return fmt.Errorf("viewer.base_url: %w", err)
		}
	}

	if g := strings.TrimSpace(c.Generator.URL); g != "" {
		if err := validateHTTPURL(g); err != nil {
			return fmt.Errorf("generator.url: %w", err)
		}
	}
	if c.Generator.TimeoutSeconds < 1 || c.Generator.TimeoutSeconds > 3600 {
		return errors.New("generator.timeout_seconds must be 1..3600")
	}

	if c.Auth.Enabled {
		if strings.TrimSpace(c.Auth.ClientID) == "" {
			return errors.New("auth.client_id is required when auth is enabled")
		}
		for name, v := range map[string]string{
			"auth.auth_url":     c.Auth.AuthURL,
			"auth.token_url":    c.Auth.TokenURL,
			"auth.userinfo_url": c.Auth.UserInfoURL,
		} {
			if err := validateHTTPURL(v); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		if c.Auth.RedirectURL == "" && c.Viewer.BaseURL == "" {
			return errors.New("auth.redirect_url or viewer.base_url is required when auth is enabled")
		}
	}

	if !logLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level %q is not a known level", c.Log.Level)
	}
	return nil
}

// RedirectURL returns auth.redirect_url, or the callback route under
// viewer.base_url.
func (c *Config) RedirectURL() string {
	if c.Auth.RedirectURL != "" {
		return c.Auth.RedirectURL
	}
	if c.Viewer.BaseURL == "" {
		return ""
	}
	return util.NormalizeURL(c.Viewer.BaseURL) + "/auth/callback"
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decode(path string, b []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(b, cfg)
	}
	return json.Unmarshal(b, cfg)
}

func Load(path string) (Config, error) {
	cfg, err := LoadPartial(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadPartial reads a config file without validation. Missing fields keep
// their defaults.
func LoadPartial(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	// Strip UTF-8 BOM if present (common when editing on Windows).
	b = stripBOM(b)

	cfg := Default()
	if err := decode(path, b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// stripBOM removes a UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

// Save validates cfg and writes it as JSON, or YAML for .yaml/.yml paths.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !isYAML(path) {
		return util.WriteJSONFile(path, cfg)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, b)
}

// Ensure loads config if it exists; otherwise creates a default config file.
// Returns (cfg, createdNew, err).
func Ensure(path string) (Config, bool, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := Load(path)
		return cfg, false, err
	} else if !os.IsNotExist(err) {
		return Config{}, false, err
	}

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		return Config{}, false, fmt.Errorf("create default config: %w", err)
	}
	return cfg, true, nil
}
