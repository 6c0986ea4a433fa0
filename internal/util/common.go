package util

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	DefaultStartupTimeout  = 5 * time.Second
	DefaultGenerateTimeout = 120 * time.Second
)

// ResolvePath resolves rel against base; an absolute rel wins.
func ResolvePath(base, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(base, rel)
}

// NormalizeURL trims whitespace and trailing slashes and defaults the scheme
// to http.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if !strings.Contains(u, "://") {
		u = "http://" + u
	}
	return strings.TrimRight(u, "/")
}

// ValidateProjectID trims a project id and rejects values that cannot be used
// as a file or archive name.
func ValidateProjectID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("project id is empty")
	}
	if strings.ContainsAny(id, `/\ `) || strings.Contains(id, "..") {
		return "", errors.New("project id must not contain spaces, slashes or '..'")
	}
	return id, nil
}

// WriteJSONFile writes v as indented JSON, creating parent directories. The
// file is replaced through a rename.
func WriteJSONFile(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, append(b, '\n'))
}

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

var browserCmd = map[string][]string{
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"darwin":  {"open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// OpenURL opens url in the default browser without waiting for it.
func OpenURL(url string) error {
	argv, ok := browserCmd[runtime.GOOS]
	if !ok {
		return errors.New("no browser launcher for " + runtime.GOOS)
	}
	return exec.Command(argv[0], append(argv[1:], url)...).Start()
}
