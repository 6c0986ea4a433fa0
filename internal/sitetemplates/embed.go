// Package sitetemplates holds the starter projects a new project can be
// created from.
package sitetemplates

import (
	"embed"
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/petervdpas/codeseed/internal/errs"
)

//go:embed all:blank all:darkmode
var templateFS embed.FS

// TemplateMeta holds template metadata from manifest.json
type TemplateMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`
	Dir         string `json:"dir"` // directory name (e.g. "blank")
}

// List returns metadata for all available templates, by directory name.
func List() ([]TemplateMeta, error) {
	entries, err := templateFS.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var out []TemplateMeta
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := readManifest(e.Name())
		if err != nil {
			continue // skip broken templates
		}
		m.Dir = e.Name()
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dir < out[j].Dir })
	return out, nil
}

// SiteFiles returns every file of a template except its manifest, keyed by
// slash-separated relative path. An unknown template is a NotFoundError.
func SiteFiles(dir string) (map[string]string, error) {
	if _, err := readManifest(dir); err != nil {
		return nil, errs.NotFound("template", dir)
	}
	out := make(map[string]string)
	err := fs.WalkDir(templateFS, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		base := strings.TrimPrefix(p, dir+"/")
		if base == "manifest.json" {
			return nil
		}
		data, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		out[base] = string(data)
		return nil
	})
	return out, err
}

func readManifest(dir string) (TemplateMeta, error) {
	var m TemplateMeta
	if dir == "" || strings.ContainsAny(dir, `/\.`) {
		return m, fs.ErrNotExist
	}
	b, err := templateFS.ReadFile(path.Join(dir, "manifest.json"))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	m.Dir = dir
	return m, err
}
