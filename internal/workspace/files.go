package workspace

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// Entry is a file addressed by its slash-separated path. It is the flat
// form of the tree: what the record store persists and what the preview
// composer and the archive writer consume.
type Entry struct {
	Path    string
	Content string
}

// Name is the last path segment.
func (e Entry) Name() string { return path.Base(e.Path) }

func (e Entry) Language() Language { return LanguageFor(e.Path) }

// Files flattens the tree into entries in depth-first order.
func Files(tree []Node) []Entry {
	var out []Entry
	_ = Walk(tree, func(p []string, n Node) error {
		if !n.IsFolder() {
			out = append(out, Entry{Path: strings.Join(p, "/"), Content: n.Content})
		}
		return nil
	})
	return out
}

// FromFiles builds a tree from flat entries, creating intermediate folders on
// demand. Top-level folders start open, nested folders start closed. When two
// entries claim the same path the first one wins, including a file and a
// folder of the same name: "docs" followed by "docs/a.css" keeps the file and
// skips a.css, the reverse order keeps the folder and skips the file.
func FromFiles(entries []Entry) []Node {
	var tree []Node
	for _, e := range entries {
		parts := splitPath(e.Path)
		if len(parts) == 0 {
			continue
		}
		if next, ok := placeFile(tree, parts, e.Content); ok {
			tree = next
		}
	}
	return tree
}

// placeFile creates the missing folders along parts and adds the file. ok is
// false, with tree untouched, when any prefix is already a file or the full
// path is already taken.
func placeFile(tree []Node, parts []string, content string) ([]Node, bool) {
	if _, taken := Lookup(tree, parts); taken {
		return tree, false
	}
	out := tree
	for depth := 1; depth < len(parts); depth++ {
		dir := parts[:depth]
		if n, ok := Lookup(out, dir); ok {
			if !n.IsFolder() {
				return tree, false
			}
			continue
		}
		var err error
		if out, err = InsertNode(out, dir[:depth-1], Folder(dir[depth-1], depth == 1)); err != nil {
			return tree, false
		}
	}
	out, err := InsertNode(out, parts[:len(parts)-1], File(parts[len(parts)-1], content))
	if err != nil {
		return tree, false
	}
	return out, true
}

func splitPath(p string) []string {
	p = strings.ReplaceAll(p, `\`, "/")
	var parts []string
	for _, s := range strings.Split(p, "/") {
		s = strings.TrimSpace(s)
		if s == "" || s == "." || s == ".." {
			continue
		}
		parts = append(parts, s)
	}
	return parts
}

// NewFileNode returns a file with starter content chosen by extension.
func NewFileNode(name string) Node {
	return File(name, starterContent(name))
}

func starterContent(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".css":
		return "/* New CSS file */"
	case ".js":
		return "// New JavaScript file"
	case ".html":
		return "<!DOCTYPE html>\n<html>\n<head>\n<title>New Page</title>\n</head>\n<body>\n</body>\n</html>"
	case ".md":
		return "# New Markdown File"
	}
	return "// New file"
}

// ParseGenerated decodes a tree produced by the generation backend: a JSON
// array of folder/file objects. Top-level folders are opened so the result
// is browsable right away.
func ParseGenerated(data []byte) ([]Node, error) {
	var tree []Node
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("workspace: decode generated tree: %w", err)
	}
	for i := range tree {
		if tree[i].IsFolder() {
			tree[i].IsOpen = true
		}
	}
	return tree, nil
}
