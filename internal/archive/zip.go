// Package archive converts project files to and from ZIP archives.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/petervdpas/codeseed/internal/workspace"
)

// MaxFileSize is the per-entry limit enforced by Extract.
const MaxFileSize = 10 << 20

// FileName is the download name of a project archive.
func FileName(projectID string) string {
	return fmt.Sprintf("codeseed-%s.zip", projectID)
}

// Write packs files into a ZIP stream. Every path becomes one entry whose name
// is the path and whose body is the content. When a path repeats, the first
// occurrence is written and the rest are skipped. It returns the number of
// entries written.
func Write(w io.Writer, files []workspace.Entry) (int, error) {
	zw := zip.NewWriter(w)
	seen := make(map[string]bool, len(files))
	now := time.Now()
	n := 0
	for _, f := range files {
		name := strings.TrimLeft(strings.ReplaceAll(f.Path, `\`, "/"), "/")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: now})
		if err != nil {
			return n, fmt.Errorf("zip %q: %w", name, err)
		}
		if _, err := io.WriteString(fw, f.Content); err != nil {
			return n, fmt.Errorf("zip %q: %w", name, err)
		}
		n++
	}
	if err := zw.Close(); err != nil {
		return n, err
	}
	return n, nil
}

// Bytes is Write into memory.
func Bytes(files []workspace.Entry) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Write(&buf, files); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extract reads a ZIP archive into entries sorted by path. Paths containing
// ".." are skipped, entries over MaxFileSize fail the whole archive, and a
// wrapper directory shared by every entry is stripped.
func Extract(data []byte) ([]workspace.Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}

	prefix := wrapperPrefix(zr.File)

	var out []workspace.Entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		name := strings.TrimPrefix(f.Name, prefix)
		if name == "" || strings.Contains(name, "..") {
			continue
		}

		if f.UncompressedSize64 > MaxFileSize {
			return nil, fmt.Errorf("file %q exceeds 10MB limit", name)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", name, err)
		}
		content, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", name, err)
		}
		if len(content) > MaxFileSize {
			return nil, fmt.Errorf("file %q exceeds 10MB limit", name)
		}
		out = append(out, workspace.Entry{Path: name, Content: string(content)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// wrapperPrefix returns "dir/" when every file entry lives under the same
// top-level directory, otherwise "".
func wrapperPrefix(files []*zip.File) string {
	prefix := ""
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		top, _, ok := strings.Cut(f.Name, "/")
		if !ok {
			return ""
		}
		if prefix == "" {
			prefix = top + "/"
		} else if prefix != top+"/" {
			return ""
		}
	}
	return prefix
}
