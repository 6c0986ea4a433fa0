// Package content mirrors project files into a directory on disk. Every path
// is resolved inside the store root; traversal and symlink escapes are
// refused.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/petervdpas/codeseed/internal/workspace"
)

var (
	ErrOutsideRoot = errors.New("path outside root")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
)

// tempPrefix marks in-flight atomic writes. It starts with a dot so Files
// and the watcher never see them.
const tempPrefix = ".codeseed-"

// IfAbsent as the ifMatch of Write requires that the file does not exist.
const IfAbsent = "none"

type Store struct {
	root string // absolute, symlinks resolved
}

func NewStore(dir string) (*Store, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string { return s.root }

func (s *Store) EnsureRoot() error { return os.MkdirAll(s.root, 0o755) }

// ETag identifies file content.
func ETag(b []byte) string {
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Read returns the content of rel and its etag.
func (s *Store) Read(ctx context.Context, rel string) ([]byte, string, error) {
	abs, err := s.resolve(rel)
	if err != nil {
		return nil, "", err
	}
	b, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return b, ETag(b), nil
}

// Write replaces rel atomically and returns the new etag. A non-empty ifMatch
// must equal the current etag, or be IfAbsent for a file that must not exist
// yet. Writing over a directory, or below a path component that is a file, is
// a conflict.
func (s *Store) Write(ctx context.Context, rel string, data []byte, ifMatch string) (string, error) {
	abs, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if abs == s.root {
		return "", ErrConflict
	}
	if ifMatch != "" {
		if err := s.checkPrecondition(ctx, rel, ifMatch); err != nil {
			return "", err
		}
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() {
		return "", ErrConflict
	}
	if err := s.ensureDir(filepath.Dir(abs)); err != nil {
		return "", err
	}
	if err := s.replace(abs, data); err != nil {
		return "", err
	}
	return ETag(data), nil
}

func (s *Store) checkPrecondition(ctx context.Context, rel, ifMatch string) error {
	_, cur, err := s.Read(ctx, rel)
	if errors.Is(err, ErrNotFound) {
		if ifMatch == IfAbsent {
			return nil
		}
		return ErrConflict
	}
	if err != nil {
		return err
	}
	if cur != ifMatch {
		return ErrConflict
	}
	return nil
}

// replace writes data to a temp file next to abs and renames it into place.
func (s *Store) replace(abs string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(abs), tempPrefix+"*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	// A parent may have been created through a symlink after resolve ran.
	if real, rerr := filepath.EvalSymlinks(tmp); rerr == nil && !s.contains(real) {
		return ErrOutsideRoot
	}
	return os.Rename(tmp, abs)
}

func (s *Store) Delete(ctx context.Context, rel string) error {
	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	err = os.Remove(abs)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// WriteAll writes every entry and returns how many were written. It stops at
// the first failure.
func (s *Store) WriteAll(ctx context.Context, entries []workspace.Entry) (int, error) {
	if err := s.EnsureRoot(); err != nil {
		return 0, err
	}
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := s.Write(ctx, e.Path, []byte(e.Content), ""); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

// Files reads every regular file under the root as entries, sorted by path.
// Hidden files and directories are skipped.
func (s *Store) Files(ctx context.Context) ([]workspace.Entry, error) {
	if _, err := os.Stat(s.root); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var out []workspace.Entry
	walk := func(p string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case p == s.root:
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case strings.HasPrefix(d.Name(), "."):
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		case !d.Type().IsRegular():
			return nil
		}
		rel, err := s.Rel(p)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, workspace.Entry{Path: rel, Content: string(b)})
		return nil
	}
	if err := filepath.WalkDir(s.root, walk); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Rel converts an absolute path under the root into a root-relative,
// slash-separated path.
func (s *Store) Rel(abs string) (string, error) {
	abs = filepath.Clean(abs)
	if abs == s.root || !s.contains(abs) {
		return "", ErrOutsideRoot
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Ignored reports whether rel names a hidden file, something inside a hidden
// directory, or an in-flight temp file.
func Ignored(rel string) bool {
	for _, seg := range strings.Split(cleanRel(rel), "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func (s *Store) contains(p string) bool {
	return p == s.root || strings.HasPrefix(p, s.root+string(filepath.Separator))
}

// resolve maps rel to an absolute path inside the root. Existing paths are
// followed through symlinks and must still land inside.
func (s *Store) resolve(rel string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(cleanRel(rel)))
	if !s.contains(abs) {
		return "", ErrOutsideRoot
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil && !s.contains(real) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

// ensureDir creates dir one component at a time and fails with ErrConflict
// when a component exists as a file.
func (s *Store) ensureDir(dir string) error {
	if !s.contains(dir) {
		return ErrOutsideRoot
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	rel, err := filepath.Rel(s.root, dir)
	if err != nil || rel == "." {
		return err
	}
	cur := s.root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		st, err := os.Stat(cur)
		if err == nil {
			if !st.IsDir() {
				return ErrConflict
			}
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.Mkdir(cur, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return err
		}
	}
	return nil
}

// cleanRel turns user input into a clean slash path with no leading slash.
// Leading ".." survives so resolve can refuse it; the root itself is "".
func cleanRel(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	p = path.Clean(strings.TrimLeft(p, "/"))
	if p == "." {
		return ""
	}
	return p
}
