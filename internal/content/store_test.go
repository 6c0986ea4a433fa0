package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petervdpas/codeseed/internal/workspace"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestWriteReadDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	etag, err := s.Write(ctx, "css/site.css", []byte("p{}"), "")
	require.NoError(t, err)

	b, got, err := s.Read(ctx, "css/site.css")
	require.NoError(t, err)
	assert.Equal(t, "p{}", string(b))
	assert.Equal(t, etag, got)

	require.NoError(t, s.Delete(ctx, "css/site.css"))
	_, _, err = s.Read(ctx, "css/site.css")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "css/site.css"), ErrNotFound)
}

func TestWriteIfMatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	etag, err := s.Write(ctx, "a.html", []byte("1"), IfAbsent)
	require.NoError(t, err)
	_, err = s.Write(ctx, "a.html", []byte("2"), IfAbsent)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.Write(ctx, "a.html", []byte("2"), "sha256:stale")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.Write(ctx, "a.html", []byte("2"), etag)
	require.NoError(t, err)
}

func TestRejectsEscapes(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Write(ctx, "../outside.txt", []byte("x"), "")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(s.Root(), "link")))
	_, err = s.Write(ctx, "link/x.txt", []byte("x"), "")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestFileDirCollisions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Write(ctx, "a", []byte("file"), "")
	require.NoError(t, err)
	_, err = s.Write(ctx, "a/b.txt", []byte("x"), "")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.Write(ctx, "dir/x.txt", []byte("x"), "")
	require.NoError(t, err)
	_, err = s.Write(ctx, "dir", []byte("x"), "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestWriteAllAndFiles(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(filepath.Join(t.TempDir(), "mirror"))
	require.NoError(t, err)

	n, err := s.WriteAll(ctx, []workspace.Entry{
		{Path: "index.html", Content: "<p>"},
		{Path: "js/app.js", Content: "go()"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), ".git", "HEAD"), []byte("x"), 0o644))

	files, err := s.Files(ctx)
	require.NoError(t, err)
	assert.Equal(t, []workspace.Entry{
		{Path: "index.html", Content: "<p>"},
		{Path: "js/app.js", Content: "go()"},
	}, files)
}

func TestFilesMissingRoot(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	_, err = s.Files(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelAndIgnored(t *testing.T) {
	s := newStore(t)
	rel, err := s.Rel(filepath.Join(s.Root(), "css", "a.css"))
	require.NoError(t, err)
	assert.Equal(t, "css/a.css", rel)

	_, err = s.Rel(filepath.Dir(s.Root()))
	assert.ErrorIs(t, err, ErrOutsideRoot)

	assert.True(t, Ignored(".git/HEAD"))
	assert.True(t, Ignored("css/.codeseed-123"))
	assert.False(t, Ignored("css/a.css"))
}
