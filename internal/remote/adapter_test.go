package remote

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petervdpas/codeseed/internal/archive"
	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/generator"
	"github.com/petervdpas/codeseed/internal/storage"
	"github.com/petervdpas/codeseed/internal/workspace"
)

type fakeGen struct {
	calls  int
	result generator.Result
	err    error
}

func (g *fakeGen) Generate(ctx context.Context, prompt string) (generator.Result, error) {
	g.calls++
	return g.result, g.err
}

func newAdapter(t *testing.T, gen Generator) (*Adapter, *storage.DB) {
	t.Helper()
	db, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, gen), db
}

func TestListProjects_DistinctFirstSeen(t *testing.T) {
	a, db := newAdapter(t, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []string{"A", "A", "B"} {
		_, err := db.Insert(storage.Record{ProjectID: p, Filename: "index.html", CreatedAt: base.Add(time.Duration(i+1) * time.Second)})
		require.NoError(t, err)
	}

	got, err := a.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].ProjectID)
	assert.Equal(t, "A", got[1].ProjectID)
	assert.True(t, got[1].CreatedAt.Equal(base.Add(2*time.Second)))
}

func TestDistinctProjects(t *testing.T) {
	got := DistinctProjects([]storage.Record{
		{ProjectID: "A"}, {ProjectID: "A"}, {ProjectID: "B"},
	})
	assert.Equal(t, []ProjectSummary{{ProjectID: "A"}, {ProjectID: "B"}}, got)
	assert.Empty(t, DistinctProjects(nil))
}

func TestLoadProject(t *testing.T) {
	a, db := newAdapter(t, nil)
	ctx := context.Background()

	_, err := a.LoadProject(ctx, "nope")
	assert.True(t, errs.IsNotFound(err))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = db.Insert(storage.Record{ProjectID: "p", Filename: "a.css", Content: "old", CreatedAt: base})
	require.NoError(t, err)
	_, err = db.Insert(storage.Record{ProjectID: "p", Filename: "a.css", Content: "new", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = db.Insert(storage.Record{ProjectID: "p", Filename: "index.html", Content: "i", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	recs, err := a.LoadProject(ctx, "p")
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	entries, err := a.LoadEntries(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []workspace.Entry{
		{Path: "a.css", Content: "new"},
		{Path: "index.html", Content: "i"},
	}, entries)
}

func TestLoadProject_CancelledContext(t *testing.T) {
	a, _ := newAdapter(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.LoadProject(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateCode(t *testing.T) {
	gen := &fakeGen{result: generator.Result{Files: map[string]string{"index.html": "x"}}}
	a, _ := newAdapter(t, gen)

	_, err := a.GenerateCode(context.Background(), " \n ")
	assert.True(t, errs.IsValidation(err))
	assert.Equal(t, 0, gen.calls)

	res, err := a.GenerateCode(context.Background(), "a portfolio")
	require.NoError(t, err)
	assert.Equal(t, "x", res.Files["index.html"])

	gen.err = &errs.TransportError{Op: "generate", Message: "down"}
	_, err = a.GenerateCode(context.Background(), "again")
	assert.EqualError(t, err, "down")

	none, _ := newAdapter(t, nil)
	_, err = none.GenerateCode(context.Background(), "x")
	assert.True(t, errs.IsTransport(err))
}

func TestCreateProjectAndSaveFile(t *testing.T) {
	a, _ := newAdapter(t, nil)
	ctx := context.Background()

	_, err := a.CreateProject(ctx, nil)
	assert.True(t, errs.IsValidation(err))

	id, err := a.CreateProject(ctx, map[string]string{"index.html": "<p>", "style.css": "p{}"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = a.SaveFile(ctx, id, "style.css", "p{color:red}")
	require.NoError(t, err)
	_, err = a.SaveFile(ctx, id, "js/app.js", "go()")
	require.NoError(t, err)

	entries, err := a.LoadEntries(ctx, id)
	require.NoError(t, err)
	byPath := map[string]string{}
	for _, e := range entries {
		byPath[e.Path] = e.Content
	}
	assert.Equal(t, map[string]string{
		"index.html": "<p>",
		"style.css":  "p{color:red}",
		"js/app.js":  "go()",
	}, byPath)

	_, err = a.SaveFile(ctx, id, "../evil.js", "x")
	assert.True(t, errs.IsValidation(err))
	_, err = a.SaveFile(ctx, id, "", "x")
	assert.True(t, errs.IsValidation(err))
}

func TestSaveFile_DotDotSegments(t *testing.T) {
	a, _ := newAdapter(t, nil)
	ctx := context.Background()
	id, err := a.CreateProject(ctx, map[string]string{"index.html": "<p>"})
	require.NoError(t, err)

	for _, ok := range []string{"jquery..min.js", "js/a..b.js", "notes...txt"} {
		_, err := a.SaveFile(ctx, id, ok, "x")
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"../x.js", "js/../x.js", `js\..\x.js`, ".."} {
		_, err := a.SaveFile(ctx, id, bad, "x")
		assert.True(t, errs.IsValidation(err), bad)
	}
}

func TestDeleteFile(t *testing.T) {
	a, _ := newAdapter(t, nil)
	ctx := context.Background()
	id, err := a.CreateProject(ctx, map[string]string{"a.html": "x", "b.css": "y"})
	require.NoError(t, err)

	require.NoError(t, a.DeleteFile(ctx, id, "b.css"))
	assert.True(t, errs.IsNotFound(a.DeleteFile(ctx, id, "b.css")))
}

func TestDeleteProject(t *testing.T) {
	a, _ := newAdapter(t, nil)
	ctx := context.Background()
	id, err := a.CreateProject(ctx, map[string]string{"a.html": "x", "b.css": "y"})
	require.NoError(t, err)

	n, err := a.DeleteProject(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = a.LoadProject(ctx, id)
	assert.True(t, errs.IsNotFound(err))
	_, err = a.DeleteProject(ctx, id)
	assert.True(t, errs.IsNotFound(err))
}

func TestExportProject_TwoEntries(t *testing.T) {
	a, _ := newAdapter(t, nil)
	var buf bytes.Buffer
	n, err := a.ExportProject(&buf, []workspace.Entry{
		{Path: "a.html", Content: "x"},
		{Path: "b.css", Content: "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, _ := io.ReadAll(rc)
		rc.Close()
		got[f.Name] = string(b)
	}
	assert.Equal(t, map[string]string{"a.html": "x", "b.css": "y"}, got)
}

func TestImportArchive(t *testing.T) {
	a, _ := newAdapter(t, nil)
	ctx := context.Background()

	data, err := archive.Bytes([]workspace.Entry{
		{Path: "index.html", Content: "<p>"},
		{Path: "css/site.css", Content: "p{}"},
	})
	require.NoError(t, err)

	id, n, err := a.ImportArchive(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := a.LoadEntries(ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, _, err = a.ImportArchive(ctx, []byte("junk"))
	assert.True(t, errs.IsValidation(err))
}

type brokenStore struct{ Store }

func (brokenStore) Heads() ([]storage.Record, error) { return nil, errors.New("disk on fire") }

func TestListProjects_StoreFailureIsTransport(t *testing.T) {
	a := New(brokenStore{}, nil)
	_, err := a.ListProjects(context.Background())
	require.True(t, errs.IsTransport(err))
	assert.Equal(t, "Failed to load projects.", err.Error())
	assert.ErrorContains(t, errors.Unwrap(err), "disk on fire")
}
