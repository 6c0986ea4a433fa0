package editor

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/workspace"
)

func projectTree() []workspace.Node {
	return []workspace.Node{
		workspace.Folder("site", true,
			workspace.File("index.html", "<h1>hi</h1>"),
			workspace.File("style.css", "body{}"),
		),
		workspace.File("app.js", "run()"),
	}
}

func TestSession_OpenSetsActiveAndDedupesTabs(t *testing.T) {
	s := NewSession(projectTree())
	require.NoError(t, s.Open("index.html"))
	require.NoError(t, s.Open("app.js"))
	require.NoError(t, s.Open("index.html"))

	assert.Equal(t, []string{"index.html", "app.js"}, s.Tabs())
	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "index.html", active)

	err := s.Open("nope.css")
	assert.True(t, errs.IsNotFound(err))
}

func TestSession_ReopenKeepsUnsavedBuffer(t *testing.T) {
	s := NewSession(projectTree())
	require.NoError(t, s.Open("style.css"))
	require.NoError(t, s.Edit("style.css", "body{margin:0}"))
	require.NoError(t, s.Open("app.js"))
	require.NoError(t, s.Open("style.css"))

	got, ok := s.ActiveContent()
	require.True(t, ok)
	assert.Equal(t, "body{margin:0}", got)
	assert.True(t, s.Dirty("style.css"))
	assert.False(t, s.Dirty("app.js"))
}

func TestSession_CloseTab(t *testing.T) {
	s := NewSession(projectTree())
	for _, n := range []string{"index.html", "style.css", "app.js"} {
		require.NoError(t, s.Open(n))
	}

	assert.True(t, s.CloseTab("app.js"))
	active, _ := s.Active()
	assert.Equal(t, "index.html", active)

	assert.True(t, s.CloseTab("style.css"))
	active, _ = s.Active()
	assert.Equal(t, "index.html", active, "closing an inactive tab keeps focus")

	assert.False(t, s.CloseTab("style.css"))
	assert.True(t, s.CloseTab("index.html"))
	_, ok := s.Active()
	assert.False(t, ok)
	assert.Empty(t, s.Tabs())
	_, ok = s.ActiveContent()
	assert.False(t, ok)
}

func TestSession_EditRequiresOpenTab(t *testing.T) {
	s := NewSession(projectTree())
	err := s.Edit("app.js", "x")
	assert.True(t, errs.IsValidation(err))
}

func TestSession_SaveCommitsIntoTree(t *testing.T) {
	tree := projectTree()
	s := NewSession(tree)
	require.NoError(t, s.Open("style.css"))
	require.NoError(t, s.Edit("style.css", "p{}"))

	f, err := s.Save("style.css")
	require.NoError(t, err)
	assert.Equal(t, "p{}", f.Content)
	assert.False(t, s.Dirty("style.css"))

	saved, _ := workspace.FindFile(s.Tree(), "style.css")
	assert.Equal(t, "p{}", saved.Content)
	orig, _ := workspace.FindFile(tree, "style.css")
	assert.Equal(t, "body{}", orig.Content)

	_, err = s.Save("app.js")
	assert.True(t, errs.IsValidation(err))
}

func TestSession_InsertOpensFolder(t *testing.T) {
	s := NewSession([]workspace.Node{workspace.Folder("css", false)})
	ok, err := s.Insert([]string{"css"}, workspace.NewFileNode("extra.css"))
	require.NoError(t, err)
	assert.True(t, ok)

	css, ok := workspace.Lookup(s.Tree(), []string{"css"})
	require.True(t, ok)
	assert.True(t, css.IsOpen)
	require.Len(t, css.Children, 1)
	assert.Equal(t, "/* New CSS file */", css.Children[0].Content)

	_, err = s.Insert([]string{"css"}, workspace.File("extra.css", ""))
	assert.True(t, errs.IsValidation(err))
}

func TestSession_InsertIntoMissingFolderIsNoop(t *testing.T) {
	s := NewSession([]workspace.Node{workspace.Folder("css", false), workspace.File("index.html", "")})
	before := s.Tree()

	for _, p := range [][]string{{"nope"}, {"index.html"}, {"css", "deeper"}} {
		ok, err := s.Insert(p, workspace.NewFileNode("ghost.css"))
		require.NoError(t, err)
		assert.False(t, ok, "path %v", p)
	}
	assert.Equal(t, before, s.Tree())
}

func TestSession_RemoveClosesVanishedTabs(t *testing.T) {
	s := NewSession(projectTree())
	require.NoError(t, s.Open("index.html"))
	require.NoError(t, s.Open("app.js"))
	require.NoError(t, s.Edit("index.html", "changed"))

	assert.True(t, s.Remove([]string{"site"}))
	assert.Equal(t, []string{"app.js"}, s.Tabs())
	active, _ := s.Active()
	assert.Equal(t, "app.js", active)
	assert.False(t, s.Remove([]string{"site"}))

	st := s.State()
	require.Len(t, st.Tabs, 1)
	assert.Equal(t, workspace.LangJS, st.Tabs[0].Language)
	assert.Len(t, s.Files(), 1)
}

func TestSession_Toggle(t *testing.T) {
	s := NewSession(projectTree())
	s.Toggle([]string{"site"})
	site, _ := workspace.Lookup(s.Tree(), []string{"site"})
	assert.False(t, site.IsOpen)
}

func TestFlatView(t *testing.T) {
	v := NewFlatView([]workspace.Entry{
		{Path: "about.html", Content: "a"},
		{Path: "Index.html", Content: "i"},
		{Path: "style.css", Content: "c"},
	})
	root, ok := v.PreviewRoot()
	require.True(t, ok)
	assert.Equal(t, "Index.html", root.Path)

	require.NoError(t, v.Select("style.css"))
	sel, _ := v.Selected()
	assert.Equal(t, "style.css", sel.Path)
	root, _ = v.PreviewRoot()
	assert.Equal(t, "Index.html", root.Path)

	require.NoError(t, v.Select("about.html"))
	root, _ = v.PreviewRoot()
	assert.Equal(t, "about.html", root.Path)

	assert.True(t, errs.IsNotFound(v.Select("missing.js")))

	empty := NewFlatView(nil)
	_, ok = empty.PreviewRoot()
	assert.False(t, ok)
}

func TestSessions_LoadOnceAndSerialize(t *testing.T) {
	r := NewSessions()
	loads := 0
	load := func() (*Session, error) {
		loads++
		return NewSession(projectTree()), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Do("u1/p1", load, func(s *Session) error {
				return s.Open("app.js")
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loads)
	assert.Equal(t, 1, r.Len())
	require.NoError(t, r.Do("u1/p1", load, func(s *Session) error {
		assert.Equal(t, []string{"app.js"}, s.Tabs())
		return nil
	}))
}

func TestSessions_FailedLoadLeavesNothing(t *testing.T) {
	r := NewSessions()
	boom := errors.New("boom")
	err := r.Do("k", func() (*Session, error) { return nil, boom }, func(*Session) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, r.Len())
}

func TestSessions_DropPrefix(t *testing.T) {
	r := NewSessions()
	load := func() (*Session, error) { return NewSession(nil), nil }
	noop := func(*Session) error { return nil }
	for _, k := range []string{"u1/a", "u1/b", "u2/a"} {
		require.NoError(t, r.Do(k, load, noop))
	}
	assert.Equal(t, 2, r.DropPrefix("u1/"))
	r.Drop("u2/a")
	assert.Equal(t, 0, r.Len())
}

func TestSessions_DropFunc(t *testing.T) {
	r := NewSessions()
	load := func() (*Session, error) { return NewSession(nil), nil }
	noop := func(*Session) error { return nil }
	for _, k := range []string{"u1/a", "u2/a", "u2/b"} {
		require.NoError(t, r.Do(k, load, noop))
	}
	assert.Equal(t, 2, r.DropFunc(func(k string) bool { return strings.HasSuffix(k, "/a") }))
	assert.Equal(t, 1, r.Len())
}
