package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/workspace"
)

func TestCompose_SplicesStylesAndScripts(t *testing.T) {
	files := []workspace.Entry{
		{Path: "index.html", Content: "<head></head><body></body>"},
		{Path: "style.css", Content: "a{color:red}"},
		{Path: "app.js", Content: "console.log(1)"},
	}
	got := Compose(files[0].Content, files)
	assert.Equal(t, "<head><style>a{color:red}</style></head><body><script>console.log(1)</script></body>", got)
}

func TestCompose_Idempotent(t *testing.T) {
	files := []workspace.Entry{
		{Path: "index.html", Content: "<html><head><title>x</title></head><body><h1>x</h1></body></html>"},
		{Path: "css/a.css", Content: "h1{margin:0}"},
		{Path: "css/b.css", Content: "body{color:#333}"},
		{Path: "js/main.js", Content: "let n = 1"},
	}
	a := Compose(files[0].Content, files)
	b := Compose(files[0].Content, files)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "<style>h1{margin:0}</style>\n<style>body{color:#333}</style></head>")
}

func TestCompose_MissingTagsDropInjection(t *testing.T) {
	files := []workspace.Entry{
		{Path: "a.css", Content: "p{}"},
		{Path: "a.js", Content: "x()"},
	}
	assert.Equal(t, "<p>bare</p>", Compose("<p>bare</p>", files))
	assert.Equal(t, "<head></head>", Compose("<head></head>", files[1:]))
}

func TestCompose_OnlyFirstClosingTag(t *testing.T) {
	got := Compose("<head></head><head></head>", []workspace.Entry{{Path: "a.css", Content: "p{}"}})
	assert.Equal(t, "<head><style>p{}</style></head><head></head>", got)
}

func TestSelectRoot(t *testing.T) {
	t.Run("index wins regardless of case and order", func(t *testing.T) {
		root, ok := SelectRoot([]workspace.Entry{
			{Path: "about.html"},
			{Path: "pages/INDEX.HTML"},
		})
		require.True(t, ok)
		assert.Equal(t, "pages/INDEX.HTML", root.Path)
	})
	t.Run("first html otherwise", func(t *testing.T) {
		root, ok := SelectRoot([]workspace.Entry{
			{Path: "style.css"},
			{Path: "b.html"},
			{Path: "a.html"},
		})
		require.True(t, ok)
		assert.Equal(t, "b.html", root.Path)
	})
	t.Run("no html", func(t *testing.T) {
		_, ok := SelectRoot([]workspace.Entry{{Path: "style.css"}})
		assert.False(t, ok)
	})
}

func TestComposeProject_ExplicitRoot(t *testing.T) {
	files := []workspace.Entry{
		{Path: "index.html", Content: "<head></head>index"},
		{Path: "about.html", Content: "<head></head>about"},
		{Path: "a.css", Content: "p{}"},
	}
	doc, root, ok := ComposeProject(files, "about.html")
	require.True(t, ok)
	assert.Equal(t, "about.html", root.Path)
	assert.Equal(t, "<head><style>p{}</style></head>about", doc)

	_, _, ok = ComposeProject(files, "a.css")
	assert.False(t, ok)
	_, _, ok = ComposeProject(files, "missing.html")
	assert.False(t, ok)
}

func TestAffects(t *testing.T) {
	assert.True(t, Affects("about.html", "about.html"))
	assert.True(t, Affects("x.css", "index.html"))
	assert.True(t, Affects("lib/x.js", "index.html"))
	assert.False(t, Affects("readme.md", "index.html"))
	assert.False(t, Affects("other.html", "index.html"))
	assert.True(t, Affects("other.html", ""))
	assert.True(t, Affects("sub/Index.html", "about.html"))
}

func TestComposer_Render(t *testing.T) {
	files := []workspace.Entry{
		{Path: "index.html", Content: "<html><head></head><body><p>hi</p></body></html>"},
		{Path: "a.css", Content: "a {  color : red ; }"},
	}

	plain := NewComposer(Options{})
	doc, root, err := plain.Render(files, "")
	require.NoError(t, err)
	assert.Equal(t, "index.html", root.Path)
	assert.Contains(t, doc, "<style>a {  color : red ; }</style>")
	assert.Equal(t, "allow-scripts", plain.Sandbox())

	small := NewComposer(Options{Minify: true, AllowSameOrigin: true})
	min, _, err := small.Render(files, "")
	require.NoError(t, err)
	assert.Contains(t, min, "a{color:red}")
	assert.Less(t, len(min), len(doc))
	assert.Equal(t, "allow-scripts allow-same-origin", small.Sandbox())

	_, _, err = plain.Render([]workspace.Entry{{Path: "a.css"}}, "")
	assert.True(t, errs.IsNotFound(err))
}

func TestFrame_EscapesDocument(t *testing.T) {
	out, err := Frame(FrameData{Title: "demo", Doc: `<p class="x">hi</p>`, LiveURL: "/preview/live?project=p1"})
	require.NoError(t, err)
	assert.Contains(t, out, `sandbox="allow-scripts"`)
	assert.Contains(t, out, "&lt;p class=&#34;x&#34;&gt;hi&lt;/p&gt;")
	assert.NotContains(t, out, `<p class="x">`)
	assert.Contains(t, out, "new WebSocket(")

	quiet, err := Frame(FrameData{Doc: "x"})
	require.NoError(t, err)
	assert.False(t, strings.Contains(quiet, "WebSocket"))
}

func TestSourceView(t *testing.T) {
	out, err := SourceView(workspace.Entry{Path: "README.md", Content: "# Title\n\n- [x] done"})
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, `type="checkbox"`)

	out, err = SourceView(workspace.Entry{Path: "index.html", Content: "<b>x</b>"})
	require.NoError(t, err)
	assert.Equal(t, `<pre class="source" data-language="html">&lt;b&gt;x&lt;/b&gt;</pre>`, out)
}
