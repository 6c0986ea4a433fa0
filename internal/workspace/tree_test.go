package workspace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petervdpas/codeseed/internal/errs"
)

func sampleTree() []Node {
	return []Node{
		Folder("frontend", true,
			File("index.html", "<h1>hi</h1>"),
			Folder("css", false, File("style.css", "body{}")),
			Folder("js", false, File("main.js", "console.log(1)")),
		),
		Folder("backend", false, File("server.js", "listen()")),
		File("README.md", "# readme"),
	}
}

func TestToggleFolderTwiceRestoresState(t *testing.T) {
	paths := [][]string{
		{"frontend"},
		{"frontend", "css"},
		{"frontend", "js"},
		{"backend"},
	}
	for _, p := range paths {
		tree := sampleTree()
		before, ok := Lookup(tree, p)
		require.True(t, ok)

		once := ToggleFolder(tree, p)
		got, _ := Lookup(once, p)
		assert.Equal(t, !before.IsOpen, got.IsOpen, "path %v", p)

		twice := ToggleFolder(once, p)
		assert.Equal(t, tree, twice, "path %v", p)
		assert.Equal(t, Files(tree), Files(once), "contents must not change for %v", p)
	}
}

func TestToggleFolderDoesNotMutateInput(t *testing.T) {
	tree := sampleTree()
	_ = ToggleFolder(tree, []string{"frontend", "css"})
	assert.Equal(t, sampleTree(), tree)
}

func TestToggleFolderMissIsNoop(t *testing.T) {
	tree := sampleTree()
	for _, p := range [][]string{nil, {"nope"}, {"frontend", "nope"}, {"README.md"}, {"frontend", "index.html"}} {
		assert.Equal(t, tree, ToggleFolder(tree, p), "path %v", p)
	}
}

func TestInsertNodeAddsExactlyOne(t *testing.T) {
	cases := []struct {
		name string
		path []string
	}{
		{"root", nil},
		{"top folder", []string{"frontend"}},
		{"nested folder", []string{"frontend", "css"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := sampleTree()
			out, err := InsertNode(tree, tc.path, File("new.css", "a{}"))
			require.NoError(t, err)
			assert.Equal(t, Count(tree)+1, Count(out))

			// every pre-existing path still resolves to an identical node,
			// except the target folder whose children grew
			_ = Walk(tree, func(p []string, n Node) error {
				got, ok := Lookup(out, p)
				require.True(t, ok, "path %v vanished", p)
				if n.IsFolder() && equalPath(p, tc.path) {
					assert.Equal(t, len(n.Children)+1, len(got.Children))
					assert.Equal(t, n.Children, got.Children[:len(n.Children)])
					return nil
				}
				if n.IsFolder() && isPrefix(p, tc.path) {
					assert.Equal(t, n.IsOpen, got.IsOpen)
					return nil
				}
				assert.Equal(t, n, got, "path %v changed", p)
				return nil
			})

			added, ok := Lookup(out, append(append([]string{}, tc.path...), "new.css"))
			require.True(t, ok)
			assert.Equal(t, LangCSS, added.Language)
			assert.Equal(t, sampleTree(), tree, "input mutated")
		})
	}
}

func TestInsertNodeRejectsCollision(t *testing.T) {
	tree := sampleTree()
	out, err := InsertNode(tree, []string{"frontend"}, File("index.html", "x"))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Equal(t, tree, out)

	_, err = InsertNode(tree, nil, Folder("backend", false))
	assert.True(t, errs.IsValidation(err))
}

func TestInsertNodeRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", "  ", "..", "a/b", `a\b`} {
		_, err := InsertNode(nil, nil, File(name, ""))
		assert.True(t, errs.IsValidation(err), "name %q", name)
	}
}

func TestInsertNodeMissIsNoop(t *testing.T) {
	tree := sampleTree()
	out, err := InsertNode(tree, []string{"missing"}, File("x.js", ""))
	require.NoError(t, err)
	assert.Equal(t, tree, out)
}

func TestUpdateContentFirstMatchDepthFirst(t *testing.T) {
	tree := []Node{
		Folder("a", true, File("dup.js", "1")),
		File("dup.js", "2"),
	}
	out, found := UpdateContent(tree, "dup.js", "changed")
	require.True(t, found)
	f, _ := Lookup(out, []string{"a", "dup.js"})
	assert.Equal(t, "changed", f.Content)
	root, _ := Lookup(out, []string{"dup.js"})
	assert.Equal(t, "2", root.Content)
	assert.Equal(t, "1", tree[0].Children[0].Content)

	same, found := UpdateContent(tree, "missing", "x")
	assert.False(t, found)
	assert.Equal(t, tree, same)
}

func TestRemoveNode(t *testing.T) {
	tree := sampleTree()
	out, ok := RemoveNode(tree, []string{"frontend", "css"})
	require.True(t, ok)
	assert.Equal(t, Count(tree)-2, Count(out))
	_, still := Lookup(out, []string{"frontend", "css"})
	assert.False(t, still)

	same, ok := RemoveNode(tree, []string{"frontend", "nope"})
	assert.False(t, ok)
	assert.Equal(t, tree, same)
}

func TestFilesAndFromFilesRoundTrip(t *testing.T) {
	entries := []Entry{
		{Path: "index.html", Content: "<html></html>"},
		{Path: "css/style.css", Content: "a{}"},
		{Path: "css/deep/more.css", Content: "b{}"},
		{Path: "js/app.js", Content: "run()"},
		{Path: "css/style.css", Content: "ignored duplicate"},
	}
	tree := FromFiles(entries)

	css, ok := Lookup(tree, []string{"css"})
	require.True(t, ok)
	assert.True(t, css.IsOpen)
	deep, ok := Lookup(tree, []string{"css", "deep"})
	require.True(t, ok)
	assert.False(t, deep.IsOpen)

	assert.Equal(t, []Entry{
		{Path: "index.html", Content: "<html></html>"},
		{Path: "css/style.css", Content: "a{}"},
		{Path: "css/deep/more.css", Content: "b{}"},
		{Path: "js/app.js", Content: "run()"},
	}, Files(tree))

	// A file and a folder of the same name: the first entry wins either way.
	tree = FromFiles([]Entry{
		{Path: "docs", Content: "plain"},
		{Path: "docs/a.css", Content: "a{}"},
		{Path: "lib/b.js", Content: "b()"},
		{Path: "lib", Content: "shadow"},
	})
	docs, ok := Lookup(tree, []string{"docs"})
	require.True(t, ok)
	assert.False(t, docs.IsFolder())
	lib, ok := Lookup(tree, []string{"lib"})
	require.True(t, ok)
	assert.True(t, lib.IsFolder())
	assert.Equal(t, []Entry{
		{Path: "docs", Content: "plain"},
		{Path: "lib/b.js", Content: "b()"},
	}, Files(tree))
}

func TestLanguageFor(t *testing.T) {
	cases := map[string]Language{
		"index.html": LangHTML,
		"A.HTM":      LangHTML,
		"style.css":  LangCSS,
		"app.js":     LangJS,
		"x.jsx":      LangJS,
		"data.json":  LangJSON,
		"README.md":  LangMarkdown,
		"logo.svg":   LangSVG,
		"Makefile":   LangPlaintext,
		"main.go":    LangPlaintext,
	}
	for name, want := range cases {
		assert.Equal(t, want, LanguageFor(name), name)
	}
}

func TestNewFileNodeStarterContent(t *testing.T) {
	assert.Equal(t, "/* New CSS file */", NewFileNode("a.css").Content)
	assert.Equal(t, "// New JavaScript file", NewFileNode("a.js").Content)
	assert.Contains(t, NewFileNode("a.html").Content, "<title>New Page</title>")
	assert.Equal(t, "# New Markdown File", NewFileNode("a.md").Content)
	assert.Equal(t, "// New file", NewFileNode("a.txt").Content)
}

func TestParseGenerated(t *testing.T) {
	raw := `[{"type":"folder","name":"site","children":[
		{"type":"file","name":"index.html","content":"<p>x</p>"},
		{"type":"folder","name":"js","isOpen":false,"children":[
			{"type":"file","name":"app.cjs","content":"1","language":"javascript"}
		]}
	]}]`
	tree, err := ParseGenerated([]byte(raw))
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.True(t, tree[0].IsOpen)

	js, ok := Lookup(tree, []string{"site", "js"})
	require.True(t, ok)
	assert.False(t, js.IsOpen)

	app, ok := FindFile(tree, "app.cjs")
	require.True(t, ok)
	assert.Equal(t, LangJS, app.Language)

	_, err = ParseGenerated([]byte(`{"type":"file"}`))
	assert.Error(t, err)
}

func TestNodeJSONRoundTrip(t *testing.T) {
	tree := sampleTree()
	b, err := json.Marshal(tree)
	require.NoError(t, err)

	var back []Node
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, tree, back)
}

func equalPath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isPrefix(prefix, p []string) bool {
	return len(prefix) < len(p) && equalPath(prefix, p[:len(prefix)])
}

func TestFindPath(t *testing.T) {
	tree := sampleTree()
	p, ok := FindPath(tree, "style.css")
	require.True(t, ok)
	assert.Equal(t, "frontend/css/style.css", p)

	p, ok = FindPath(tree, "README.md")
	require.True(t, ok)
	assert.Equal(t, "README.md", p)

	_, ok = FindPath(tree, "css")
	assert.False(t, ok, "folders are not files")
}
