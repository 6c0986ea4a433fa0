// Package preview turns a project's files into one renderable HTML document
// and serves it to sandboxed iframes.
package preview

import (
	"strings"

	"github.com/petervdpas/codeseed/internal/workspace"
)

// SelectRoot picks the composition root among files: a file named
// index.html (any case) if present, otherwise the first HTML file.
func SelectRoot(files []workspace.Entry) (workspace.Entry, bool) {
	first := -1
	for i, f := range files {
		if f.Language() != workspace.LangHTML {
			continue
		}
		if strings.EqualFold(f.Name(), "index.html") {
			return f, true
		}
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return workspace.Entry{}, false
	}
	return files[first], true
}

// Compose splices every CSS file (as <style>) before the first </head> of
// html and every JS file (as <script>) before the first </body>. The
// substitution is textual: without a </head> the CSS is dropped, without a
// </body> the JS is dropped. Files keep their input order.
func Compose(html string, files []workspace.Entry) string {
	var styles, scripts []string
	for _, f := range files {
		switch f.Language() {
		case workspace.LangCSS:
			styles = append(styles, "<style>"+f.Content+"</style>")
		case workspace.LangJS:
			scripts = append(scripts, "<script>"+f.Content+"</script>")
		}
	}
	if len(styles) > 0 {
		html = strings.Replace(html, "</head>", strings.Join(styles, "\n")+"</head>", 1)
	}
	if len(scripts) > 0 {
		html = strings.Replace(html, "</body>", strings.Join(scripts, "\n")+"</body>", 1)
	}
	return html
}

// ComposeProject composes the document for the selected root. An empty
// rootPath falls back to SelectRoot. ok is false when no usable HTML root
// exists.
func ComposeProject(files []workspace.Entry, rootPath string) (doc string, root workspace.Entry, ok bool) {
	if rootPath != "" {
		for _, f := range files {
			if f.Path == rootPath && f.Language() == workspace.LangHTML {
				root, ok = f, true
				break
			}
		}
	} else {
		root, ok = SelectRoot(files)
	}
	if !ok {
		return "", workspace.Entry{}, false
	}
	return Compose(root.Content, files), root, true
}

// Affects reports whether a change to path can alter the composed document
// whose root is rootPath.
func Affects(path, rootPath string) bool {
	if path == rootPath {
		return true
	}
	switch workspace.LanguageFor(path) {
	case workspace.LangCSS, workspace.LangJS:
		return true
	case workspace.LangHTML:
		return rootPath == "" || strings.EqualFold(workspace.Entry{Path: path}.Name(), "index.html")
	}
	return false
}
