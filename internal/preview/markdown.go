package preview

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/petervdpas/codeseed/internal/workspace"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(highlighting.WithStyle("monokai")),
	),
)

// RenderMarkdown converts markdown to an HTML fragment. Raw HTML in the
// source is omitted.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SourceView renders one file for the read-only source pane: markdown as
// HTML, everything else escaped inside a <pre> tagged with its language.
func SourceView(f workspace.Entry) (string, error) {
	if f.Language() == workspace.LangMarkdown {
		return RenderMarkdown(f.Content)
	}
	return `<pre class="source" data-language="` + string(f.Language()) + `">` +
		html.EscapeString(f.Content) + "</pre>", nil
}
