package preview

import (
	"regexp"

	logging "github.com/ipfs/go-log/v2"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/workspace"
)

var log = logging.Logger("codeseed/preview")

type Options struct {
	// AllowSameOrigin adds allow-same-origin to the iframe sandbox, which
	// gives the preview DOM access for debugging at the cost of isolation.
	AllowSameOrigin bool
	// Minify runs the composed document through an HTML/CSS/JS minifier.
	Minify bool
}

// Composer applies Options on top of Compose. It is safe for concurrent use.
type Composer struct {
	opts Options
	m    *minify.M
}

func NewComposer(opts Options) *Composer {
	c := &Composer{opts: opts}
	if opts.Minify {
		m := minify.New()
		m.AddFunc("text/html", html.Minify)
		m.AddFunc("text/css", css.Minify)
		m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
		c.m = m
	}
	return c
}

func (c *Composer) Options() Options { return c.opts }

// Sandbox returns the iframe sandbox tokens.
func (c *Composer) Sandbox() string {
	if c.opts.AllowSameOrigin {
		return "allow-scripts allow-same-origin"
	}
	return "allow-scripts"
}

// Render composes the project document. A minifier failure falls back to the
// unminified document.
func (c *Composer) Render(files []workspace.Entry, rootPath string) (string, workspace.Entry, error) {
	doc, root, ok := ComposeProject(files, rootPath)
	if !ok {
		return "", workspace.Entry{}, errs.NotFound("html file", rootPath)
	}
	if c.m == nil {
		return doc, root, nil
	}
	out, err := c.m.String("text/html", doc)
	if err != nil {
		log.Warnf("minify %s: %v (serving original)", root.Path, err)
		return doc, root, nil
	}
	return out, root, nil
}
