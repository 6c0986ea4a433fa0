package editor

import (
	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/preview"
	"github.com/petervdpas/codeseed/internal/workspace"
)

// FlatView is the simple project viewer: a flat file list, one selected
// file shown in the source pane, and one HTML file used as preview root.
type FlatView struct {
	files    []workspace.Entry
	selected string
	html     string
}

// NewFlatView selects the preview root (index.html wins, case-insensitive,
// otherwise the first HTML file) and shows it in the source pane.
func NewFlatView(files []workspace.Entry) *FlatView {
	v := &FlatView{files: files}
	if root, ok := preview.SelectRoot(files); ok {
		v.html = root.Path
		v.selected = root.Path
	}
	return v
}

func (v *FlatView) Files() []workspace.Entry { return v.files }

// Select shows path in the source pane. Selecting an HTML file also makes it
// the preview root.
func (v *FlatView) Select(path string) error {
	if _, ok := v.lookup(path); !ok {
		return errs.NotFound("file", path)
	}
	v.selected = path
	if workspace.LanguageFor(path) == workspace.LangHTML {
		v.html = path
	}
	return nil
}

func (v *FlatView) Selected() (workspace.Entry, bool) { return v.lookup(v.selected) }

// PreviewRoot returns the HTML file the preview is composed from.
func (v *FlatView) PreviewRoot() (workspace.Entry, bool) { return v.lookup(v.html) }

func (v *FlatView) lookup(path string) (workspace.Entry, bool) {
	if path == "" {
		return workspace.Entry{}, false
	}
	for _, f := range v.files {
		if f.Path == path {
			return f, true
		}
	}
	return workspace.Entry{}, false
}
