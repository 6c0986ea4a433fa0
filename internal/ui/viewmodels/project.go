package viewmodels

import (
	"net/url"

	"github.com/petervdpas/codeseed/internal/editor"
	"github.com/petervdpas/codeseed/internal/workspace"
)

type FileRow struct {
	Path     string
	Language workspace.Language
	Selected bool
}

type ProjectVM struct {
	BaseVM
	ProjectID  string
	Files      []FileRow
	SourceURL  string
	FrameURL   string
	HasPreview bool
}

func sourceURL(projectID, path string) string {
	return "/source?project=" + url.QueryEscape(projectID) + "&file=" + url.QueryEscape(path)
}

// BuildProjectVM lays out the flat viewer: the selected file feeds the source
// pane and the preview root feeds the frame.
func BuildProjectVM(base BaseVM, projectID string, v *editor.FlatView) ProjectVM {
	files := v.Files()
	vm := ProjectVM{
		BaseVM:    base,
		ProjectID: projectID,
		Files:     make([]FileRow, 0, len(files)),
		FrameURL:  "/preview/frame?project=" + url.QueryEscape(projectID),
	}
	sel, hasSel := v.Selected()
	for _, f := range files {
		vm.Files = append(vm.Files, FileRow{
			Path:     f.Path,
			Language: f.Language(),
			Selected: hasSel && f.Path == sel.Path,
		})
	}
	if hasSel {
		vm.SourceURL = sourceURL(projectID, sel.Path)
	}
	if root, ok := v.PreviewRoot(); ok {
		vm.HasPreview = true
		vm.FrameURL += "&html=" + url.QueryEscape(root.Path)
	}
	return vm
}
