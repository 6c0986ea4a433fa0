package viewmodels

import (
	"time"

	"github.com/petervdpas/codeseed/internal/remote"
	"github.com/petervdpas/codeseed/internal/sitetemplates"
)

type ProjectRow struct {
	ID        string
	CreatedAt time.Time
}

type GalleryVM struct {
	BaseVM
	Projects  []ProjectRow
	Templates []sitetemplates.TemplateMeta
}

// BuildProjectRows keeps the newest-first order of the listing.
func BuildProjectRows(list []remote.ProjectSummary) []ProjectRow {
	rows := make([]ProjectRow, 0, len(list))
	for _, p := range list {
		rows = append(rows, ProjectRow{ID: p.ProjectID, CreatedAt: p.CreatedAt})
	}
	return rows
}
