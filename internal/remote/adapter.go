// Package remote is the boundary between the editor model and the record
// store and generation backend it syncs with.
package remote

import (
	"context"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petervdpas/codeseed/internal/archive"
	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/generator"
	"github.com/petervdpas/codeseed/internal/storage"
	"github.com/petervdpas/codeseed/internal/workspace"
)

// Store is the record store surface the adapter needs. *storage.DB
// implements it.
type Store interface {
	Insert(r storage.Record) (storage.Record, error)
	InsertAll(records []storage.Record) ([]storage.Record, error)
	ProjectFiles(projectID string) ([]storage.Record, error)
	Heads() ([]storage.Record, error)
	SaveContent(projectID, filename, content string) (storage.Record, error)
	DeleteFile(projectID, filename string) (int64, error)
	DeleteProject(projectID string) (int64, error)
}

// Generator produces files from a prompt. *generator.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (generator.Result, error)
}

// ProjectSummary is one gallery entry.
type ProjectSummary struct {
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Adapter struct {
	store Store
	gen   Generator
}

func New(store Store, gen Generator) *Adapter {
	return &Adapter{store: store, gen: gen}
}

// LoadProject returns every record of a project, newest first. A project
// without records is a NotFoundError.
func (a *Adapter) LoadProject(ctx context.Context, projectID string) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs, err := a.store.ProjectFiles(projectID)
	if err != nil {
		return nil, &errs.TransportError{Op: "load project", Message: "Failed to load project.", Err: err}
	}
	if len(recs) == 0 {
		return nil, errs.NotFound("project", projectID)
	}
	return recs, nil
}

// LoadEntries is LoadProject reduced to one entry per filename (the newest
// record wins), in newest-first order.
func (a *Adapter) LoadEntries(ctx context.Context, projectID string) ([]workspace.Entry, error) {
	recs, err := a.LoadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return Entries(recs), nil
}

// Entries converts records to entries, keeping the first record per filename.
func Entries(recs []storage.Record) []workspace.Entry {
	seen := make(map[string]bool, len(recs))
	out := make([]workspace.Entry, 0, len(recs))
	for _, r := range recs {
		if seen[r.Filename] {
			continue
		}
		seen[r.Filename] = true
		out = append(out, workspace.Entry{Path: r.Filename, Content: r.Content})
	}
	return out
}

// ListProjects returns each distinct project id once, in the order first seen
// over the newest-first record listing.
func (a *Adapter) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	heads, err := a.store.Heads()
	if err != nil {
		return nil, &errs.TransportError{Op: "list projects", Message: "Failed to load projects.", Err: err}
	}
	return DistinctProjects(heads), nil
}

// DistinctProjects dedupes records by project id keeping first-seen order.
func DistinctProjects(recs []storage.Record) []ProjectSummary {
	seen := make(map[string]bool)
	out := make([]ProjectSummary, 0)
	for _, r := range recs {
		if seen[r.ProjectID] {
			continue
		}
		seen[r.ProjectID] = true
		out = append(out, ProjectSummary{ProjectID: r.ProjectID, CreatedAt: r.CreatedAt})
	}
	return out
}

// GenerateCode asks the backend for files. Empty prompts are rejected before
// any request goes out.
func (a *Adapter) GenerateCode(ctx context.Context, prompt string) (generator.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return generator.Result{}, errs.Invalid("prompt", "must not be empty")
	}
	if a.gen == nil {
		return generator.Result{}, &errs.TransportError{Op: "generate", Message: "No generation backend configured."}
	}
	return a.gen.Generate(ctx, prompt)
}

// CreateProject stores files under a fresh project id, in filename order.
func (a *Adapter) CreateProject(ctx context.Context, files map[string]string) (string, error) {
	if len(files) == 0 {
		return "", errs.Invalid("files", "a project needs at least one file")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	projectID := uuid.NewString()
	recs := make([]storage.Record, 0, len(names))
	for _, name := range names {
		recs = append(recs, storage.Record{ProjectID: projectID, Filename: name, Content: files[name]})
	}
	if _, err := a.store.InsertAll(recs); err != nil {
		return "", &errs.TransportError{Op: "create project", Message: "Failed to save project.", Err: err}
	}
	return projectID, nil
}

// SaveFile persists the content of one file. Concurrent saves to the same
// file are last-write-wins.
func (a *Adapter) SaveFile(ctx context.Context, projectID, filename, content string) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if err := workspace.ValidateName(workspace.Entry{Path: filename}.Name()); err != nil {
		return storage.Record{}, err
	}
	if slices.Contains(strings.FieldsFunc(filename, isPathSep), "..") {
		return storage.Record{}, errs.Invalid("filename", "must not contain a '..' segment")
	}
	r, err := a.store.SaveContent(projectID, filename, content)
	if err != nil {
		if errs.IsValidation(err) {
			return storage.Record{}, err
		}
		return storage.Record{}, &errs.TransportError{Op: "save file", Message: "Failed to save file.", Err: err}
	}
	return r, nil
}

// DeleteFile removes every record of filename. Deleting a missing file is a
// NotFoundError.
func (a *Adapter) DeleteFile(ctx context.Context, projectID, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := a.store.DeleteFile(projectID, filename)
	if err != nil {
		return &errs.TransportError{Op: "delete file", Message: "Failed to delete file.", Err: err}
	}
	if n == 0 {
		return errs.NotFound("file", filename)
	}
	return nil
}

// DeleteProject removes every record of a project and reports how many went.
func (a *Adapter) DeleteProject(ctx context.Context, projectID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := a.store.DeleteProject(projectID)
	if err != nil {
		return 0, &errs.TransportError{Op: "delete project", Message: "Failed to delete project.", Err: err}
	}
	if n == 0 {
		return 0, errs.NotFound("project", projectID)
	}
	return n, nil
}

// ExportProject writes files as a ZIP archive. It never touches the network.
func (a *Adapter) ExportProject(w io.Writer, files []workspace.Entry) (int, error) {
	return archive.Write(w, files)
}

// ImportArchive stores the files of a ZIP archive as a new project.
func (a *Adapter) ImportArchive(ctx context.Context, data []byte) (string, int, error) {
	entries, err := archive.Extract(data)
	if err != nil {
		return "", 0, errs.Invalid("archive", err.Error())
	}
	if len(entries) == 0 {
		return "", 0, errs.Invalid("archive", "no files")
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		files[e.Path] = e.Content
	}
	id, err := a.CreateProject(ctx, files)
	if err != nil {
		return "", 0, err
	}
	return id, len(files), nil
}

func isPathSep(r rune) bool { return r == '/' || r == '\\' }
