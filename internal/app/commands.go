package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/petervdpas/codeseed/internal/archive"
	"github.com/petervdpas/codeseed/internal/content"
	"github.com/petervdpas/codeseed/internal/util"
	"github.com/petervdpas/codeseed/internal/watch"
)

// Export writes project as a ZIP archive to out, or to the default archive
// name in the working directory when out is empty. It returns the path
// written and the number of files.
func Export(ctx context.Context, opt Options, project, out string) (string, int, error) {
	project, err := util.ValidateProjectID(project)
	if err != nil {
		return "", 0, err
	}
	s, err := open(opt)
	if err != nil {
		return "", 0, err
	}
	defer s.Close()

	files, err := s.remote.LoadEntries(ctx, project)
	if err != nil {
		return "", 0, err
	}
	if out == "" {
		out = archive.FileName(project)
	}
	f, err := os.Create(out)
	if err != nil {
		return "", 0, err
	}
	n, err := s.remote.ExportProject(f, files)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out)
		return "", 0, err
	}
	return out, n, nil
}

// Checkout writes the files of project into dir, creating it when needed.
func Checkout(ctx context.Context, opt Options, project, dir string) (int, error) {
	project, err := util.ValidateProjectID(project)
	if err != nil {
		return 0, err
	}
	if dir == "" {
		dir = util.ResolvePath(opt.Dir, opt.Cfg.Paths.WorkspaceDir)
	}
	s, err := open(opt)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	files, err := s.remote.LoadEntries(ctx, project)
	if err != nil {
		return 0, err
	}
	store, err := content.NewStore(dir)
	if err != nil {
		return 0, err
	}
	if err := store.EnsureRoot(); err != nil {
		return 0, err
	}
	return store.WriteAll(ctx, files)
}

// Generate sends prompt to the generation backend and stores returned files
// as a new project. The project id is empty when the backend only returned a
// preview URL.
func Generate(ctx context.Context, opt Options, prompt string) (projectID, previewURL string, err error) {
	s, err := open(opt)
	if err != nil {
		return "", "", err
	}
	defer s.Close()

	res, err := s.remote.GenerateCode(ctx, prompt)
	if err != nil {
		return "", "", err
	}
	if len(res.Files) == 0 {
		return res.ProjectID, res.PreviewURL, nil
	}
	id, err := s.remote.CreateProject(ctx, res.Files)
	if err != nil {
		return "", "", err
	}
	log.Infof("generated project %s (%d files)", id, len(res.Files))
	return id, res.PreviewURL, nil
}

// Watch imports dir into project (a new one when project is empty), keeps
// the records in step with later edits and serves the viewer so open
// previews update live. It blocks until ctx is done.
func Watch(ctx context.Context, opt Options, project, dir string) error {
	if project == "" {
		project = uuid.NewString()
	}
	project, err := util.ValidateProjectID(project)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = util.ResolvePath(opt.Dir, opt.Cfg.Paths.WorkspaceDir)
	}

	logs := setupLogging(opt.Cfg.Log.Level)
	s, err := open(opt)
	if err != nil {
		return err
	}
	defer s.Close()

	store, err := content.NewStore(dir)
	if err != nil {
		return err
	}
	w, err := watch.New(store, s.remote, project, func(path string) {
		s.push(ctx, project, path)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	n, err := w.ImportAll(ctx)
	if err != nil {
		return err
	}
	_, url := NormalizeLocalViewer(s.cfg.Viewer.HTTPAddr)
	log.Infof("watching %s as project %s (%d files)", store.Root(), project, n)
	log.Infof("live preview: %s/preview/frame?project=%s", url, project)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- s.serve(ctx, logs, opt.Open) }()
	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	select {
	case err = <-serveErr:
		cancel()
		<-runErr
		if err != nil {
			return fmt.Errorf("viewer: %w", err)
		}
		return nil
	case err = <-runErr:
		cancel()
		if serr := <-serveErr; serr != nil {
			return fmt.Errorf("viewer: %w", serr)
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
