// Package app wires the codeseed services together for the command line.
package app

import (
	"context"
	"fmt"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/codeseed/internal/auth"
	"github.com/petervdpas/codeseed/internal/config"
	"github.com/petervdpas/codeseed/internal/editor"
	"github.com/petervdpas/codeseed/internal/generator"
	"github.com/petervdpas/codeseed/internal/preview"
	"github.com/petervdpas/codeseed/internal/remote"
	"github.com/petervdpas/codeseed/internal/storage"
	"github.com/petervdpas/codeseed/internal/util"
	"github.com/petervdpas/codeseed/internal/viewer"
)

var log = logging.Logger("codeseed/app")

type Options struct {
	// Dir anchors relative paths in Cfg; usually the config file's folder.
	Dir     string
	CfgPath string
	Cfg     config.Config

	// Open launches the browser once the viewer is reachable.
	Open bool
}

// services are the long-lived parts shared by every command.
type services struct {
	cfg      config.Config
	db       *storage.DB
	gen      *generator.Client
	remote   *remote.Adapter
	composer *preview.Composer
	hub      *preview.Hub
	auth     *auth.Provider
}

func open(opt Options) (*services, error) {
	cfg := opt.Cfg
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := storage.Open(util.ResolvePath(opt.Dir, cfg.Paths.DataDir))
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Generator.TimeoutSeconds) * time.Second
	gen := generator.New(cfg.Generator.URL, cfg.Generator.Path, cfg.Generator.Token, timeout)

	s := &services{
		cfg:      cfg,
		db:       db,
		gen:      gen,
		remote:   remote.New(db, gen),
		composer: preview.NewComposer(preview.Options{AllowSameOrigin: cfg.Preview.AllowSameOrigin, Minify: cfg.Preview.Minify}),
		hub:      preview.NewHub(),
	}
	if cfg.Auth.Enabled {
		s.auth = auth.NewProvider(auth.Config{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			AuthURL:      cfg.Auth.AuthURL,
			TokenURL:     cfg.Auth.TokenURL,
			UserInfoURL:  cfg.Auth.UserInfoURL,
			RedirectURL:  cfg.RedirectURL(),
			Scopes:       cfg.Auth.Scopes,
		})
	}
	return s, nil
}

func (s *services) Close() error {
	return s.db.Close()
}

// push recomposes project for live subscribers after a file changed.
func (s *services) push(ctx context.Context, project, changed string) {
	if s.hub.Subscribers(project) == 0 {
		return
	}
	files, err := s.remote.LoadEntries(ctx, project)
	if err != nil {
		log.Debugf("live preview %s: %v", project, err)
		return
	}
	if _, err := s.hub.Push(s.composer, project, files, changed); err != nil {
		log.Debugf("live preview %s: %v", project, err)
	}
}

// serve runs the HTTP viewer until ctx is done.
func (s *services) serve(ctx context.Context, logs *viewer.LogBuffer, openBrowser bool) error {
	listen, url := NormalizeLocalViewer(s.cfg.Viewer.HTTPAddr)
	base := s.cfg.Viewer.BaseURL
	if base == "" {
		base = url
	}
	v := viewer.Viewer{
		Remote:   s.remote,
		Sessions: editor.NewSessions(),
		Composer: s.composer,
		Hub:      s.hub,
		Auth:     s.auth,
		Logs:     logs,
		BaseURL:  util.NormalizeURL(base),
		Debug:    s.cfg.Viewer.Debug,
	}

	if openBrowser {
		go func() {
			if err := WaitTCP(listen, util.DefaultStartupTimeout); err != nil {
				log.Warnf("open browser: %v", err)
				return
			}
			if err := util.OpenURL(url); err != nil {
				log.Warnf("open browser: %v", err)
			}
		}()
	}
	return viewer.Start(ctx, listen, v)
}

// Run serves the viewer until ctx is done.
func Run(ctx context.Context, opt Options) error {
	logs := setupLogging(opt.Cfg.Log.Level)
	logBanner(opt)

	s, err := open(opt)
	if err != nil {
		return err
	}
	defer s.Close()

	log.Infof("database: %s", s.db.Path())
	if s.gen.BaseURL() != "" {
		log.Infof("generation backend: %s", s.gen.BaseURL())
	}
	if s.auth != nil {
		log.Infof("sign-in enabled (redirect %s)", opt.Cfg.RedirectURL())
	}
	return s.serve(ctx, logs, opt.Open)
}
