// Package watch keeps a project's records in step with a directory on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/codeseed/internal/content"
	"github.com/petervdpas/codeseed/internal/storage"
)

var log = logging.Logger("codeseed/watch")

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Sink receives file contents. *remote.Adapter implements it.
type Sink interface {
	SaveFile(ctx context.Context, projectID, filename, content string) (storage.Record, error)
}

type Watcher struct {
	store    *content.Store
	sink     Sink
	project  string
	onChange func(path string)
	debounce time.Duration

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	// etag of the content last saved per path; unchanged rewrites are skipped
	saved map[string]string
}

// New watches the store root and every non-hidden directory below it.
// onChange, when set, is called with the root-relative path of every file
// that was saved.
func New(store *content.Store, sink Sink, project string, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		store:    store,
		sink:     sink,
		project:  project,
		onChange: onChange,
		debounce: DefaultDebounce,
		fsw:      fsw,
		pending:  make(map[string]struct{}),
		saved:    make(map[string]string),
	}
	if err := w.addTree(store.Root()); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce changes the coalescing window; call it before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// ImportAll saves every file currently in the directory.
func (w *Watcher) ImportAll(ctx context.Context) (int, error) {
	files, err := w.store.Files(ctx)
	if err != nil {
		return 0, err
	}
	for i, f := range files {
		if _, err := w.sink.SaveFile(ctx, w.project, f.Path, f.Content); err != nil {
			return i, fmt.Errorf("import %s: %w", f.Path, err)
		}
		w.markSaved(f.Path, content.ETag([]byte(f.Content)))
	}
	return len(files), nil
}

// Run processes file events until ctx is done. Creates and writes are saved
// after the debounce window; removals are logged and leave records alone,
// since editors commonly save by removing and recreating a file.
func (w *Watcher) Run(ctx context.Context) error {
	tick := time.NewTicker(w.debounce)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			w.flush(context.Background())
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watcher error: %v", err)
		case <-tick.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := w.store.Rel(ev.Name)
	if err != nil || content.Ignored(rel) {
		return
	}
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		st, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if st.IsDir() {
			if ev.Op&fsnotify.Create != 0 {
				if err := w.addTree(ev.Name); err != nil {
					log.Warnf("%v", err)
				}
				w.queueTree(ev.Name)
			}
			return
		}
		w.queue(rel)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		log.Debugf("%s removed on disk; record kept", rel)
	}
}

// queueTree queues the files of a directory that appeared in one move.
func (w *Watcher) queueTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, err := w.store.Rel(p); err == nil && !content.Ignored(rel) {
			w.queue(rel)
		}
		return nil
	})
}

func (w *Watcher) queue(rel string) {
	w.mu.Lock()
	w.pending[rel] = struct{}{}
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	for _, rel := range paths {
		data, etag, err := w.store.Read(ctx, rel)
		if errors.Is(err, content.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Warnf("read %s: %v", rel, err)
			continue
		}
		if w.unchanged(rel, etag) {
			log.Debugf("%s unchanged", rel)
			continue
		}
		if _, err := w.sink.SaveFile(ctx, w.project, rel, string(data)); err != nil {
			log.Warnf("save %s: %v", rel, err)
			continue
		}
		w.markSaved(rel, etag)
		log.Infof("saved %s/%s", w.project, rel)
		if w.onChange != nil {
			w.onChange(rel)
		}
	}
}

func (w *Watcher) unchanged(rel, etag string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saved[rel] == etag
}

func (w *Watcher) markSaved(rel, etag string) {
	w.mu.Lock()
	w.saved[rel] = etag
	w.mu.Unlock()
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
