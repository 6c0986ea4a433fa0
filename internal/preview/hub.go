package preview

import (
	"sync"
	"time"

	"github.com/petervdpas/codeseed/internal/workspace"
)

// Update is one recomposed document pushed to live subscribers.
type Update struct {
	Project string    `json:"project"`
	Root    string    `json:"root"`
	Doc     string    `json:"doc"`
	At      time.Time `json:"at"`
}

// Hub fans out recomposed documents to subscribers per project. Slow
// subscribers miss updates instead of blocking publishers.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Update]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Update]struct{})}
}

func (h *Hub) Subscribe(project string) (ch chan Update, cancel func()) {
	ch = make(chan Update, 8)

	h.mu.Lock()
	set, ok := h.subs[project]
	if !ok {
		set = make(map[chan Update]struct{})
		h.subs[project] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel = func() {
		h.mu.Lock()
		if set, ok := h.subs[project]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, project)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers u to every subscriber of u.Project and returns how many
// received it.
func (h *Hub) Publish(u Update) int {
	if u.At.IsZero() {
		u.At = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for ch := range h.subs[u.Project] {
		select {
		case ch <- u:
			n++
		default:
		}
	}
	return n
}

// Subscribers returns the number of subscribers of project.
func (h *Hub) Subscribers(project string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[project])
}

// Push recomposes files with c and publishes the result for project when a
// change to changed can alter it. An empty changed always publishes. Push is
// a no-op without subscribers.
func (h *Hub) Push(c *Composer, project string, files []workspace.Entry, changed string) (int, error) {
	if h.Subscribers(project) == 0 {
		return 0, nil
	}
	doc, root, err := c.Render(files, "")
	if err != nil {
		return 0, err
	}
	if changed != "" && !Affects(changed, root.Path) {
		return 0, nil
	}
	return h.Publish(Update{Project: project, Root: root.Path, Doc: doc}), nil
}
