package editor

import (
	"strings"
	"sync"
)

type slot struct {
	mu      sync.Mutex
	session *Session
}

// Sessions keeps one editor Session per key (user session + project) and
// runs callers one at a time per key.
type Sessions struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func NewSessions() *Sessions {
	return &Sessions{slots: make(map[string]*slot)}
}

// Do runs fn with the session for key, creating it with load on first use.
// A failed load leaves no session behind.
func (r *Sessions) Do(key string, load func() (*Session, error), fn func(*Session) error) error {
	r.mu.Lock()
	sl, ok := r.slots[key]
	if !ok {
		sl = &slot{}
		r.slots[key] = sl
	}
	r.mu.Unlock()

	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.session == nil {
		s, err := load()
		if err != nil {
			r.mu.Lock()
			if r.slots[key] == sl {
				delete(r.slots, key)
			}
			r.mu.Unlock()
			return err
		}
		sl.session = s
	}
	return fn(sl.session)
}

// Drop forgets the session for key.
func (r *Sessions) Drop(key string) {
	r.mu.Lock()
	delete(r.slots, key)
	r.mu.Unlock()
}

// DropPrefix forgets every session whose key starts with prefix, e.g. all
// projects of a signed-out user.
func (r *Sessions) DropPrefix(prefix string) int {
	return r.DropFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
}

// DropFunc forgets every session whose key matches.
func (r *Sessions) DropFunc(match func(key string) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.slots {
		if match(k) {
			delete(r.slots, k)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
