// Package editor tracks what a user has open: the project tree, the open
// tabs, the active tab and the unsaved edit buffers.
package editor

import (
	"slices"

	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/workspace"
)

// Session is the editing state of one user on one project. It is not safe
// for concurrent use; Sessions serializes access per key.
type Session struct {
	tree    []workspace.Node
	tabs    []string
	active  string
	buffers map[string]string
}

func NewSession(tree []workspace.Node) *Session {
	return &Session{tree: tree, buffers: make(map[string]string)}
}

func (s *Session) Tree() []workspace.Node { return s.tree }

// Tabs returns the open tab names in open order.
func (s *Session) Tabs() []string { return slices.Clone(s.tabs) }

// Active returns the focused tab, if any.
func (s *Session) Active() (string, bool) {
	return s.active, s.active != ""
}

// OpenFile adds a tab for file unless one exists and makes it active. The
// edit buffer is seeded from file content only when none exists yet, so
// switching tabs never drops unsaved edits.
func (s *Session) OpenFile(file workspace.Node) {
	if _, ok := s.buffers[file.Name]; !ok {
		s.buffers[file.Name] = file.Content
	}
	if !slices.Contains(s.tabs, file.Name) {
		s.tabs = append(s.tabs, file.Name)
	}
	s.active = file.Name
}

// Open opens the first file named name found in the tree.
func (s *Session) Open(name string) error {
	f, ok := workspace.FindFile(s.tree, name)
	if !ok {
		return errs.NotFound("file", name)
	}
	s.OpenFile(f)
	return nil
}

// CloseTab removes the tab for name. When it was active, the first remaining
// tab becomes active, or none. The buffer is kept; reopening the file shows
// the unsaved text again.
func (s *Session) CloseTab(name string) bool {
	i := slices.Index(s.tabs, name)
	if i < 0 {
		return false
	}
	s.tabs = slices.Delete(s.tabs, i, i+1)
	if s.active == name {
		s.active = ""
		if len(s.tabs) > 0 {
			s.active = s.tabs[0]
		}
	}
	return true
}

// ActiveContent returns the buffered text of the active tab.
func (s *Session) ActiveContent() (string, bool) {
	if s.active == "" {
		return "", false
	}
	return s.buffers[s.active], true
}

// Edit replaces the buffer of an open tab.
func (s *Session) Edit(name, content string) error {
	if !slices.Contains(s.tabs, name) {
		return errs.Invalid("file", "\""+name+"\" is not open")
	}
	s.buffers[name] = content
	return nil
}

// Buffer returns the edit buffer for name.
func (s *Session) Buffer(name string) (string, bool) {
	b, ok := s.buffers[name]
	return b, ok
}

// Dirty reports whether the buffer differs from the tree.
func (s *Session) Dirty(name string) bool {
	buf, ok := s.buffers[name]
	if !ok {
		return false
	}
	f, ok := workspace.FindFile(s.tree, name)
	return ok && f.Content != buf
}

// Save commits the buffer for name into the tree and returns the updated
// file node.
func (s *Session) Save(name string) (workspace.Node, error) {
	buf, ok := s.buffers[name]
	if !ok {
		return workspace.Node{}, errs.Invalid("file", "\""+name+"\" has no edits")
	}
	tree, found := workspace.UpdateContent(s.tree, name, buf)
	if !found {
		return workspace.Node{}, errs.NotFound("file", name)
	}
	s.tree = tree
	f, _ := workspace.FindFile(s.tree, name)
	return f, nil
}

// Toggle opens or closes a folder.
func (s *Session) Toggle(path []string) {
	s.tree = workspace.ToggleFolder(s.tree, path)
}

// Insert adds node under the folder at path and opens that folder so the new
// entry is visible. ok is false when path does not name a folder; the tree
// is then unchanged.
func (s *Session) Insert(path []string, node workspace.Node) (ok bool, err error) {
	tree, err := workspace.InsertNode(s.tree, path, node)
	if err != nil {
		return false, err
	}
	full := append(slices.Clone(path), node.Name)
	if _, ok := workspace.Lookup(tree, full); !ok {
		return false, nil
	}
	if len(path) > 0 {
		tree = workspace.SetFolderOpen(tree, path, true)
	}
	s.tree = tree
	return true, nil
}

// Remove deletes the node at path. Tabs whose file no longer exists anywhere
// in the tree are closed and their buffers dropped.
func (s *Session) Remove(path []string) bool {
	tree, ok := workspace.RemoveNode(s.tree, path)
	if !ok {
		return false
	}
	s.tree = tree
	for _, name := range s.Tabs() {
		if _, still := workspace.FindFile(s.tree, name); !still {
			s.CloseTab(name)
			delete(s.buffers, name)
		}
	}
	return true
}

// Files returns the committed project files; unsaved buffers are left out.
func (s *Session) Files() []workspace.Entry {
	return workspace.Files(s.tree)
}

// State is the JSON view of a session.
type State struct {
	Tree   []workspace.Node `json:"tree"`
	Tabs   []TabState       `json:"tabs"`
	Active string           `json:"active,omitempty"`
}

type TabState struct {
	Name     string             `json:"name"`
	Language workspace.Language `json:"language"`
	Dirty    bool               `json:"dirty"`
	Content  string             `json:"content"`
}

func (s *Session) State() State {
	st := State{Tree: s.tree, Active: s.active, Tabs: make([]TabState, 0, len(s.tabs))}
	for _, name := range s.tabs {
		st.Tabs = append(st.Tabs, TabState{
			Name:     name,
			Language: workspace.LanguageFor(name),
			Dirty:    s.Dirty(name),
			Content:  s.buffers[name],
		})
	}
	return st
}
