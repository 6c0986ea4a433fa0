package workspace

import (
	"errors"
	"strings"

	"github.com/petervdpas/codeseed/internal/errs"
)

// The mutators below never modify their input. They return a new root
// sequence in which only the nodes on the path to the change are copied;
// untouched subtrees are shared.
//
// A path is the chain of names from the root to the target. A path that does
// not resolve is not an error: the input tree comes back unchanged and the
// caller re-renders from it.

// ToggleFolder flips IsOpen on the folder addressed by path.
func ToggleFolder(tree []Node, path []string) []Node {
	out, _ := mapFolder(tree, path, func(f Node) Node {
		f.IsOpen = !f.IsOpen
		return f
	})
	return out
}

// SetFolderOpen forces IsOpen on the folder addressed by path.
func SetFolderOpen(tree []Node, path []string, open bool) []Node {
	out, _ := mapFolder(tree, path, func(f Node) Node {
		f.IsOpen = open
		return f
	})
	return out
}

// InsertNode appends node to the children of the folder addressed by path,
// or to the root sequence when path is empty. A sibling with the same name
// is rejected with a ValidationError and the tree is returned unchanged.
func InsertNode(tree []Node, path []string, node Node) ([]Node, error) {
	if err := ValidateName(node.Name); err != nil {
		return tree, err
	}
	if len(path) == 0 {
		return appendChild(tree, node)
	}

	var insertErr error
	out, _ := mapFolder(tree, path, func(f Node) Node {
		children, err := appendChild(f.Children, node)
		if err != nil {
			insertErr = err
			return f
		}
		f.Children = children
		return f
	})
	if insertErr != nil {
		return tree, insertErr
	}
	return out, nil
}

// UpdateContent replaces the content of the first file named name, searching
// depth-first. found is false when no such file exists.
func UpdateContent(tree []Node, name, content string) (out []Node, found bool) {
	for i, n := range tree {
		if !n.IsFolder() {
			if n.Name != name {
				continue
			}
			out = cloneNodes(tree)
			out[i].Content = content
			return out, true
		}
		if children, ok := UpdateContent(n.Children, name, content); ok {
			out = cloneNodes(tree)
			out[i].Children = children
			return out, true
		}
	}
	return tree, false
}

// RemoveNode drops the node addressed by path together with its subtree.
func RemoveNode(tree []Node, path []string) ([]Node, bool) {
	if len(path) == 0 {
		return tree, false
	}
	i := indexOf(tree, path[0])
	if i < 0 {
		return tree, false
	}
	if len(path) == 1 {
		out := make([]Node, 0, len(tree)-1)
		out = append(out, tree[:i]...)
		return append(out, tree[i+1:]...), true
	}
	if !tree[i].IsFolder() {
		return tree, false
	}
	children, ok := RemoveNode(tree[i].Children, path[1:])
	if !ok {
		return tree, false
	}
	out := cloneNodes(tree)
	out[i].Children = children
	return out, true
}

// Lookup returns the node addressed by path.
func Lookup(tree []Node, path []string) (Node, bool) {
	if len(path) == 0 {
		return Node{}, false
	}
	i := indexOf(tree, path[0])
	if i < 0 {
		return Node{}, false
	}
	if len(path) == 1 {
		return tree[i], true
	}
	if !tree[i].IsFolder() {
		return Node{}, false
	}
	return Lookup(tree[i].Children, path[1:])
}

// FindFile returns the first file named name in depth-first order.
func FindFile(tree []Node, name string) (Node, bool) {
	for _, n := range tree {
		if !n.IsFolder() {
			if n.Name == name {
				return n, true
			}
			continue
		}
		if f, ok := FindFile(n.Children, name); ok {
			return f, true
		}
	}
	return Node{}, false
}

// FindPath returns the slash-separated path of the file FindFile would
// return.
func FindPath(tree []Node, name string) (string, bool) {
	var found string
	err := Walk(tree, func(p []string, n Node) error {
		if !n.IsFolder() && n.Name == name {
			found = strings.Join(p, "/")
			return errStop
		}
		return nil
	})
	return found, err == errStop
}

var errStop = errors.New("stop")

// Walk visits every node depth-first, parents before children. The path
// passed to fn includes the node's own name and must not be retained.
func Walk(tree []Node, fn func(path []string, n Node) error) error {
	return walk(tree, nil, fn)
}

func walk(tree []Node, prefix []string, fn func([]string, Node) error) error {
	for _, n := range tree {
		p := append(prefix, n.Name)
		if err := fn(p, n); err != nil {
			return err
		}
		if n.IsFolder() {
			if err := walk(n.Children, p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Count returns the number of nodes in the tree, folders included.
func Count(tree []Node) int {
	total := 0
	_ = Walk(tree, func([]string, Node) error {
		total++
		return nil
	})
	return total
}

// ValidateName rejects names that cannot be used as a single path segment.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return errs.Invalid("name", "must not be empty")
	case trimmed == "." || trimmed == "..":
		return errs.Invalid("name", "invalid name")
	case strings.ContainsAny(name, `/\`):
		return errs.Invalid("name", "must not contain slashes")
	}
	return nil
}

func mapFolder(tree []Node, path []string, fn func(Node) Node) ([]Node, bool) {
	if len(path) == 0 {
		return tree, false
	}
	i := indexOf(tree, path[0])
	if i < 0 || !tree[i].IsFolder() {
		return tree, false
	}
	if len(path) == 1 {
		out := cloneNodes(tree)
		out[i] = fn(tree[i])
		return out, true
	}
	children, ok := mapFolder(tree[i].Children, path[1:], fn)
	if !ok {
		return tree, false
	}
	out := cloneNodes(tree)
	out[i].Children = children
	return out, true
}

func appendChild(siblings []Node, node Node) ([]Node, error) {
	if indexOf(siblings, node.Name) >= 0 {
		return siblings, errs.Invalid("name", "\""+node.Name+"\" already exists")
	}
	out := make([]Node, 0, len(siblings)+1)
	out = append(out, siblings...)
	return append(out, node), nil
}

func indexOf(siblings []Node, name string) int {
	for i, n := range siblings {
		if n.Name == name {
			return i
		}
	}
	return -1
}

func cloneNodes(tree []Node) []Node {
	out := make([]Node, len(tree))
	copy(out, tree)
	return out
}
