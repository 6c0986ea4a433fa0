// Package workspace models a website project as a tree of folders and files
// and provides pure functions that transform that tree.
package workspace

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

type Language string

const (
	LangHTML      Language = "html"
	LangCSS       Language = "css"
	LangJS        Language = "js"
	LangJSON      Language = "json"
	LangMarkdown  Language = "markdown"
	LangSVG       Language = "svg"
	LangPlaintext Language = "plaintext"
)

// LanguageFor derives the language tag from a file name's extension.
func LanguageFor(name string) Language {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return LangHTML
	case ".css":
		return LangCSS
	case ".js", ".jsx", ".cjs", ".mjs":
		return LangJS
	case ".json":
		return LangJSON
	case ".md", ".markdown":
		return LangMarkdown
	case ".svg":
		return LangSVG
	}
	return LangPlaintext
}

// normalizeLanguage accepts the tags an editor or a generator tends to emit
// ("javascript", "md") and maps them onto the closed set above.
func normalizeLanguage(tag, name string) Language {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "":
		return LanguageFor(name)
	case "html", "htm":
		return LangHTML
	case "css":
		return LangCSS
	case "js", "javascript", "jsx", "cjs", "mjs":
		return LangJS
	case "json":
		return LangJSON
	case "md", "markdown":
		return LangMarkdown
	case "svg":
		return LangSVG
	}
	return LangPlaintext
}

type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Node is one entry of the project tree. File fields (Content, Language) are
// meaningful only for KindFile, folder fields (IsOpen, Children) only for
// KindFolder. A folder owns its children; names are unique among siblings.
type Node struct {
	Kind     Kind
	Name     string
	Content  string
	Language Language
	IsOpen   bool
	Children []Node
}

func File(name, content string) Node {
	return Node{Kind: KindFile, Name: name, Content: content, Language: LanguageFor(name)}
}

func Folder(name string, open bool, children ...Node) Node {
	return Node{Kind: KindFolder, Name: name, IsOpen: open, Children: children}
}

func (n Node) IsFolder() bool { return n.Kind == KindFolder }

// wireNode is the JSON shape shared with the browser editor and the
// generation backend.
type wireNode struct {
	Type     string     `json:"type"`
	Name     string     `json:"name"`
	Content  *string    `json:"content,omitempty"`
	Language string     `json:"language,omitempty"`
	IsOpen   *bool      `json:"isOpen,omitempty"`
	Children []wireNode `json:"children,omitempty"`
}

func (n Node) toWire() wireNode {
	if n.IsFolder() {
		open := n.IsOpen
		children := make([]wireNode, len(n.Children))
		for i, c := range n.Children {
			children[i] = c.toWire()
		}
		return wireNode{Type: "folder", Name: n.Name, IsOpen: &open, Children: children}
	}
	content := n.Content
	return wireNode{Type: "file", Name: n.Name, Content: &content, Language: string(n.Language)}
}

func (w wireNode) toNode() (Node, error) {
	if strings.TrimSpace(w.Name) == "" {
		return Node{}, fmt.Errorf("workspace: %s node without a name", w.Type)
	}
	switch w.Type {
	case "folder":
		n := Node{Kind: KindFolder, Name: w.Name}
		if w.IsOpen != nil {
			n.IsOpen = *w.IsOpen
		}
		for _, c := range w.Children {
			child, err := c.toNode()
			if err != nil {
				return Node{}, err
			}
			n.Children = append(n.Children, child)
		}
		return n, nil
	case "file", "":
		n := Node{Kind: KindFile, Name: w.Name, Language: normalizeLanguage(w.Language, w.Name)}
		if w.Content != nil {
			n.Content = *w.Content
		}
		return n, nil
	}
	return Node{}, fmt.Errorf("workspace: unknown node type %q", w.Type)
}

func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toWire())
}

func (n *Node) UnmarshalJSON(b []byte) error {
	var w wireNode
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out, err := w.toNode()
	if err != nil {
		return err
	}
	*n = out
	return nil
}
