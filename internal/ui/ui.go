// Package ui holds the server-rendered pages of the viewer.
package ui

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS
