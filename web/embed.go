package web

import (
	"embed"
	"io/fs"
)

// templateFS embeds the HTML fragments rendered by the widget package.
//
//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates returns the embedded templates rooted at the "templates" directory.
func Templates() (fs.FS, error) {
	return fs.Sub(templateFS, "templates")
}
