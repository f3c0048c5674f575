// Package static provides the embedded frontend assets for the VRAM
// estimator web form.
package static

import (
	"embed"
	"io/fs"
)

// StaticFS contains the embedded frontend:
// - index.html (estimate form and result breakdown)
// - css/style.css
// - js/app.js (form handling, token counting, health polling)
//
//go:embed index.html css js
var StaticFS embed.FS

// GetFS returns the embedded filesystem.
func GetFS() fs.FS {
	return StaticFS
}

// ReadFile reads a file from the embedded filesystem.
func ReadFile(name string) ([]byte, error) {
	return StaticFS.ReadFile(name)
}
