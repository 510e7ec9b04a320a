// Package web embeds the single-page frontend served by the API binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var embedded embed.FS

// Static returns the frontend filesystem rooted at the asset directory.
func Static() (fs.FS, error) {
	return fs.Sub(embedded, "static")
}
