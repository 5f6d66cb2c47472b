// Package embedded provides the browser overlay page served by the snapshot feed.
package embedded

import (
	"embed"
	"io/fs"
)

//go:embed web/*
var webFS embed.FS

// Web returns the page assets rooted at the web directory
func Web() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		// web/ is embedded at build time, so Sub cannot fail
		panic(err)
	}
	return sub
}
