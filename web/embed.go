// Package web embeds the static pages served by the preview server.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/bizreport/web"
//	page := web.MissingReportPage()
package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed static
var static embed.FS

// StaticFS returns a filesystem rooted at the embedded static/ directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		log.Fatalf("web.StaticFS: %v", err)
	}
	return sub
}

// MissingReportPage is shown while the report file does not exist.
func MissingReportPage() []byte {
	data, err := fs.ReadFile(StaticFS(), "missing.html")
	if err != nil {
		log.Fatalf("web.MissingReportPage: %v", err)
	}
	return data
}
