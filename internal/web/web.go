// Package web embeds the HTML templates and static assets served by the
// school directory.
//
// Pages are complete template files that share the "head", "foot" and
// "alert" blocks from layout.html. Fragments (school_list.html) render
// without the layout so HTMX can swap them into a page.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Templates parses every page and fragment template.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templatesFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static/ is embedded at build time.
		panic(err)
	}
	return http.FS(sub)
}
