package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// parseTemplates loads the page and message fragment templates. html/template
// escapes every message segment, so model output is never interpreted as markup.
func parseTemplates() (*template.Template, error) {
	return template.New("web").ParseFS(templateFS, "templates/*.html")
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create static sub filesystem: " + err.Error())
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
