package static

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

// embedded assets only change with a new build
const embedMaxAge = 24 * 60 * 60

// NewFilesystemHandler serves files from path and asks browsers to
// revalidate them, so edits show up on reload.
func NewFilesystemHandler(path string) http.HandlerFunc {
	return withCacheControl("no-cache", http.FileServer(http.Dir(path)))
}

//go:embed files/*
var embedFS embed.FS

// NewEmbedHandler serves the assets compiled into the binary.
func NewEmbedHandler() (http.HandlerFunc, error) {
	files, err := fs.Sub(embedFS, "files")
	if err != nil {
		return nil, fmt.Errorf("static files: %w", err)
	}
	return withCacheControl(fmt.Sprintf("public, max-age=%d", embedMaxAge), http.FileServerFS(files)), nil
}

func withCacheControl(value string, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", value)
		next.ServeHTTP(w, r)
	}
}
