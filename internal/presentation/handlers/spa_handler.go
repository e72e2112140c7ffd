package handlers

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const indexFile = "index.html"

// SPAHandler serves a built single-page frontend.
// Unknown paths fall back to index.html so client-side routes survive a reload.
type SPAHandler struct {
	files fs.FS
}

// NewSPAHandler serves the frontend build in dir
func NewSPAHandler(dir string) *SPAHandler {
	return NewSPAHandlerFS(os.DirFS(dir))
}

// NewSPAHandlerFS serves the frontend from files
func NewSPAHandlerFS(files fs.FS) *SPAHandler {
	return &SPAHandler{files: files}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")

	// API paths that reach here have no route
	if name == "api" || strings.HasPrefix(name, "api/") {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}

	if name != "" && isFile(h.files, name) {
		http.ServeFileFS(w, r, h.files, name)
		return
	}

	if !isFile(h.files, indexFile) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	http.ServeFileFS(w, r, h.files, indexFile)
}

func isFile(files fs.FS, name string) bool {
	info, err := fs.Stat(files, name)
	return err == nil && !info.IsDir()
}
