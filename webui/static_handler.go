// Package webui provides the HTTP surface of the VRAM estimator service.
// This file contains the handler that serves the embedded frontend.
package webui

import (
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"vram_backend/webui/static"
)

// StaticAssetHandler serves the embedded frontend: the estimate form at
// "/" and its css/js assets. Paths are cleaned before lookup so clients
// cannot traverse outside the embedded tree.
type StaticAssetHandler struct {
	fs          fs.FS
	indexFile   string
	cacheMaxAge int
}

// NewStaticAssetHandler creates a handler over the embedded assets.
// cacheMaxAge is the Cache-Control max-age in seconds; zero disables
// caching, which is what you want during frontend development.
func NewStaticAssetHandler(cacheMaxAge int) *StaticAssetHandler {
	return &StaticAssetHandler{
		fs:          static.GetFS(),
		indexFile:   "index.html",
		cacheMaxAge: cacheMaxAge,
	}
}

// NewStaticAssetHandlerWithFS creates a handler over a custom filesystem.
// Used by tests.
func NewStaticAssetHandlerWithFS(fsys fs.FS, cacheMaxAge int) *StaticAssetHandler {
	h := NewStaticAssetHandler(cacheMaxAge)
	h.fs = fsys
	return h
}

// ServeHTTP implements http.Handler.
func (h *StaticAssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	urlPath := path.Clean("/" + r.URL.Path)
	urlPath = strings.TrimPrefix(urlPath, "/")
	if urlPath == "" || urlPath == "." {
		urlPath = h.indexFile
	}

	file, err := h.fs.Open(urlPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", h.detectContentType(urlPath))
	if h.cacheMaxAge > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(h.cacheMaxAge))
	} else {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	}

	if r.Method == http.MethodHead {
		w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
	io.Copy(w, file)
}

// RegisterRoutes mounts the handler at the root of the mux. API routes
// registered on the same mux take precedence through longest-prefix
// matching.
func (h *StaticAssetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/", h)
}

// detectContentType determines the MIME type based on file extension.
func (h *StaticAssetHandler) detectContentType(filePath string) string {
	ext := filepath.Ext(filePath)
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}

	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
