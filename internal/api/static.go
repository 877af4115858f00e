package api

import (
	"net/http"

	"github.com/yegors/airtraffic/pkg/logger"
)

// StaticFileHandler serves a browser viewer from disk without caching, so
// edits to the viewer show up on reload
type StaticFileHandler struct {
	files  http.Handler
	logger *logger.Logger
}

// NewStaticFileHandler creates a new static file handler rooted at staticDir
func NewStaticFileHandler(staticDir string, log *logger.Logger) *StaticFileHandler {
	return &StaticFileHandler{
		files:  http.FileServer(http.Dir(staticDir)),
		logger: log.Named("static-handler"),
	}
}

// ServeHTTP serves static files; http.Dir rejects paths escaping the root
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	h.logger.Debug("Serving static file", logger.String("requested_path", r.URL.Path))
	h.files.ServeHTTP(w, r)
}
