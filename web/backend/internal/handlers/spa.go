package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/orgspace-systems/orgspace-stack/common/httputil"
)

// SPAHandler serves the console's static build. Unknown paths fall back to
// index.html so client-side routes such as /orgspace/departments load the
// app, while unknown /api paths get a JSON:API 404.
type SPAHandler struct {
	staticPath string
	indexPath  string
	fileServer http.Handler
}

func NewSPAHandler(staticPath string) *SPAHandler {
	return &SPAHandler{
		staticPath: staticPath,
		indexPath:  filepath.Join(staticPath, "index.html"),
		fileServer: http.FileServer(http.Dir(staticPath)),
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		httputil.WriteJSONAPIError(w, http.StatusNotFound, "not_found", "Not Found", "No such endpoint: "+r.URL.Path)
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	info, err := os.Stat(filepath.Join(h.staticPath, filepath.FromSlash(clean)))
	switch {
	case errors.Is(err, fs.ErrNotExist), err == nil && info.IsDir() && clean != "/":
		h.serveIndex(w, r)
		return
	case err != nil:
		http.Error(w, "static files unavailable", http.StatusInternalServerError)
		return
	}
	if clean == "/" {
		h.serveIndex(w, r)
		return
	}
	h.fileServer.ServeHTTP(w, r)
}

func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, h.indexPath)
}
