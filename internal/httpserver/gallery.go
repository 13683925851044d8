package httpserver

import (
	"net/http"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"eventsite/internal/apperr"
	"eventsite/internal/fsutil"
)

// handleGallery lists the image files directly inside ?dir= as public URLs.
// The listing is recomputed on every request.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request, req request) error {
	dir := req.query.Get("dir")
	if dir == "" {
		return apperr.BadRequest("Missing dir")
	}
	abs, err := fsutil.Resolve(s.cfg.DistDir, dir)
	if err != nil {
		return apperr.BadRequest("Bad Request")
	}
	st, err := s.fs.Stat(abs)
	if err != nil || !st.IsDir() {
		return apperr.NotFound("Not found")
	}
	ents, err := s.fs.ReadDir(abs)
	if err != nil {
		return apperr.Internal("read gallery dir", err)
	}

	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() || !isImageExt(strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	base := strings.ReplaceAll(dir, "\\", "/")
	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, path.Join(base, name))
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, urls)
	return nil
}

func isImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".avif":
		return true
	default:
		return false
	}
}
