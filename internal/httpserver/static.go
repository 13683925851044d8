package httpserver

import (
	"bytes"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eventsite/internal/apperr"
	"eventsite/internal/fsutil"
)

// FileSystem is the read-only view the responders need. Names are absolute
// host paths produced by fsutil.Resolve.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

type osFS struct{}

func (osFS) Stat(name string) (fs.FileInfo, error)      { return os.Stat(name) }
func (osFS) ReadFile(name string) ([]byte, error)       { return os.ReadFile(name) }
func (osFS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

// OSFileSystem returns the host filesystem.
func OSFileSystem() FileSystem { return osFS{} }

// Outcome is what a static request resolved to on disk.
type Outcome int

const (
	OutcomeFile Outcome = iota
	OutcomeDirIndex
	OutcomeDirNoIndex
	OutcomeMissingWithExt
	OutcomeMissingNoExt
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFile:
		return "file"
	case OutcomeDirIndex:
		return "dir-index"
	case OutcomeDirNoIndex:
		return "dir-no-index"
	case OutcomeMissingWithExt:
		return "missing-with-ext"
	case OutcomeMissingNoExt:
		return "missing-no-ext"
	default:
		return "unknown"
	}
}

// classify stats abs once and decides the outcome. rel is the request path
// and only feeds the extension heuristic: a missing path with an extension is
// a missing asset, one without is a client-side route.
func classify(fsys FileSystem, abs, rel string) (Outcome, string) {
	st, err := fsys.Stat(abs)
	switch {
	case err == nil && st.IsDir():
		idx := filepath.Join(abs, indexFile)
		if isRegular(fsys, idx) {
			return OutcomeDirIndex, idx
		}
		return OutcomeDirNoIndex, ""
	case err == nil && st.Mode().IsRegular():
		return OutcomeFile, abs
	case fsutil.HasExt(rel):
		return OutcomeMissingWithExt, ""
	default:
		return OutcomeMissingNoExt, ""
	}
}

func isRegular(fsys FileSystem, name string) bool {
	st, err := fsys.Stat(name)
	return err == nil && st.Mode().IsRegular()
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request, req request) error {
	abs, err := fsutil.Resolve(s.cfg.DistDir, req.path)
	if err != nil {
		return apperr.BadRequest("Bad Request")
	}
	outcome, target := classify(s.fs, abs, req.path)
	s.log.Debug("static", "path", req.path, "outcome", outcome)

	switch outcome {
	case OutcomeFile, OutcomeDirIndex:
		return s.serveFile(w, r, target)
	case OutcomeDirNoIndex:
		return s.serveIndex(w, r, false)
	case OutcomeMissingWithExt:
		return apperr.NotFound("Not found")
	default:
		return s.serveIndex(w, r, true)
	}
}

func (s *Server) handleLocale(w http.ResponseWriter, r *http.Request, req request) error {
	rel := strings.TrimPrefix(req.path, localesPrefix)
	abs, err := fsutil.Resolve(s.cfg.LocalesDir, rel)
	if err != nil {
		return apperr.BadRequest("Bad Request")
	}
	if !isRegular(s.fs, abs) {
		return apperr.NotFound("Not found")
	}
	return s.serveFile(w, r, abs)
}

// serveIndex serves the top-level index document. When it is missing, a
// client-side route gets a diagnostic page since that means the front-end was
// never built; a directory fallback gets a plain 404.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request, spaRoute bool) error {
	idx := filepath.Join(s.cfg.DistDir, indexFile)
	if !isRegular(s.fs, idx) {
		if spaRoute {
			s.log.Warn("index document missing", "index", idx)
			writeDiagnostic(w)
			return nil
		}
		return apperr.NotFound("Not found")
	}
	return s.serveFile(w, r, idx)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, abs string) error {
	data, err := s.fs.ReadFile(abs)
	if err != nil {
		return apperr.Internal("read file", err)
	}
	ct := contentTypeForName(abs)
	serveBytes(w, r, filepath.Base(abs), ct, cachePolicy(ct), data)
	return nil
}

// serveBytes writes data with an ETag; http.ServeContent answers conditional,
// range and HEAD requests.
func serveBytes(w http.ResponseWriter, r *http.Request, name, contentType, cacheControl string, data []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", cacheControl)
	h.Set("ETag", etag(data))
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
}

const diagnosticPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Site not built</title></head>
<body>
<h1>Site not built</h1>
<p>The front-end entry document (index.html) was not found in the static asset directory.</p>
<p>Run the front-end build and restart or redeploy the server.</p>
</body>
</html>
`

func writeDiagnostic(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(diagnosticPage))
}
