package httpserver

import (
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"eventsite/internal/apperr"
	"eventsite/internal/fsutil"
)

// request is the routing view of an inbound request: the decoded path with
// leading slashes removed, plus the query for handlers that need it.
type request struct {
	method string
	path   string
	query  url.Values
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, req request) error

// route pairs a predicate with a handler. Routes are evaluated in table order
// and the first match handles the request.
type route struct {
	name   string
	match  func(req request) bool
	handle handlerFunc
}

func exact(p, method string) func(request) bool {
	return func(req request) bool {
		return req.path == p && (method == "" || req.method == method)
	}
}

func prefix(p string) func(request) bool {
	return func(req request) bool {
		return strings.HasPrefix(req.path, p)
	}
}

func always(request) bool { return true }

func decodeRequest(r *http.Request) (request, error) {
	// net/http has already percent-decoded URL.Path; the query is kept apart.
	p := strings.TrimLeft(r.URL.Path, "/")
	if fsutil.HasTraversal(p) {
		return request{}, apperr.BadRequest("Bad Request")
	}
	return request{
		method: r.Method,
		path:   p,
		query:  r.URL.Query(),
	}, nil
}

// dispatch returns the first route matching req. The table always ends with a
// catch-all, so the result is never nil for a table built by routeTable.
func (s *Server) dispatch(req request) *route {
	for i := range s.routes {
		if s.routes[i].match(req) {
			return &s.routes[i]
		}
	}
	return nil
}

// ServeHTTP decodes, traversal-checks and dispatches one request. It is the
// single guard turning handler errors and panics into responses.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			s.log.Error("panic recovered",
				"panic", v,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			s.writeError(w, r, apperr.Internal("panic", nil))
		}
	}()

	req, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rt := s.dispatch(req)
	if rt == nil {
		s.writeError(w, r, apperr.NotFound("Not found"))
		return
	}
	if err := rt.handle(w, r, req); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	h := w.Header()
	h.Del("ETag")
	h.Set("Cache-Control", "no-store")
	http.Error(w, apperr.PublicMessage(err), status)
}
