package httpserver

import (
	"errors"
	"io"
	"net/http"

	"eventsite/internal/apperr"
)

func (s *Server) handleConfigRead(w http.ResponseWriter, r *http.Request, req request) error {
	b, err := s.store.Read(r.Context())
	if err != nil {
		return err
	}
	serveBytes(w, r, "registrations.json", "application/json; charset=utf-8", "no-store", b)
	return nil
}

// handleConfigWrite replaces the registrations document with the request body.
// Concurrent writers race; the last rename wins.
func (s *Server) handleConfigWrite(w http.ResponseWriter, r *http.Request, req request) error {
	if s.limiter != nil && !s.limiter.Allow() {
		return apperr.TooManyRequests("Too Many Requests")
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.BadRequest("Payload too large")
		}
		return apperr.BadRequest("Bad Request")
	}
	if err := s.store.Write(r.Context(), body); err != nil {
		return err
	}
	s.log.Info("registrations updated", "bytes", len(body), "remote", r.RemoteAddr)
	writeJSON(w, map[string]any{"ok": true})
	return nil
}
