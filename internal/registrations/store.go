// Package registrations persists the registrations document: a single JSON
// object mapping challenge ids to status strings. The server never interprets
// keys or values; it only checks the top-level shape.
package registrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"eventsite/internal/apperr"
)

// seed is the document written when none exists yet.
var seed = []byte("{}\n")

type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path is the backing file.
func (s *Store) Path() string {
	return s.path
}

// Seed creates the parent directory and an empty-object document if the file
// does not exist yet. An existing file is left as is.
func (s *Store) Seed() (created bool, err error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := f.Write(seed); err != nil {
		_ = f.Close()
		return false, err
	}
	return true, f.Close()
}

// Read returns the stored document verbatim.
func (s *Store) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound("Not found")
	}
	if err != nil {
		return nil, apperr.Internal("read registrations", err)
	}
	return b, nil
}

// Write replaces the document with body. body must be a JSON object; anything
// else is rejected before the file is touched. The file is replaced with a
// rename, so readers observe either the old or the new document.
func (s *Store) Write(ctx context.Context, body []byte) error {
	doc, err := Normalize(body)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, doc); err != nil {
		return apperr.Internal("write registrations", err)
	}
	return nil
}

// Normalize validates body as a JSON object and returns it indented with two
// spaces, keeping the member order of the input.
func Normalize(body []byte) ([]byte, error) {
	if !utf8.Valid(body) {
		return nil, apperr.BadRequest("Invalid JSON")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, apperr.BadRequest("Bad payload")
		}
		return nil, apperr.BadRequest("Invalid JSON")
	}
	if obj == nil {
		// literal null decodes without error
		return nil, apperr.BadRequest("Bad payload")
	}
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(body), "", "  "); err != nil {
		return nil, apperr.BadRequest("Invalid JSON")
	}
	return out.Bytes(), nil
}

func writeFileAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	// atomic within a filesystem
	if err := os.Rename(tmpName, dst); err != nil {
		return err
	}
	committed = true
	return nil
}
