package httpserver

import (
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"eventsite/internal/config"
)

// mapFS serves absolute host paths out of an in-memory fstest.MapFS.
type mapFS struct{ m fstest.MapFS }

func (f mapFS) key(name string) string {
	return strings.TrimPrefix(filepath.ToSlash(name), "/")
}

func (f mapFS) Stat(name string) (fs.FileInfo, error)      { return f.m.Stat(f.key(name)) }
func (f mapFS) ReadFile(name string) ([]byte, error)       { return f.m.ReadFile(f.key(name)) }
func (f mapFS) ReadDir(name string) ([]fs.DirEntry, error) { return f.m.ReadDir(f.key(name)) }

// countingFS records how many filesystem calls reach the wrapped FileSystem.
type countingFS struct {
	FileSystem
	calls int
}

func (f *countingFS) Stat(name string) (fs.FileInfo, error) {
	f.calls++
	return f.FileSystem.Stat(name)
}

func (f *countingFS) ReadFile(name string) ([]byte, error) {
	f.calls++
	return f.FileSystem.ReadFile(name)
}

func (f *countingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	f.calls++
	return f.FileSystem.ReadDir(name)
}

type testSite struct {
	t   *testing.T
	cfg config.Config
	srv *Server
	h   http.Handler
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.DistDir = filepath.Join(base, "dist")
	cfg.LocalesDir = filepath.Join(base, "locales")
	cfg.ConfigDir = filepath.Join(base, "config")
	cfg.RegistrationsPath = filepath.Join(cfg.ConfigDir, config.RegistrationsFile)
	require.NoError(t, os.MkdirAll(cfg.DistDir, 0o755))
	require.NoError(t, os.MkdirAll(cfg.LocalesDir, 0o755))
	return cfg
}

func newSite(t *testing.T, mutate ...func(*config.Config)) *testSite {
	t.Helper()
	cfg := testConfig(t)
	for _, m := range mutate {
		m(&cfg)
	}
	srv, err := New(Options{Config: cfg, Logger: log.New(io.Discard)})
	require.NoError(t, err)
	return &testSite{t: t, cfg: cfg, srv: srv, h: srv.Handler()}
}

// write creates a file under the dist root.
func (s *testSite) write(rel, content string) {
	s.t.Helper()
	s.writeUnder(s.cfg.DistDir, rel, content)
}

func (s *testSite) writeLocale(rel, content string) {
	s.t.Helper()
	s.writeUnder(s.cfg.LocalesDir, rel, content)
}

func (s *testSite) writeUnder(root, rel, content string) {
	s.t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(s.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(s.t, os.WriteFile(p, []byte(content), 0o644))
}

func (s *testSite) do(method, target string, body io.Reader) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func (s *testSite) get(target string) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(http.MethodGet, target, nil)
}
