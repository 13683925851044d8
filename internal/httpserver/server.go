package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"eventsite/internal/config"
	"eventsite/internal/registrations"
)

// Request paths, relative to "/". Literals are part of the front-end contract.
const (
	galleryPath    = "_gallery"
	thumbPath      = "_thumb"
	localesPrefix  = "locales/"
	configReadPath = "_config/registrations.json"
	adminWritePath = "_admin/registrations"
	healthPath     = "_healthz"

	indexFile = "index.html"
)

type Options struct {
	Config config.Config
	Logger *log.Logger

	// FS defaults to the host filesystem.
	FS FileSystem
}

type Server struct {
	cfg     config.Config
	log     *log.Logger
	fs      FileSystem
	store   *registrations.Store
	limiter *rate.Limiter // nil when admin writes are not throttled
	routes  []route
}

// New builds the server and seeds the registrations document so that the
// config endpoint never 404s after a clean boot.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("httpserver: logger is required")
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = OSFileSystem()
	}
	store := registrations.NewStore(opts.Config.RegistrationsPath)
	created, err := store.Seed()
	if err != nil {
		return nil, err
	}
	if created {
		opts.Logger.Info("seeded registrations", "path", store.Path())
	}

	s := &Server{
		cfg:   opts.Config,
		log:   opts.Logger,
		fs:    fsys,
		store: store,
	}
	if n := opts.Config.AdminWritesPerMinute; n > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}
	s.routes = s.routeTable()

	if st, err := fsys.Stat(opts.Config.DistDir); err != nil || !st.IsDir() {
		opts.Logger.Warn("dist directory missing; SPA routes will report a missing build", "dist", opts.Config.DistDir)
	}
	return s, nil
}

// Handler returns the full handler chain: access log, response headers, router.
func (s *Server) Handler() http.Handler {
	return chain(
		requestLogger(s.log),
		withHeaders,
	)(s)
}

func (s *Server) routeTable() []route {
	return []route{
		{name: "gallery", match: exact(galleryPath, http.MethodGet), handle: s.handleGallery},
		{name: "thumb", match: exact(thumbPath, http.MethodGet), handle: s.handleThumb},
		{name: "locales", match: prefix(localesPrefix), handle: s.handleLocale},
		{name: "config-read", match: exact(configReadPath, ""), handle: s.handleConfigRead},
		{name: "config-write", match: exact(adminWritePath, http.MethodPost), handle: s.handleConfigWrite},
		{name: "health", match: exact(healthPath, ""), handle: s.handleHealth},
		{name: "static", match: always, handle: s.handleStatic},
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, req request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
	return nil
}
