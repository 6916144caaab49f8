package web

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"eventcal/internal/auth"
	"eventcal/internal/calendar"
	"eventcal/internal/civil"
	"eventcal/internal/config"
	"eventcal/internal/feed"
	appLog "eventcal/internal/log"
	"eventcal/internal/render"
)

// Server serves the calendar pages, the month fetch endpoint used by the
// navigation buttons and the JSON API.
type Server struct {
	cfg   *config.Config
	store *feed.Store
	mux   *http.ServeMux
	now   func() time.Time

	// verified caches the digest of the last password that passed argon2id
	// verification so that page navigation does not rehash on every request.
	authMu   sync.Mutex
	verified [sha256.Size]byte
	hasValid bool
}

// embeddedStatic holds the stylesheet and the navigation script.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server reading from store.
func NewServer(cfg *config.Config, store *feed.Store) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
		mux:   http.NewServeMux(),
		now:   time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "user", s.cfg.BasicAuth.Username)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Routes returns the handlers without basic auth, for loopback captures.
func (s *Server) Routes() http.Handler {
	return s.mux
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty user or hash disables auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.PasswordHash != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !s.checkPassword(p) {
			appLog.Warn("rejected basic auth", "remote", r.RemoteAddr, "user", u)
			w.Header().Set("WWW-Authenticate", `Basic realm="eventcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkPassword(password string) bool {
	digest := sha256.Sum256([]byte(password))

	s.authMu.Lock()
	defer s.authMu.Unlock()
	if s.hasValid && subtle.ConstantTimeCompare(digest[:], s.verified[:]) == 1 {
		return true
	}
	ok, err := auth.VerifyPassword(password, s.cfg.BasicAuth.PasswordHash)
	if err != nil {
		appLog.Error("basic auth hash unusable", err)
		return false
	}
	if ok {
		s.verified = digest
		s.hasValid = true
	}
	return ok
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves s on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, store *feed.Store) error {
	s := NewServer(cfg, store)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/months", s.handleMonths)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
	s.mux.HandleFunc("/calendar", s.handleCalendar)
	s.mux.HandleFunc("/calendar/fragment", s.handleFragment)
	s.mux.HandleFunc("/simple", s.handleSimple)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	s.mux.Handle("/static/", s.staticFileServer())
	s.mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) today() civil.Date {
	return civil.FromTime(s.now().In(s.cfg.Location()))
}

// handleMonths returns the laid out months as JSON.
//
// GET /api/months?month=2024-3&months=2
//
// The parameters are those of /calendar/fragment.
func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, calendar.VariantEvent, func(render.Query) render.Renderer { return render.JSON{} })
}

// handleCalendar serves the full event calendar page. Headless captures
// wait for its data-ready marker.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, calendar.VariantEvent, func(q render.Query) render.Renderer {
		return calendar.Renderer(q.Variant, false)
	})
}

func (s *Server) handleSimple(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, calendar.VariantSimple, func(q render.Query) render.Renderer {
		return calendar.Renderer(q.Variant, false)
	})
}

// handleFragment returns the calendars of the requested months without the
// surrounding document. The navigation buttons load their targets from it.
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, calendar.VariantEvent, func(q render.Query) render.Renderer {
		return calendar.Renderer(q.Variant, true)
	})
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, variant string, pick func(render.Query) render.Renderer) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	today := s.today()
	def := calendar.DefaultQuery(s.cfg, today)
	def.Variant = variant
	q, err := parseQuery(r.URL.Query(), def)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := calendar.Build(s.cfg, s.store.Snapshot(), q, today)
	if err != nil {
		appLog.Error("calendar build failed", err, "month", q.Month)
		writeError(w, http.StatusInternalServerError, "failed to lay out calendar")
		return
	}

	renderer := pick(q)
	var buf bytes.Buffer
	if err := renderer.Render(&buf, page); err != nil {
		appLog.Error("calendar render failed", err, "month", q.Month, "variant", q.Variant)
		writeError(w, http.StatusInternalServerError, "failed to render calendar")
		return
	}

	appLog.Debug("calendar request",
		"path", r.URL.Path,
		"month", q.Month,
		"months", q.Months,
		"variant", q.Variant,
		"bytes", buf.Len(),
	)

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type refreshResponse struct {
	Events    int       `json:"events"`
	Errors    []string  `json:"errors,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// handleRefresh reloads the feeds immediately.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	if err := s.store.Refresh(r.Context()); err != nil {
		appLog.Error("manual refresh failed", err)
		writeError(w, http.StatusBadGateway, "refresh failed")
		return
	}
	snap := s.store.Snapshot()
	resp := refreshResponse{Events: len(snap.Events), UpdatedAt: snap.UpdatedAt}
	for _, e := range snap.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// staticFileServer serves the embedded stylesheet and script under /static/.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static files not available", http.StatusServiceUnavailable)
		})
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// handlePreview serves the last snapshot PNG written by the snapshot
// command or the scheduled capture.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.cfg.SnapshotPath == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	// http.ServeFile maps a missing file to 404.
	http.ServeFile(w, r, s.cfg.SnapshotPath)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
