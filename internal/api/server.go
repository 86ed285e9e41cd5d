package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/apphost"
	"github.com/bryanchriswhite/RetroDesk/internal/config"
	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/bryanchriswhite/RetroDesk/internal/desktop"
	"github.com/bryanchriswhite/RetroDesk/internal/icon"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/bryanchriswhite/RetroDesk/internal/relay"
	"github.com/bryanchriswhite/RetroDesk/internal/tray"
	"github.com/bryanchriswhite/RetroDesk/internal/window"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// Deps are the server's optional collaborators; nil members disable their
// endpoints
type Deps struct {
	Config  *config.Manager
	Icons   *icon.Resolver
	Tray    *tray.Manager
	Relay   http.Handler
	Metrics http.Handler
}

// Server represents the HTTP API server
type Server struct {
	router   *mux.Router
	session  *desktop.Session
	deps     Deps
	upgrader websocket.Upgrader
	http     *http.Server
}

// NewServer creates a new API server
func NewServer(session *desktop.Session, deps Deps) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		session: session,
		deps:    deps,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/content", s.handleContent).Methods("GET")
	api.HandleFunc("/desktop", s.handleDesktop).Methods("GET")
	api.HandleFunc("/desktop/stream", s.handleStream)

	// Windows
	api.HandleFunc("/windows", s.handleListWindows).Methods("GET")
	api.HandleFunc("/windows/{id}", s.handleGetWindow).Methods("GET")
	api.HandleFunc("/windows/{id}/open", s.command(desktop.ActionOpen)).Methods("POST")
	api.HandleFunc("/windows/{id}/focus", s.command(desktop.ActionFocus)).Methods("POST")
	api.HandleFunc("/windows/{id}/minimize", s.command(desktop.ActionMinimize)).Methods("POST")
	api.HandleFunc("/windows/{id}/maximize", s.command(desktop.ActionMaximize)).Methods("POST")
	api.HandleFunc("/windows/{id}/close", s.command(desktop.ActionClose)).Methods("POST")
	api.HandleFunc("/windows/{id}/drag", s.command(desktop.ActionDrag)).Methods("POST")
	api.HandleFunc("/windows/{id}/frame-loaded", s.command(desktop.ActionFrameLoaded)).Methods("POST")
	api.HandleFunc("/windows/{id}/external", s.command(desktop.ActionOpenExternal)).Methods("POST")
	api.HandleFunc("/windows/{id}/game/move", s.command(desktop.ActionGameMove)).Methods("POST")
	api.HandleFunc("/windows/{id}/game/reset", s.command(desktop.ActionGameReset)).Methods("POST")
	api.HandleFunc("/windows/{id}/settings/background", s.command(desktop.ActionSetBackground)).Methods("POST")
	api.HandleFunc("/windows/{id}/settings/wallpaper", s.command(desktop.ActionSetWallpaper)).Methods("POST")

	// Taskbar
	api.HandleFunc("/taskbar", s.handleTaskbar).Methods("GET")
	api.HandleFunc("/taskbar/{id}/click", s.command(desktop.ActionTaskbarClick)).Methods("POST")

	api.HandleFunc("/icons/{id}", s.handleIcon).Methods("GET")

	api.HandleFunc("/tray", s.handleTray).Methods("GET")
	api.HandleFunc("/tray/volume/toggle", s.handleToggleMute).Methods("POST")

	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")

	if s.deps.Relay != nil {
		s.router.Handle(relay.Path, s.deps.Relay)
	}
	if s.deps.Metrics != nil {
		s.router.Handle("/metrics", s.deps.Metrics)
	}

	s.router.PathPrefix("/").HandlerFunc(s.handleIndex)
}

// Handler returns the router wrapped in CORS handling
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.WithComponent("api").Info().Msgf("Starting server on http://localhost%s", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a started server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, window.ErrWindowNotFound), errors.Is(err, content.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, window.ErrDragActive), errors.Is(err, window.ErrNotDraggable), errors.Is(err, window.ErrNoDrag):
		return http.StatusConflict
	case errors.Is(err, desktop.ErrUnknownAction), errors.Is(err, desktop.ErrWrongApp),
		errors.Is(err, window.ErrInvalidItem),
		errors.Is(err, apphost.ErrUnknownBackground), errors.Is(err, apphost.ErrInvalidWallpaper):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

// HTTP Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	tree := s.session.Tree()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"config":  tree.Identity(),
		"desktop": tree.Desktop(),
	})
}

func (s *Server) handleDesktop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleListWindows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Windows().Windows())
}

func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	info, err := s.session.Windows().Window(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleTaskbar(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Taskbar().Entries())
}

// command returns a handler that dispatches action for the {id} in the path.
// An optional JSON body supplies x, y, index or value.
func (s *Server) command(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := desktop.Command{}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		cmd.Action = action
		cmd.ID = mux.Vars(r)["id"]

		res, err := s.session.Dispatch(cmd)
		if err != nil {
			writeError(w, err)
			return
		}
		if res == nil {
			res = map[string]string{"status": "success"}
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	if s.deps.Icons == nil {
		http.NotFound(w, r)
		return
	}

	ic := s.deps.Icons.Placeholder()
	if item, err := s.session.Tree().Find(mux.Vars(r)["id"]); err == nil {
		ic = s.deps.Icons.Resolve(r.Context(), item.Icon)
	}

	w.Header().Set("Content-Type", ic.ContentType)
	if ic.Placeholder {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=86400")
	}
	w.Write(ic.Data)
}

func (s *Server) handleTray(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tray == nil {
		writeJSON(w, http.StatusOK, []tray.WidgetState{})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Tray.Snapshot())
}

func (s *Server) handleToggleMute(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tray == nil {
		http.NotFound(w, r)
		return
	}
	muted, err := s.deps.Tray.ToggleMute()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"muted": muted})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.deps.Config == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Config.Get())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// Only serve HTML for root path
	if r.URL.Path == "/" {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indexHTML))
		return
	}

	http.NotFound(w, r)
}
