// Package api provides a local HTTP and WebSocket feed of overlay snapshots,
// for use as a browser source in streaming software.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"inputoverlay/internal/config"
	"inputoverlay/internal/embedded"
	"inputoverlay/internal/overlay"
)

// Server serves the snapshot feed. It implements overlay.Surface so the
// sampler can present frames to it alongside the window.
type Server struct {
	token         string
	listen        string
	version       string
	frameInterval time.Duration
	wsMgr         *WSManager

	mu        sync.RWMutex
	latest    overlay.Snapshot
	hasLatest bool

	visible atomic.Bool
	closed  atomic.Bool

	startOnce  sync.Once
	httpServer *http.Server
}

var _ overlay.Surface = (*Server)(nil)

// NewServer creates a new API server
func NewServer(cfg config.APIConfig, version string, frameInterval time.Duration) *Server {
	s := &Server{
		token:         cfg.Token,
		listen:        cfg.Listen,
		version:       version,
		frameInterval: frameInterval,
	}
	s.visible.Store(true)
	s.wsMgr = newWSManager(s)
	return s
}

// Handler returns the HTTP handler with auth and panic recovery applied.
// The first call starts the WebSocket hub.
func (s *Server) Handler() http.Handler {
	s.startOnce.Do(func() {
		go s.wsMgr.start()
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/", http.FileServer(http.FS(embedded.Web())))

	return s.authMiddleware(s.recoverMiddleware(mux))
}

// Start listens on the configured address and serves until Shutdown.
// It blocks.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		log.Printf("API: Failed to listen on %s: %v", s.listen, err)
		return err
	}
	return s.Serve(ln)
}

// Serve serves the feed on an existing listener
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	log.Printf("API: Snapshot feed on http://%s/", ln.Addr())
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Printf("API: Server stopped: %v", err)
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and disconnects feed clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.wsMgr.stop()

	s.mu.RLock()
	srv := s.httpServer
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Present records the frame and pushes it to feed clients when it changed.
func (s *Server) Present(snap overlay.Snapshot) {
	s.mu.Lock()
	changed := !s.hasLatest || !s.latest.Equal(snap)
	s.latest = snap
	s.hasLatest = true
	s.mu.Unlock()

	if changed {
		s.wsMgr.BroadcastSnapshot(snap)
	}
}

// Closed reports whether the server has been shut down.
func (s *Server) Closed() bool {
	return s.closed.Load()
}

// SetVisible forwards the overlay visibility to feed clients
func (s *Server) SetVisible(visible bool) {
	if s.visible.Swap(visible) != visible {
		s.wsMgr.BroadcastVisibility(visible)
	}
}

// Latest returns the last presented snapshot
func (s *Server) Latest() overlay.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("API: PANIC RECOV: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks the API token if configured. Browsers cannot set
// headers on WebSocket requests, so a token query parameter is accepted too.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health check and the page itself are public
		protected := r.URL.Path == "/ws" || r.URL.Path == "/api/snapshot"

		if protected && s.token != "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "Bearer "+s.token && r.URL.Query().Get("token") != s.token {
				log.Printf("API: Rejected %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// handleSnapshot handles GET /api/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Latest())
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"clients": s.wsMgr.clientCount(),
	})
}
