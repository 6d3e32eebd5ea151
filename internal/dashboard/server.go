// Package dashboard serves the single-page Iris explorer: a statistics
// table, a two-column scatter plot and a four-slider species predictor.
//
// Every control has its own handler. Plain HTTP endpoints answer one-shot
// requests; a websocket session routes each control message to the same
// handlers and replies with a typed event.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"iris-app/web"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Options configures the HTTP server around a Resources value.
type Options struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Images overrides the embedded species images when set.
	Images fs.FS
	// Gatherer backs /metrics; the default registry when nil.
	Gatherer prometheus.Gatherer
}

// Server is the dashboard HTTP server.
type Server struct {
	res      *Resources
	images   fs.FS
	page     *template.Template
	server   *http.Server
	upgrader websocket.Upgrader

	sessions   map[*websocket.Conn]struct{}
	sessionsMu sync.Mutex
	isRunning  bool
	mu         sync.Mutex
}

// NewServer wires routes and parses the page template. The server is not
// listening until Start.
func NewServer(res *Resources, opts Options) (*Server, error) {
	page, err := template.New("index.html").Funcs(templateFuncs).ParseFS(web.Templates, "index.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}

	images := opts.Images
	if images == nil {
		images = web.Images
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		res:      res,
		images:   images,
		page:     page,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		sessions: make(map[*websocket.Conn]struct{}),
	}

	r := mux.NewRouter()
	r.Use(s.accessLog)
	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	r.HandleFunc("/api/scatter", s.handleScatter).Methods("GET")
	r.HandleFunc("/api/scatter.png", s.handleScatterPNG).Methods("GET")
	r.HandleFunc("/api/sliders", s.handleSliders).Methods("GET")
	r.HandleFunc("/api/predict", s.handlePredict).Methods("POST")
	r.HandleFunc("/api/model", s.handleModel).Methods("GET")
	r.HandleFunc("/ws", s.handleWebSocket).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	r.PathPrefix("/img/").Handler(http.StripPrefix("/img/", http.FileServer(http.FS(images))))

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("dashboard is already running")
	}

	go func() {
		log.Info().Str("address", s.Addr()).Msg("Starting dashboard server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Dashboard server failed")
		}
	}()

	s.isRunning = true
	return nil
}

// Stop closes open sessions and shuts the server down within ctx.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.sessionsMu.Lock()
	for conn := range s.sessions {
		conn.Close()
	}
	s.sessions = make(map[*websocket.Conn]struct{})
	s.sessionsMu.Unlock()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown dashboard server")
		return err
	}

	s.isRunning = false
	log.Info().Msg("Dashboard stopped")
	return nil
}

func (s *Server) trackSession(conn *websocket.Conn) {
	s.sessionsMu.Lock()
	s.sessions[conn] = struct{}{}
	s.sessionsMu.Unlock()
}

func (s *Server) untrackSession(conn *websocket.Conn) {
	s.sessionsMu.Lock()
	delete(s.sessions, conn)
	s.sessionsMu.Unlock()
}
