// Package api serves one city game over HTTP. A renderer reads snapshots,
// posts intents, and can subscribe to a websocket stream that pushes the
// snapshot after every change.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talgya/cardcity/internal/config"
	"github.com/talgya/cardcity/internal/engine"
	"github.com/talgya/cardcity/internal/logs"
	"github.com/talgya/cardcity/internal/persistence"
)

// Store is the save backend.
type Store interface {
	Save(engine.State) error
	Load(uuid.UUID) (engine.State, error)
	List() ([]persistence.Summary, error)
}

// Server holds the single engine of this process. All engine access goes
// through mu so intents stay atomic.
type Server struct {
	cfg   config.ServerConfig
	store Store

	mu  sync.Mutex
	eng *engine.Engine

	hub     *Hub
	limiter *RateLimiter
	router  *gin.Engine
	srv     *http.Server
}

// New wires routes around eng. store may be nil, which disables saves.
func New(cfg config.ServerConfig, eng *engine.Engine, store Store) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
		eng:   eng,
		hub:   NewHub(),
	}
	s.hub.Publish(eng.Snapshot())
	if cfg.IntentsPerMinute > 0 {
		s.limiter = NewRateLimiter(cfg.IntentsPerMinute, time.Minute)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Cors(cfg.CORSOrigins))
	r.Use(AccessLog())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.GET("/state", s.handleState)
	v1.GET("/catalog", s.handleCatalog)
	v1.GET("/stream", s.handleStream)
	v1.GET("/saves", s.handleSaves)
	v1.POST("/save", s.handleSave)
	v1.POST("/load/:id", s.handleLoad)
	if s.limiter != nil {
		v1.POST("/intents", RateLimit(s.limiter), s.handleIntent)
	} else {
		v1.POST("/intents", s.handleIntent)
	}

	s.router = r
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)
	if s.limiter != nil {
		go s.limiter.Cleanup(hubCtx)
	}

	errc := make(chan error, 1)
	go func() {
		logs.Info("HTTP API starting", zap.String("addr", s.cfg.Addr))
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logs.Info("HTTP API stopping")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Engine returns the current engine. Callers must not use it concurrently
// with the server.
func (s *Server) Engine() *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng
}

// apply runs one intent. The snapshot is published before the lock is
// released so subscribers see states in the order they happened.
func (s *Server) apply(in engine.Intent) ([]engine.Event, engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.eng.Apply(in)
	snap := s.eng.Snapshot()
	if err == nil {
		s.hub.Publish(snap)
	}
	return events, snap, err
}

func (s *Server) snapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Snapshot()
}

func (s *Server) replace(eng *engine.Engine) engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eng = eng
	snap := eng.Snapshot()
	s.hub.Publish(snap)
	return snap
}
