package diagnostics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/exportkit/component"
	"github.com/kbukum/exportkit/facade"
	"github.com/kbukum/exportkit/logger"
	"github.com/kbukum/exportkit/observability"
)

const (
	exportsPath   = "/exports"
	healthPath    = "/health"
	infoPath      = "/info"
	componentName = "diagnostics"
)

// HealthFunc reports the health of the parts behind the server.
type HealthFunc func(ctx context.Context) []component.Health

// Option configures a Server.
type Option func(*Server)

// WithService sets the service name and version reported by /health.
func WithService(name, version string) Option {
	return func(s *Server) {
		s.service = name
		s.version = version
	}
}

// WithHealth replaces the default health source, which checks the
// provider's registrations only.
func WithHealth(fn HealthFunc) Option {
	return func(s *Server) { s.health = fn }
}

// WithBackend names the container backend reported by /info.
func WithBackend(name string) Option {
	return func(s *Server) { s.backend = name }
}

// WithLogger sets the request logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// Server is the diagnostics HTTP server.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	provider   facade.Provider
	health     HealthFunc
	service    string
	version    string
	backend    string
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server for p listening on addr once started.
func New(addr string, p facade.Provider, opts ...Option) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		provider: p,
		service:  "exportkit",
		log:      logger.WithComponent(componentName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		checker := observability.RegistryChecker{Name: "exports", Provider: p}
		s.health = func(ctx context.Context) []component.Health {
			return []component.Health{checker.CheckHealth(ctx)}
		}
	}

	s.engine = gin.New()
	// qualified contract names arrive path-escaped
	s.engine.UseRawPath = true
	s.engine.UnescapePathValues = true
	s.engine.Use(Recovery(s.log), RequestID(), RequestLogger(s.log))
	s.engine.GET(exportsPath, s.listExports)
	s.engine.GET(exportsPath+"/:contract", s.contractExports)
	s.engine.GET(healthPath, s.healthCheck)
	s.engine.GET(infoPath, s.buildInfo)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the port and serves in a goroutine. It returns once the
// listener is bound.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("diagnostics: failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	s.log.Info("Diagnostics server started", map[string]interface{}{"addr": listener.Addr().String()})
	return nil
}

// Stop shuts the server down within a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("diagnostics: shutdown: %w", err)
	}
	s.log.Info("Diagnostics server stopped")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
