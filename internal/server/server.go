package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/timecode/internal/config"
	"github.com/zsiec/timecode/internal/errors"
	"github.com/zsiec/timecode/internal/health"
	"github.com/zsiec/timecode/internal/logger"
)

const defaultHealthInterval = 30 * time.Second

// Server serves the API over HTTP/1.1 and, optionally, HTTP/3.
type Server struct {
	config       *config.ServerConfig
	router       *mux.Router
	httpServer   *http.Server
	http3Server  *http3.Server
	logger       *logrus.Entry
	redis        *redis.Client
	healthMgr    *health.Manager
	errorHandler *errors.ErrorHandler
	limiter      *ClientLimiter

	additionalRoutes []func(*mux.Router)
}

// New creates a server. redisClient may be nil when the cache is disabled.
func New(cfg *config.ServerConfig, log *logrus.Entry, redisClient *redis.Client) *Server {
	s := &Server{
		config:           cfg,
		router:           mux.NewRouter(),
		logger:           log.WithField("component", "server"),
		redis:            redisClient,
		healthMgr:        health.NewManager(log),
		errorHandler:     errors.NewErrorHandler(log),
		additionalRoutes: make([]func(*mux.Router), 0),
	}
	if cfg.RateLimit.Enabled {
		s.limiter = NewClientLimiter(cfg.RateLimit)
	}

	s.registerHealthCheckers()
	return s
}

// ErrorHandler returns the handler used for JSON error responses.
func (s *Server) ErrorHandler() *errors.ErrorHandler {
	return s.errorHandler
}

// Start serves until ctx is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	s.setupRoutes()

	interval := s.config.HealthInterval
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	go s.healthMgr.StartPeriodicChecks(ctx, interval)

	errCh := make(chan error, 2)

	handler := http.Handler(s.router)
	if s.config.HTTP3.Enabled {
		h3, err := s.newHTTP3Server()
		if err != nil {
			return err
		}
		s.http3Server = h3
		handler = s.altSvcMiddleware(s.router)

		s.logger.WithField("port", s.config.HTTP3.Port).Info("Starting HTTP/3 server")
		go func() {
			if err := h3.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http3 server: %w", err)
			}
		}()
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.WithField("port", s.config.HTTPPort).Info("Starting HTTP server")
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		s.Shutdown()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

func (s *Server) newHTTP3Server() (*http3.Server, error) {
	cfg := s.config.HTTP3
	cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificates: %w", err)
	}

	return &http3.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
		TLSConfig: &tls.Config{
			MinVersion:   tls.VersionTLS13,
			NextProtos:   []string{"h3"},
			Certificates: []tls.Certificate{cert},
		},
		QUICConfig: &quic.Config{
			MaxIncomingStreams: cfg.MaxIncomingStreams,
			MaxIdleTimeout:     cfg.MaxIdleTimeout,
		},
	}, nil
}

// altSvcMiddleware advertises the HTTP/3 endpoint on HTTP/1.1 responses.
func (s *Server) altSvcMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.http3Server.SetQUICHeaders(w.Header()); err != nil {
			s.logger.WithError(err).Debug("Failed to set Alt-Svc header")
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops both listeners.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server")

	var errs []error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}
	if s.http3Server != nil {
		if err := s.http3Server.Close(); err != nil {
			errs = append(errs, fmt.Errorf("http3: %w", err))
		}
	}
	if err := stderrors.Join(errs...); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shutdown complete")
	return nil
}

// setupRoutes configures middleware and routes.
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(logger.RequestLoggerMiddleware(s.logger))
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.errorHandler.Middleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.rateLimitMiddleware)

	healthHandler := health.NewHandler(s.healthMgr)
	s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	s.router.HandleFunc("/ready", healthHandler.HandleReady).Methods("GET")
	s.router.HandleFunc("/live", healthHandler.HandleLive).Methods("GET")

	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

	if s.config.DebugEndpoints {
		s.setupDebugEndpoints()
	}

	for _, registerFunc := range s.additionalRoutes {
		registerFunc(s.router)
	}

	s.router.NotFoundHandler = http.HandlerFunc(s.errorHandler.HandleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.errorHandler.HandleMethodNotAllowed)
}

// registerHealthCheckers registers the converter self-test, the memory
// checker and, when configured, redis.
func (s *Server) registerHealthCheckers() {
	s.healthMgr.Register(health.NewConverterChecker())
	s.healthMgr.Register(health.NewMemoryChecker(s.config.MaxHeapBytes))
	if s.redis != nil {
		s.healthMgr.Register(health.NewRedisChecker(s.redis))
	}
}

// setupDebugEndpoints registers pprof and /debug/info.
func (s *Server) setupDebugEndpoints() {
	s.logger.Info("Enabling debug endpoints")

	debug := s.router.PathPrefix("/debug").Subrouter()
	debug.HandleFunc("/pprof/", pprof.Index)
	debug.HandleFunc("/pprof/cmdline", pprof.Cmdline)
	debug.HandleFunc("/pprof/profile", pprof.Profile)
	debug.HandleFunc("/pprof/symbol", pprof.Symbol)
	debug.HandleFunc("/pprof/trace", pprof.Trace)
	debug.PathPrefix("/pprof/").HandlerFunc(pprof.Index)

	debug.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		info := map[string]interface{}{
			"protocols": map[string]bool{
				"http11": true,
				"http3":  s.config.HTTP3.Enabled,
			},
			"ports": map[string]int{
				"http":  s.config.HTTPPort,
				"http3": s.config.HTTP3.Port,
			},
			"rate_limit": map[string]interface{}{
				"enabled":         s.config.RateLimit.Enabled,
				"tracked_clients": s.trackedClients(),
			},
			"debug_enabled": true,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(info)
	}).Methods("GET")
}

func (s *Server) trackedClients() int {
	if s.limiter == nil {
		return 0
	}
	return s.limiter.Clients()
}

// RegisterRoutes adds route handlers that are installed by Start.
func (s *Server) RegisterRoutes(registerFunc func(*mux.Router)) {
	s.additionalRoutes = append(s.additionalRoutes, registerFunc)
}

// Router installs the middleware and routes and returns the router.
// It is used by tests in place of Start.
func (s *Server) Router() http.Handler {
	s.setupRoutes()
	return s.router
}

// HealthManager returns the manager running the health checks.
func (s *Server) HealthManager() *health.Manager {
	return s.healthMgr
}
