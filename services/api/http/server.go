package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/02loveslollipop/arbor-inventory/services/api/auth"
	"github.com/02loveslollipop/arbor-inventory/services/api/config"
	"github.com/02loveslollipop/arbor-inventory/services/api/db"
	"github.com/02loveslollipop/arbor-inventory/services/api/geocode"
)

// Geocoder fills in coordinates for trees submitted without them.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat, lon float64, ok bool, err error)
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg      config.Config
	store    db.Store
	auth     *auth.Service
	geocoder Geocoder
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics
	engine   *gin.Engine
}

// Option customises a Server.
type Option func(*serverOptions)

type serverOptions struct {
	bcryptCost int
	geocoder   Geocoder
}

// WithBcryptCost overrides the password hashing work factor.
func WithBcryptCost(cost int) Option {
	return func(o *serverOptions) { o.bcryptCost = cost }
}

// WithGeocoder replaces the geocoder built from the configuration.
func WithGeocoder(g Geocoder) Option {
	return func(o *serverOptions) { o.geocoder = g }
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, store db.Store, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.geocoder == nil && cfg.GeocoderURL != "" {
		client := &http.Client{Timeout: 10 * time.Second}
		o.geocoder = geocode.NewNominatim(client, cfg.GeocoderURL, cfg.GeocoderUserAgent)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	// route on the escaped path so custom ids and cities may contain "/"
	engine.UseRawPath = true
	engine.UnescapePathValues = true
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	registry := prometheus.NewRegistry()
	m := newMetrics(registry)

	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(m.middleware())
	engine.Use(corsMiddleware())

	server := &Server{
		cfg:      cfg,
		store:    store,
		auth:     auth.NewService(store, o.bcryptCost),
		geocoder: o.geocoder,
		logger:   logger,
		registry: registry,
		metrics:  m,
		engine:   engine,
	}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
