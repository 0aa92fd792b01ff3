// Package api wires the gin engine, middleware, and route table that front
// the key pool, model registry, and dispatcher.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/routekeeper/gatewayproxy/internal/dispatcher"
	"github.com/routekeeper/gatewayproxy/internal/keypool"
	"github.com/routekeeper/gatewayproxy/internal/logging"
	"github.com/routekeeper/gatewayproxy/internal/modelcatalog"
	"github.com/routekeeper/gatewayproxy/internal/registry"
)

const reloadInterval = 5 * time.Minute

// Server bundles the gin engine and the long-lived HTTP server wrapping it.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	pool       *keypool.Pool
	registry   *registry.Registry
	catalog    *modelcatalog.Refresher
	authKey    string

	version string
}

// Options configures server construction.
type Options struct {
	Port       int
	AuthKey    string
	Pool       *keypool.Pool
	Registry   *registry.Registry
	Dispatcher *dispatcher.Dispatcher
	Catalog    *modelcatalog.Refresher
	Version    string
}

// NewServer builds the gin engine, registers middleware and routes, and
// wraps it in an http.Server bound to the configured port.
func NewServer(opts Options) *Server {
	engine := gin.New()
	engine.Use(logging.GinLogrusRecovery())
	engine.Use(logging.RequestID())
	engine.Use(logging.GinLogrusLogger())
	engine.Use(corsMiddleware())

	s := &Server{
		engine:   engine,
		pool:     opts.Pool,
		registry: opts.Registry,
		catalog:  opts.Catalog,
		authKey:  opts.AuthKey,
		version:  opts.Version,
	}

	s.setupRoutes(opts.Dispatcher)

	s.httpServer = &http.Server{
		Addr:    ":" + strconv.Itoa(opts.Port),
		Handler: engine,
	}
	return s
}

func (s *Server) setupRoutes(d *dispatcher.Dispatcher) {
	s.engine.GET("/", s.handleHealth)
	s.engine.GET("/health", s.handleHealth)

	authorized := s.engine.Group("/")
	authorized.Use(s.requireProxyKey())
	{
		authorized.GET("/v1/models", s.handleListModels)
		authorized.GET("/v1/models/:id", s.handleGetModel)
		authorized.GET("/admin/status", s.handleAdminStatus)
		authorized.POST("/admin/reset", s.handleAdminResetAll)
		authorized.POST("/admin/reset/:i", s.handleAdminResetOne)
		authorized.POST("/admin/reload", s.handleAdminReload)
	}

	if d != nil {
		s.engine.NoRoute(s.requireProxyKey(), d.Handle)
	}
}

// requireProxyKey rejects requests whose bearer does not match the
// configured client-facing proxy key using a constant-time comparison.
func (s *Server) requireProxyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.authKey == "" {
			c.Next()
			return
		}
		provided := bearerToken(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare([]byte(provided), []byte(s.authKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{
				"message": "invalid proxy key",
				"type":    "invalid_api_key",
			}})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return header
}

// corsMiddleware adds permissive CORS headers and short-circuits preflight
// OPTIONS requests with 204.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "*")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Start runs the HTTP listener. It blocks until the server is shut down.
func (s *Server) Start() error {
	log.Infof("api: listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: listen failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP listener.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// RunReloader ticks every five minutes and reloads the key pool from disk
// until ctx is cancelled.
func (s *Server) RunReloader(ctx context.Context) {
	ticker := time.NewTicker(reloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.pool.Reload(); err != nil {
				log.Warnf("api: background key reload failed: %v", err)
			}
		}
	}
}
