// Package server exposes liveness and readiness endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ReadyFunc reports whether the bot is connected and serving commands.
type ReadyFunc func() bool

// NewRouter builds the health router.
func NewRouter(ready ReadyFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", Health)
	r.HEAD("/healthz", Health)
	r.GET("/readyz", Ready(ready))
	return r
}

// Health answers liveness probes.
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready answers readiness probes with 503 until ready returns true.
func Ready(ready ReadyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		if ready == nil || !ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// Run serves the router on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, ready ReadyFunc) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(ready),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("component", "http").Str("addr", addr).Msg("health server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
