// Package httpapi serves the query layer and the user stores as JSON.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"politrades/internal/logging"
	"politrades/internal/metrics"
	"politrades/internal/query"
	"politrades/internal/state"
	"politrades/internal/version"
)

// Deps are the collaborators the API reads from and mutates.
type Deps struct {
	Engine  *query.Engine
	Stores  *state.Stores
	Metrics *metrics.Collectors
	Now     func() time.Time
}

// Server wires the gin router.
type Server struct {
	engine  *query.Engine
	stores  *state.Stores
	metrics *metrics.Collectors
	now     func() time.Time
	logger  zerolog.Logger
	router  *gin.Engine
}

// New builds the router. Call gin.SetMode before New to pick the mode.
func New(deps Deps, logger zerolog.Logger) *Server {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		engine:  deps.Engine,
		stores:  deps.Stores,
		metrics: deps.Metrics,
		now:     now,
		logger:  logging.Component(logger, "httpapi"),
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.observe())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get().Version})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.GET("/politicians", s.searchPoliticians)
	api.GET("/politicians/:id", s.getPolitician)
	api.GET("/politicians/:id/trades", s.politicianTrades)

	api.GET("/tickers", s.searchTickers)
	api.GET("/tickers/movers", s.tickerMovers)
	api.GET("/tickers/:symbol", s.getTicker)
	api.GET("/tickers/:symbol/trades", s.tickerTrades)

	api.GET("/trades", s.feed)
	api.GET("/trades/recent", s.recentTrades)
	api.GET("/trades/movers", s.topMovers)
	api.GET("/trades/:id", s.getTrade)
	api.GET("/trades/:id/related", s.relatedTrades)

	api.GET("/settings", s.getSettings)
	api.PATCH("/settings", s.patchSettings)
	api.GET("/gate", s.getGate)
	api.GET("/ui", s.getUI)

	api.GET("/watchlist", s.getWatchlist)
	api.GET("/watchlist/feed", s.followedFeed)
	api.PUT("/watchlist/politicians/:id", s.followPolitician)
	api.DELETE("/watchlist/politicians/:id", s.unfollowPolitician)
	api.PUT("/watchlist/sectors/:sector", s.followSector)
	api.DELETE("/watchlist/sectors/:sector", s.unfollowSector)

	r.NoRoute(func(c *gin.Context) { notFound(c, "route") })
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	s.logger.Info().Msg("api stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := s.logger.Debug()
		switch {
		case status >= 500:
			event = s.logger.Error()
		case status >= 400:
			event = s.logger.Warn()
		}
		event.Int("status", status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
