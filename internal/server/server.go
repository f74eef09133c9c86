// Package server exposes the lookup service over HTTP. It is thin
// plumbing: handlers pass envelopes through unchanged, with the
// envelope's status code doubling as the HTTP status.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lepinkainen/libris/internal/books"
)

// Server wraps the gin engine around a lookup service.
type Server struct {
	service *books.Service
	engine  *gin.Engine
}

// New builds the router for the given lookup service.
func New(service *books.Service) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestID())
	engine.Use(cors())

	s := &Server{service: service, engine: engine}

	engine.GET("/health", s.health)

	api := engine.Group("/api/v1")
	{
		api.GET("/books/search", s.search)
		api.GET("/books/:workId", s.details)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP on the given port until SIGINT/SIGTERM, then shuts
// down gracefully.
func (s *Server) Run(port string) error {
	srv := &http.Server{
		Addr:           ":" + port,
		Handler:        s.engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("Shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	slog.Info("Server exited")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "libris",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (s *Server) search(c *gin.Context) {
	title := c.Query("title")

	res := s.service.Search(c.Request.Context(), title)
	if !res.IsSuccess {
		slog.Error("Search failed", "errorCode", res.ErrorCode, "error", res.Error)
	}
	c.JSON(res.StatusCode, res)
}

func (s *Server) details(c *gin.Context) {
	workID := c.Param("workId")

	res := s.service.GetDetails(c.Request.Context(), workID)
	if !res.IsSuccess {
		slog.Error("GetDetails failed", "errorCode", res.ErrorCode, "error", res.Error)
	}
	c.JSON(res.StatusCode, res)
}

// requestID tags every request so log lines from one lookup can be
// correlated.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
