// ABOUTME: HTTP server for the webhook, the people JSON API and stored images
// ABOUTME: Builds the gin router with CORS and request logging and runs it until shutdown
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harperreed/leadbook/people"
)

// ImageSource serves stored profile images by object name.
type ImageSource interface {
	Open(name string) ([]byte, string, error)
}

// Options configures a Server.
type Options struct {
	Store people.Store

	// Images may be nil when no image store is attached.
	Images ImageSource

	// WebhookToken is the expected X-TOKEN value. Empty rejects every webhook call.
	WebhookToken string

	Logger *log.Logger
}

type Server struct {
	store        people.Store
	images       ImageSource
	webhookToken string
	logger       *log.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:        opts.Store,
		images:       opts.Images,
		webhookToken: opts.WebhookToken,
		logger:       logger.WithPrefix("web"),
	}
}

// Router builds the gin engine with every route attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-TOKEN"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	s.registerWebhook(api.Group("/post-people"))
	s.registerPeople(api.Group("/people"))

	r.GET("/storage/v1/object/public/avatars/:name", s.serveImage)

	return r
}

// Start listens on :port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", "http://localhost:"+port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start))
	}
}

func (s *Server) serveImage(c *gin.Context) {
	if s.images == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "image storage disabled"})
		return
	}

	data, contentType, err := s.images.Open(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "image not found"})
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, data)
}
