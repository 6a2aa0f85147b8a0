// Package server expose la segmentation et le minutage des sous-titres en HTTP (gin).
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patrickprogramme/clipscribe/pkg/captions"
)

const (
	requestIDKey        = "request_id"
	defaultMaxBodyBytes = 1 << 20
	shutdownTimeout     = 5 * time.Second
)

// Server porte le routeur et ses réglages.
type Server struct {
	engine       *gin.Engine
	rh           *ResponseHelper
	wordsPerCue  int
	maxBodyBytes int64
	seq          atomic.Uint64
}

type Option func(*Server)

// WithWordsPerCue fixe la valeur utilisée quand la requête ne précise pas words_per_cue.
func WithWordsPerCue(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.wordsPerCue = n
		}
	}
}

// WithMaxBodyBytes limite la taille des corps de requête.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		rh:           NewResponseHelper(),
		wordsPerCue:  captions.DefaultWordsPerCue,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(s)
	}
	s.engine = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog(), s.limitBody())

	r.GET("/healthz", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/segments", s.segments)
		v1.POST("/captions", s.captions)
	}

	r.NoRoute(func(c *gin.Context) {
		s.rh.Error(c, http.StatusNotFound, KindBadRequest, "route inconnue")
	})
	return r
}

// Handler retourne le routeur (tests, intégration).
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run écoute sur addr jusqu'à l'annulation de ctx puis s'arrête proprement.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serveur http : %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("arrêt du serveur http : %w", err)
	}
	slog.Info("http server stopped")
	return nil
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = strconv.FormatUint(s.seq.Add(1), 10)
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)
		}
		c.Next()
	}
}
