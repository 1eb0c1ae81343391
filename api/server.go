package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"docsplit/file"
	processor "docsplit/process"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Processor runs the document pipeline for one upload.
type Processor interface {
	Process(doc file.Document, chunkSize, overlap int) (*processor.Result, error)
}

// defaultShutdownTimeout bounds how long in-flight uploads may drain.
const defaultShutdownTimeout = 15 * time.Second

// Options configures the HTTP surface.
type Options struct {
	Port             int
	MaxUploadBytes   int64
	DefaultChunkSize int
	DefaultOverlap   int
	// SniffContentType detects the media type of parts that declare none.
	SniffContentType bool
	// ShutdownTimeout bounds the drain on shutdown. Zero selects 15s.
	ShutdownTimeout time.Duration
}

// Server exposes the pipeline over HTTP.
type Server struct {
	processor Processor
	opts      Options
	logger    *zap.Logger
	router    chi.Router
	http      *http.Server
}

// NewServer creates a new Server routing POST /upload and GET /health.
func NewServer(p Processor, opts Options, logger *zap.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{
		processor: p,
		opts:      opts,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Post("/upload", s.handleUpload)
	r.Get("/health", s.handleHealth)

	s.router = r
	s.http = &http.Server{
		Addr:              ":" + strconv.Itoa(opts.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured port and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then stops accepting and
// waits for in-flight requests to finish, up to the shutdown timeout. It
// returns only once the server has fully stopped.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting API server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server", zap.Duration("timeout", s.opts.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	shutdownErr := s.http.Shutdown(shutdownCtx)
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown: %w", shutdownErr)
	}
	return nil
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)))
	})
}
