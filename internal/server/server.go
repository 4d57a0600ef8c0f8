package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/canonical"
	"github.com/roach88/formexport/internal/export"
)

// OptionsResolver decides the options of one export request. Returning nil
// aborts the request; a resolver that has not written a response itself
// leaves the server to answer 403.
type OptionsResolver interface {
	ResolveExportOptions(c *gin.Context, base export.Options) *export.Options
}

// OptionsResolverFunc adapts a function to OptionsResolver.
type OptionsResolverFunc func(c *gin.Context, base export.Options) *export.Options

func (f OptionsResolverFunc) ResolveExportOptions(c *gin.Context, base export.Options) *export.Options {
	return f(c, base)
}

// staticOptions serves every request with the configured options.
type staticOptions struct{}

func (staticOptions) ResolveExportOptions(_ *gin.Context, base export.Options) *export.Options {
	return &base
}

// Server serves exports over HTTP.
type Server struct {
	exporter *export.Exporter
	defaults export.Options
	resolver OptionsResolver
	metrics  *Metrics
	logger   *zap.Logger
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithDefaults sets the options each request starts from.
func WithDefaults(opts export.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// WithOptionsResolver sets the per-request options resolver.
func WithOptionsResolver(r OptionsResolver) Option {
	return func(s *Server) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithMetrics sets the metrics the server records to and serves.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds the server and its routes.
func New(exporter *export.Exporter, opts ...Option) *Server {
	s := &Server{
		exporter: exporter,
		resolver: staticOptions{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(s.logger))
	engine.GET("/export", s.handleExport)
	engine.GET("/healthz", handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleExport(c *gin.Context) {
	opts := s.resolver.ResolveExportOptions(c, s.defaults)
	if opts == nil {
		s.metrics.countExport("denied")
		if !c.IsAborted() && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "export not permitted"})
		}
		return
	}
	if raw, ok := c.GetQuery("include"); ok {
		opts.IncludeFormFields = export.ParseInclude(raw)
	}

	doc, err := s.exporter.Export(c.Request.Context(), *opts)
	if err != nil {
		s.metrics.countExport("error")
		body := gin.H{"error": err.Error()}
		if stage, ok := export.FailedStage(err); ok {
			body["stage"] = stage
		}
		s.logger.Error("export request failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		return
	}

	data, err := canonical.Marshal(doc)
	if err != nil {
		s.metrics.countExport("error")
		s.logger.Error("encode export", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "encode export"})
		return
	}

	etag := `"` + canonical.Digest(data) + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		s.metrics.countExport("not_modified")
		c.Status(http.StatusNotModified)
		return
	}

	s.metrics.countExport("ok")
	s.metrics.documentBytes.Observe(float64(len(data)))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": AttachmentName(doc.Name, doc.Version),
	}))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// AttachmentName is the file name an export is served under.
func AttachmentName(name, version string) string {
	return fmt.Sprintf("%s-%s.json", name, version)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs each request at info level, or warn for 5xx.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
