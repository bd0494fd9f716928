package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vk/bndl/internal/compiler"
	"github.com/vk/bndl/internal/ctxlog"
	"github.com/vk/bndl/internal/exporter"
	"github.com/vk/bndl/internal/parser"
	"github.com/vk/bndl/internal/plan"
	"github.com/vk/bndl/internal/snapshot"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 16 << 20
	shutdownTimeout = 5 * time.Second
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Line      int    `json:"line,omitempty"`
	Node      string `json:"node,omitempty"`
	RequestID string `json:"request_id"`
}

// Handler returns the HTTP API:
//
//	POST /v1/compile?format=json|hcl&cache=false   BNDL text in, plan out
//	POST /v1/export                                 snapshot (YAML or JSON) in, BNDL text out
//	GET  /health
//	GET  /metrics
func (a *App) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK\n")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	v1.POST("/compile", a.handleCompile)
	v1.POST("/export", a.handleExport)
	return r
}

func (a *App) requestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)

		logger := a.logger.With("request_id", id)
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), logger))
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		a.metrics.httpRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		logger.Debug("HTTP request served.", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "duration", time.Since(start))
	}
}

func (a *App) readBody(c *gin.Context) ([]byte, bool) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		a.fail(c, http.StatusRequestEntityTooLarge, "request", err)
		return nil, false
	}
	return buf.Bytes(), true
}

func (a *App) handleCompile(c *gin.Context) {
	src, ok := a.readBody(c)
	if !ok {
		return
	}
	useCache := c.DefaultQuery("cache", "true") != "false"

	p, cached, err := a.Compile(c.Request.Context(), "request", src, useCache)
	if err != nil {
		a.fail(c, http.StatusUnprocessableEntity, "", err)
		return
	}
	c.Header("X-Plan-Cache", strconv.FormatBool(cached))

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		var buf bytes.Buffer
		if err := plan.EncodeJSON(&buf, p); err != nil {
			a.fail(c, http.StatusInternalServerError, "encode", err)
			return
		}
		c.Data(http.StatusOK, "application/json", buf.Bytes())
	case "hcl":
		var buf bytes.Buffer
		if err := plan.WriteHCL(&buf, p); err != nil {
			a.fail(c, http.StatusInternalServerError, "encode", err)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
	default:
		a.fail(c, http.StatusBadRequest, "request", errors.New("unknown format "+strconv.Quote(format)))
	}
}

func (a *App) handleExport(c *gin.Context) {
	src, ok := a.readBody(c)
	if !ok {
		return
	}
	snap, err := snapshot.Load(bytes.NewReader(src))
	if err != nil {
		a.fail(c, http.StatusBadRequest, "snapshot", err)
		return
	}
	out, err := a.Export(c.Request.Context(), snap)
	if err != nil {
		a.fail(c, http.StatusUnprocessableEntity, "", err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", out)
}

// fail writes an errorResponse. An empty kind is derived from err.
func (a *App) fail(c *gin.Context, status int, kind string, err error) {
	resp := errorResponse{Error: err.Error(), Kind: kind, RequestID: c.GetString(requestIDHeader)}

	var (
		perr *parser.ParseError
		cerr *compiler.CompileError
		serr *exporter.SerializeError
	)
	switch {
	case errors.As(err, &perr):
		resp.Kind, resp.Line = "parse", perr.Line
	case errors.As(err, &cerr):
		resp.Kind, resp.Node = "compile", cerr.Node.String()
	case errors.As(err, &serr):
		resp.Kind, resp.Node = "serialize", serr.Node
	case resp.Kind == "":
		resp.Kind = "internal"
	}
	c.AbortWithStatusJSON(status, resp)
}

// Serve runs the HTTP API on the configured address until ctx ends, then
// shuts the server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.ServeAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", "address", a.cfg.ServeAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("HTTP server shut down gracefully.")
	return nil
}
