// Package server exposes the dataset and the feature composer over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"olist/internal/olist"
	"olist/internal/order"
)

// Server serves one dataset loaded at startup.
type Server struct {
	data   olist.Dataset
	opts   order.Options
	status string
	log    *zap.Logger
	router *gin.Engine
}

// New builds the router. status is the default wait-time filter for
// /v1/training-data.
func New(data olist.Dataset, opts order.Options, status string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{data: data, opts: opts, status: status, log: log, router: gin.New()}
	s.router.Use(gin.Recovery(), s.accessLog())
	s.routes()
	return s
}

// Handler returns the http.Handler for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() {
	s.router.GET("/ping", s.ping)
	v1 := s.router.Group("/v1")
	v1.GET("/tables", s.tables)
	v1.GET("/training-data", s.trainingData)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

type tableInfo struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

func (s *Server) tables(c *gin.Context) {
	out := make([]tableInfo, 0, len(s.data))
	for _, name := range s.data.Names() {
		df := s.data[name]
		out = append(out, tableInfo{Name: name, Rows: df.Nrow(), Columns: df.Names()})
	}
	c.JSON(http.StatusOK, gin.H{"tables": out})
}

func (s *Server) trainingData(c *gin.Context) {
	opts := order.TrainingOptions{Status: c.DefaultQuery("status", s.status)}
	if v := c.Query("with_distance"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "with_distance must be a boolean"})
			return
		}
		opts.WithDistance = b
	}
	limit := -1
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	set, err := order.New(s.data, s.opts, s.log).TrainingData(c.Request.Context(), opts)
	if err != nil {
		s.log.Error("training data failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rows := set.Frame.Maps()
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id": set.RunID,
		"rows":   set.Frame.Nrow(),
		"data":   rows,
	})
}
