// Package feed serves the live state of a run over HTTP and websocket.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"stock_sim/internal/infra"
	"stock_sim/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// StateSource is the read model the API serves.
type StateSource interface {
	Ledger() []service.StockView
	Factors() service.FactorView
}

// Server exposes the REST endpoints and the websocket feed.
type Server struct {
	engine  *gin.Engine
	http    *http.Server
	hub     *Hub
	state   StateSource
	metrics *infra.Metrics
	logger  *slog.Logger
	started time.Time
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewServer builds the router. Nothing listens until Start.
func NewServer(addr string, hub *Hub, state StateSource, metrics *infra.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infra.NewMetrics()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:  gin.New(),
		hub:     hub,
		state:   state,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "feed")),
		started: time.Now(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/ledger", s.getLedger)
	api.GET("/factors", s.getFactors)
	api.GET("/metrics", s.getMetrics)
	api.GET("/health", s.getHealth)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler returns the router (for tests and embedding).
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("Feed server listening", slog.String("addr", ln.Addr().String()))

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Feed server failed", slog.Any("error", err))
		}
	}()
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) getLedger(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Ledger())
}

func (s *Server) getFactors(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Factors())
}

func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Info("Failed to upgrade websocket", slog.Any("error", err))
		return
	}

	cl := &client{
		hub:  s.hub,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan []byte, 256),
	}
	select {
	case s.hub.register <- cl:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump()
}
