package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"reminder_notifier/internal/app"
	"reminder_notifier/internal/domain/notification"
)

// Pinger checks store connectivity. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	Cycle    app.CycleRunner
	Records  notification.Repository
	Status   app.StatusReporter
	DB       Pinger
	Gatherer prometheus.Gatherer // optional; nil disables /metrics
	Now      func() time.Time
	Logger   *logrus.Entry
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	if d.Now == nil {
		d.Now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("reminder_notifier"), requestLogger(d.Logger))

	router.GET("/health", HandleHealth(d.DB, d.Status))
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/notifications")
	api.POST("/check-now", HandleCheckNow(d.Cycle))
	api.GET("/logs", HandleLogs(d.Records))
	api.GET("/stats", HandleStats(d.Records, d.Now))

	return router
}

func requestLogger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("HTTP request handled")
	}
}

// Server runs the router on an address until Shutdown.
type Server struct {
	srv    *http.Server
	logger *logrus.Entry
}

func NewServer(addr string, handler http.Handler, logger *logrus.Entry) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.WithField("component", "http_server"),
	}
}

// Start serves in the background. Listen errors other than a clean shutdown are logged.
func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.srv.Addr).Info("HTTP server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
