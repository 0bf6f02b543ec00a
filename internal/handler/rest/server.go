package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Server wraps the HTTP server lifecycle around the REST handler
type Server struct {
	httpServer *http.Server
	logger     *logrus.Entry
}

// NewServer builds the router and the underlying http.Server
func NewServer(addr string, handler *Handler, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	api := router.Group("/api")
	{
		api.GET("/zones", handler.ListZones)
		api.POST("/zones/bulk", handler.CreateZones)

		api.GET("/zones/:id/dns_records", handler.ListRecords)
		api.POST("/zones/:id/dns_records", handler.CreateRecord)
		api.PUT("/zones/:id/dns_records/:recordID", handler.UpdateRecord)
		api.DELETE("/zones/:id/dns_records/:recordID", handler.DeleteRecord)
		api.POST("/zones/:id/dns_records/bulk", handler.BulkRecords)

		api.POST("/zones/:id/redirect_rules", handler.CreateRedirect)

		api.POST("/bulk", handler.RunBulk)
		api.GET("/bulk/report", handler.BulkReport)
		api.DELETE("/bulk/report", handler.DismissBulkReport)

		api.GET("/settings", handler.GetSettings)
		api.PUT("/settings", handler.PutSettings)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       2 * time.Minute,
		},
		logger: logger.WithField("component", "rest-server"),
	}
}

// Start blocks serving requests until Shutdown or a listener error
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs each request with method, path, status and latency
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
