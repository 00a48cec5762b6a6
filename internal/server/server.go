// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutrivision/internal/tracker"
	"nutrivision/pkg/logger"
)

type Server struct {
	server  *http.Server
	tracker *tracker.Tracker
	logger  *logger.Logger
}

func NewServer(port string, tr *tracker.Tracker, l *logger.Logger) *Server {
	s := &Server{
		tracker: tr,
		logger:  l.Named("http"),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.SetTrustedProxies(nil)
	s.registerRoutes(router)

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // analysis waits on two model calls
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := router.Group("/api")
	api.GET("/profile", s.getProfile)
	api.PUT("/profile", s.putProfile)
	api.DELETE("/profile", s.deleteProfile)

	api.POST("/meals/analyze", s.analyzeMeal)
	api.POST("/meals/confirm", s.confirmMeal)
	api.POST("/meals/cancel", s.cancelMeal)
	api.GET("/meals", s.listMeals)
	api.GET("/meals/history", s.getHistory)
	api.DELETE("/meals", s.clearMeals)

	api.GET("/images/:ref", s.getImage)
	api.GET("/advice", s.getAdvice)
}

func (s *Server) Start() error {
	s.logger.Infow("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Infow("Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
