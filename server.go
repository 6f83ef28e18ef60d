package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "canvasEdMcp/docs"
	"canvasEdMcp/internal/config"
	"canvasEdMcp/internal/logger"
	"canvasEdMcp/internal/tools"
)

const shutdownTimeout = 10 * time.Second

func newRouter(svc *tools.Service, cfg *config.HTTPConfig, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(log))
	corsCfg := cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, PingResponse{Message: "pong"})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h := &handlers{svc: svc}
	api := router.Group("/")
	if token := cfg.Token.Value(); token != "" {
		api.Use(AuthMiddleware(token))
	}
	{
		api.GET("/canvas/courses", h.listCourses)
		api.GET("/canvas/courses/:course_id", h.getCourse)
		api.GET("/canvas/courses/:course_id/announcements", h.listAnnouncements)
		api.GET("/canvas/courses/:course_id/assignments", h.listAssignments)
		api.GET("/ed/user", h.edUserInfo)
		api.GET("/ed/courses", h.edListCourses)
		api.GET("/ed/courses/:course_id/threads", h.edListThreads)
		api.GET("/ed/courses/:course_id/search", h.edSearchThreads)
		api.GET("/ed/threads/:thread_id", h.edGetThread)
	}
	return router
}

// AuthMiddleware requires "Authorization: Bearer <token>".
func AuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: ErrMissingToken.Error()})
			return
		}
		given := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: ErrInvalidToken.Error()})
			return
		}
		c.Next()
	}
}

// LoggerMiddleware logs each request and stores a request-scoped logger in the context.
func LoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.With("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), reqLog))

		c.Next()

		reqLog.Info("request completed",
			"status_code", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		)
	}
}

// serveHTTP runs until ctx is cancelled, then drains in-flight requests.
func serveHTTP(ctx context.Context, handler http.Handler, addr string, log logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}
