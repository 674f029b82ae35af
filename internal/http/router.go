package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"genefy/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// Con jwtSvc nil las rutas de acasalamiento quedan sin autenticación.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	catalogH *CatalogHandler,
	matingH *MatingHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "catalog_version": catalogH.engine.CatalogVersion()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	catalog := r.Group("/catalog")
	catalog.GET("/traits", catalogH.ListTraits)
	catalog.GET("/haplotypes/:breed", catalogH.ListHaplotypes)

	matings := r.Group("/matings")
	if jwtSvc != nil {
		matings.Use(JWTAuthMiddleware(jwtSvc))
	} else {
		logger.Warn("JWT_SECRET not set: mating endpoints are unauthenticated")
	}
	matings.GET("", matingH.List)
	matings.GET("/:id", matingH.Get)
	matings.PUT("/:id", matingH.Update)
	matings.POST("/analyze", matingH.Analyze)
	matings.POST("/batch", matingH.Batch)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
