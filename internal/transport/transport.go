package transport

import (
	"net/http"

	"github.com/ds124wfegd/image-converter/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(convertHandler *ConvertHandler, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(allowedOrigins))

	router.POST("/convert_image/", convertHandler.ConvertImage)
	router.GET("/formats", convertHandler.GetFormats)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}
