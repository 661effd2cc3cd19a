package middleware

import (
	"net/http"

	"github.com/ds124wfegd/image-converter/internal/entity"
	"github.com/gin-gonic/gin"
)

// CORS admits only the listed origins, only for POST, with any request
// headers and credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		_, ok := allowed[origin]
		c.Writer.Header().Add("Vary", "Origin")

		requestMethod := c.GetHeader("Access-Control-Request-Method")
		if c.Request.Method == http.MethodOptions && requestMethod != "" {
			if !ok || requestMethod != http.MethodPost {
				c.AbortWithStatusJSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Disallowed CORS request"})
				return
			}

			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", http.MethodPost)
			if headers := c.GetHeader("Access-Control-Request-Headers"); headers != "" {
				c.Header("Access-Control-Allow-Headers", headers)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Next()
	}
}
