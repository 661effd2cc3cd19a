package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		idem := c.Request.Method + " " + c.Request.URL.String()

		logrus.WithField("request_id", RequestIDFrom(c)).Infof("Receiving request: %s", idem)

		// Process request
		c.Next()

		// Log after request is processed
		duration := time.Since(start)

		entry := logrus.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"url":         c.Request.URL.String(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(duration.Microseconds()) / 1000,
			"client_ip":   c.ClientIP(),
			"request_id":  RequestIDFrom(c),
		})

		if c.Writer.Status() >= 400 {
			entry.Errorf("%s failed in %.2fms", idem, float64(duration.Microseconds())/1000)
		} else {
			entry.Infof("%s finished in %.2fms", idem, float64(duration.Microseconds())/1000)
		}
	}
}
