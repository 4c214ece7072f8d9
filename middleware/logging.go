// File: middleware/logging.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request with its method, path, status and duration.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		fields := logrus.Fields{
			"method":   method,
			"path":     path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"remote":   c.ClientIP(),
		}
		if id := ViewID(c); id != "" {
			fields["view"] = id
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}
		log.WithFields(fields).Info("HTTP Request")
	}
}

// LogWebSocketConnect logs a websocket client connecting.
func LogWebSocketConnect(log *logrus.Logger, remoteAddr, viewID string) {
	log.WithFields(logrus.Fields{
		"remote": remoteAddr,
		"view":   viewID,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect logs a websocket client leaving.
func LogWebSocketDisconnect(log *logrus.Logger, remoteAddr, viewID string, err error) {
	fields := logrus.Fields{
		"remote": remoteAddr,
		"view":   viewID,
	}
	if err != nil {
		fields["error"] = err
	}
	log.WithFields(fields).Info("WebSocket disconnected")
}
