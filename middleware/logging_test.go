// file: middleware/logging_test.go
package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_LogsRequestFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	router := gin.New()
	router.Use(RequestLogger(log))
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "HTTP Request", entry.Message)
	assert.Equal(t, "GET", entry.Data["method"])
	assert.Equal(t, "/health", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.NotContains(t, entry.Data, "view")
}

func TestRequestLogger_RecordsHandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	router := gin.New()
	router.Use(RequestLogger(log))
	router.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("backend unavailable"))
		c.Status(http.StatusBadGateway)
	})

	req, _ := http.NewRequest("GET", "/broken", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, http.StatusBadGateway, entry.Data["status"])
	assert.Contains(t, entry.Data["error"], "backend unavailable")
}

func TestLogWebSocketDisconnect(t *testing.T) {
	log, hook := test.NewNullLogger()

	LogWebSocketConnect(log, "10.0.0.1:5000", "view-1")
	LogWebSocketDisconnect(log, "10.0.0.1:5000", "view-1", errors.New("close 1006"))

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, "WebSocket connected", hook.Entries[0].Message)
	assert.Equal(t, "view-1", hook.Entries[1].Data["view"])
	assert.NotNil(t, hook.Entries[1].Data["error"])
}
