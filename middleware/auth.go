// Package middleware provides request filters for the application.
// File: middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"zeus-tournaments/logger"
	"zeus-tournaments/view"
)

// ViewSessionKey is the cookie-session key holding the browser's view id.
const ViewSessionKey = "viewID"

// viewContextKey is where ViewRequired leaves the id for later handlers.
const viewContextKey = "viewID"

// SettleTimeout bounds how long DashboardRequired waits for a busy view.
var SettleTimeout = 15 * time.Second

// ViewProvider returns the running view for a browser.
type ViewProvider interface {
	View(id string) (*view.Loop, error)
}

// -------------- view middleware --------------

// ViewRequired makes sure the browser carries a view id, issuing a new one when the
// cookie session has none (or a malformed one).
// Usage:
//
//	router.Use(ViewRequired)
func ViewRequired(c *gin.Context) {
	session := sessions.Default(c)
	id, _ := session.Get(ViewSessionKey).(string)

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		session.Set(ViewSessionKey, id)
		if err := session.Save(); err != nil {
			logger.Error.Printf("[ViewRequired] Failed to save session: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		logger.Debug.Printf("[ViewRequired] Issued view id %s", id)
	}

	c.Set(viewContextKey, id)
	c.Next()
}

// ViewID returns the id set by ViewRequired, or "" when it did not run.
func ViewID(c *gin.Context) string {
	return c.GetString(viewContextKey)
}

// DashboardRequired sends the browser back to / unless its view holds a session.
func DashboardRequired(views ViewProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		loop, err := views.View(ViewID(c))
		if err != nil {
			logger.Error.Printf("[DashboardRequired] No view for %q: %v", ViewID(c), err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), SettleTimeout)
		err = loop.Settle(ctx)
		cancel()
		if err != nil {
			logger.Warn.Printf("[DashboardRequired] view=%s did not settle: %v", loop.ID(), err)
		}

		if !loop.Snapshot().Authenticated() {
			logger.Warn.Printf("[DashboardRequired] view=%s is signed out; redirecting to /", loop.ID())
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
