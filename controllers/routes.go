// Package controllers file: controllers/routes.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"zeus-tournaments/middleware"
)

// RegisterRoutes mounts the page and form routes. The router must already carry the
// session and ViewRequired middleware.
func RegisterRoutes(router gin.IRoutes, v middleware.ViewProvider) {
	SetViews(v)

	router.GET("/health", Health)
	router.GET("/", ShowApp)

	// auth screen
	router.POST("/auth", SubmitAuth)
	router.POST("/auth/mode", ToggleMode)

	// dashboard
	dashboard := middleware.DashboardRequired(v)
	router.POST("/tournaments", dashboard, CreateTournament)
	router.POST("/tournaments/join", dashboard, JoinTournament)
	router.POST("/tournaments/refresh", dashboard, RefreshTournaments)
	router.GET("/tournaments/:code/qrcode", dashboard, GetJoinQRCode)
	router.POST("/logout", dashboard, Logout)
}
