// Package controllers file: controllers/tournament_controller.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"zeus-tournaments/logger"
	"zeus-tournaments/view"
)

// CreateTournament creates a tournament from the "name" form field.
func CreateTournament(c *gin.Context) {
	name := c.PostForm("name")
	logger.Info.Printf("[CreateTournament] Creating tournament %q", name)
	dispatch(c, "CreateTournament", view.CreateTournament{Name: name})
}

// JoinTournament joins the tournament whose code is in the "code" form field.
func JoinTournament(c *gin.Context) {
	code := c.PostForm("code")
	logger.Info.Printf("[JoinTournament] Joining with code %q", code)
	dispatch(c, "JoinTournament", view.JoinTournament{Code: code})
}

// RefreshTournaments reloads the list.
func RefreshTournaments(c *gin.Context) {
	dispatch(c, "RefreshTournaments", view.Refresh{})
}
