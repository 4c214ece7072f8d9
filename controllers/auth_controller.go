// Package controllers controllers/auth_controller.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"zeus-tournaments/logger"
	"zeus-tournaments/view"
)

// SubmitAuth logs in or signs up, depending on the form's current mode.
func SubmitAuth(c *gin.Context) {
	email := c.PostForm("email")
	logger.Info.Printf("[SubmitAuth] Auth attempt for %s", email)
	dispatch(c, "SubmitAuth", view.SubmitAuth{
		Email:    email,
		Password: c.PostForm("password"),
	})
}

// ToggleMode switches the auth form between login and signup.
func ToggleMode(c *gin.Context) {
	dispatch(c, "ToggleMode", view.ToggleMode{})
}

// Logout ends the session. The screen flips once the sign-out notification arrives.
func Logout(c *gin.Context) {
	logger.Info.Printf("[Logout] Logout requested")
	dispatch(c, "Logout", view.Logout{})
}
