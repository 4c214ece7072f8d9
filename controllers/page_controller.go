// Package controllers file: controllers/page_controller.go
package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"zeus-tournaments/logger"
	"zeus-tournaments/middleware"
	"zeus-tournaments/models"
	"zeus-tournaments/services"
	"zeus-tournaments/view"
)

// Title is shown on both screens.
const Title = "Zeus Tackle Tournaments"

// QRCodeSize is the edge length of join-code QR images in pixels.
const QRCodeSize = 300

var (
	ApplicationURL string
	WebsocketURL   string

	// RequestTimeout bounds how long a request waits for its view to settle.
	RequestTimeout = middleware.SettleTimeout

	views middleware.ViewProvider
)

// SetConfig sets global application and WebSocket URLs
func SetConfig(appURL, wsURL string) {
	ApplicationURL = appURL
	WebsocketURL = wsURL
	logger.Info.Printf("SetConfig: Global config updated: ApplicationURL=%s, WebsocketURL=%s", appURL, wsURL)
}

// SetViews sets where handlers find each browser's view.
func SetViews(v middleware.ViewProvider) {
	views = v
}

// Health reports liveness.
func Health(c *gin.Context) {
	logger.Debug.Println("Health: Health check requested")
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// currentView returns the loop of the requesting browser, or writes a 500 and returns false.
func currentView(c *gin.Context, handler string) (*view.Loop, bool) {
	id := middleware.ViewID(c)
	if views == nil || id == "" {
		logger.Error.Printf("[%s] No view available (id=%q)", handler, id)
		c.String(http.StatusInternalServerError, "view unavailable")
		return nil, false
	}
	loop, err := views.View(id)
	if err != nil {
		logger.Error.Printf("[%s] Failed to open view %s: %v", handler, id, err)
		c.String(http.StatusInternalServerError, "view unavailable")
		return nil, false
	}
	return loop, true
}

// dispatch hands e to the browser's view, waits for the calls it causes, then sends the
// browser back to /. A view still working past RequestTimeout renders as pending and the
// websocket reloads the page once it settles.
func dispatch(c *gin.Context, handler string, e view.Event) {
	loop, ok := currentView(c, handler)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
	defer cancel()
	if err := loop.DispatchAndWait(ctx, e); err != nil {
		logger.Warn.Printf("[%s] view=%s not settled: %v", handler, loop.ID(), err)
	}
	c.Redirect(http.StatusFound, "/")
}

// tournamentRow is one entry of the "My tournaments" list as the template shows it.
type tournamentRow struct {
	ID        string
	Name      string
	JoinCode  string
	Created   string
	QRCodeURL string
}

func tournamentRows(list []models.Tournament) []tournamentRow {
	rows := make([]tournamentRow, 0, len(list))
	for _, t := range list {
		rows = append(rows, tournamentRow{
			ID:        t.ID.String(),
			Name:      t.Name,
			JoinCode:  t.JoinCode,
			Created:   t.CreatedAt.Local().Format("2 Jan 2006, 15:04"),
			QRCodeURL: "/tournaments/" + t.JoinCode + "/qrcode",
		})
	}
	return rows
}

// ShowApp renders whichever screen the browser's view is on. ?code= pre-fills the join form.
func ShowApp(c *gin.Context) {
	loop, ok := currentView(c, "ShowApp")
	if !ok {
		return
	}

	if code := c.Query("code"); code != "" {
		loop.Dispatch(view.SetJoinCode{Value: code})
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
	defer cancel()
	if err := loop.Settle(ctx); err != nil {
		logger.Warn.Printf("[ShowApp] view=%s rendering before settle: %v", loop.ID(), err)
	}

	s := loop.Snapshot()
	data := gin.H{
		"Title":        Title,
		"WebsocketURL": WebsocketURL,
		"Screen":       string(s.Screen()),
		"Message":      s.Message,
		"Pending":      s.Pending,
	}
	c.Header("Cache-Control", "no-store")

	if s.Screen() == view.ScreenAuth {
		data["Signup"] = s.Mode == view.ModeSignup
		data["Email"] = s.Email
		logger.Debug.Printf("[ShowApp] view=%s rendering auth (mode=%s)", loop.ID(), s.Mode)
		c.HTML(http.StatusOK, "auth.html", data)
		return
	}

	data["UserEmail"] = s.Session.User.Email
	data["TournamentName"] = s.TournamentName
	data["JoinCode"] = s.JoinCode
	data["Tournaments"] = tournamentRows(s.Tournaments)
	logger.Debug.Printf("[ShowApp] view=%s rendering dashboard (%d tournaments)", loop.ID(), len(s.Tournaments))
	c.HTML(http.StatusOK, "dashboard.html", data)
}

// GetJoinQRCode serves a PNG QR code of the join link for :code.
func GetJoinQRCode(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	logger.Info.Printf("GetJoinQRCode: Generating QR code for %s", code)

	png, err := services.GenerateJoinQRCode(ApplicationURL, code, QRCodeSize, services.QRCodeEncoder(qrcode.Encode))
	if err != nil {
		logger.Error.Printf("GetJoinQRCode: Error generating QR code: %v", err)
		c.String(http.StatusBadRequest, "QR generation failed")
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("Content-Disposition", "inline; filename=\""+code+".png\"")
	if _, err := c.Writer.Write(png); err != nil {
		logger.Error.Printf("GetJoinQRCode: Error writing QR code bytes: %v", err)
	}
}
