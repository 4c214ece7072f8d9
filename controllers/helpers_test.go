// file: controllers/helpers_test.go
package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"zeus-tournaments/middleware"
	"zeus-tournaments/view"
	"zeus-tournaments/view/viewtest"
)

// setupTestRouter creates a new Gin engine with session middleware, fake HTML templates
// and every route wired to views backed by backend.
func setupTestRouter(t *testing.T, backend *viewtest.Backend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Set up sessions with cookie store.
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", store))
	router.Use(middleware.ViewRequired)

	// Create minimal templates to avoid panics during testing.
	tmpDir := t.TempDir()
	if err := createDummyTemplates(tmpDir); err != nil {
		t.Fatalf("Failed to create dummy templates: %v", err)
	}
	router.LoadHTMLGlob(filepath.Join(tmpDir, "*.html"))

	registry := view.NewRegistry(func(id string) (*view.Loop, error) {
		return view.NewLoop(id, backend), nil
	})
	t.Cleanup(registry.Close)

	SetConfig("http://zeus.test", "ws://zeus.test/view-updates")
	RegisterRoutes(router, registry)
	return router
}

// createDummyTemplates writes minimal versions of the two screens to dir.
func createDummyTemplates(dir string) error {
	templates := map[string]string{
		"auth.html": `<html><body>screen=auth mode={{if .Signup}}signup{{else}}login{{end}} ` +
			`email={{.Email}} message={{.Message}}</body></html>`,
		"dashboard.html": `<html><body>screen=dashboard user={{.UserEmail}} message={{.Message}} ` +
			`name={{.TournamentName}} join={{.JoinCode}} ` +
			`{{range .Tournaments}}[{{.Name}} Code: {{.JoinCode}} {{.QRCodeURL}}]{{else}}No tournaments yet.{{end}}</body></html>`,
	}

	for name, content := range templates {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// browser replays the session cookie across requests the way a real browser would.
type browser struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newBrowser(t *testing.T, router *gin.Engine) *browser {
	return &browser{t: t, router: router}
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	return b.send(req)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "testsession" {
			b.cookie = c
		}
	}
	return w
}

// page loads / and returns the rendered body.
func (b *browser) page() string {
	w := b.get("/")
	if w.Code != http.StatusOK {
		b.t.Fatalf("GET / returned %d", w.Code)
	}
	return w.Body.String()
}

// login signs the browser in with the fake backend's password.
func (b *browser) login(email string) {
	w := b.post("/auth", url.Values{"email": {email}, "password": {viewtest.Password}})
	if w.Code != http.StatusFound {
		b.t.Fatalf("POST /auth returned %d", w.Code)
	}
}
