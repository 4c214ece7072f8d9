//go:build integration
// +build integration

// integration/fake_backend_test.go
package integration

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingKey = []byte("integration-secret")

type fakeUser struct {
	id       uuid.UUID
	email    string
	password string
}

type fakeTournament struct {
	id        uuid.UUID
	name      string
	joinCode  string
	createdAt time.Time
	createdBy uuid.UUID
	members   map[uuid.UUID]bool
}

// fakeSupabase serves the auth and REST endpoints the application calls, with row
// visibility limited to creators and members.
type fakeSupabase struct {
	mu          sync.Mutex
	users       map[string]*fakeUser
	refresh     map[string]uuid.UUID
	tournaments []*fakeTournament
	codes       int
}

func newFakeSupabase() *fakeSupabase {
	return &fakeSupabase{
		users:   make(map[string]*fakeUser),
		refresh: make(map[string]uuid.UUID),
	}
}

func (f *fakeSupabase) router() *gin.Engine {
	r := gin.New()
	r.POST("/auth/v1/signup", f.signup)
	r.POST("/auth/v1/token", f.token)
	r.POST("/auth/v1/logout", f.logout)
	r.GET("/rest/v1/tournaments", f.caller, f.list)
	r.POST("/rest/v1/rpc/create_tournament", f.caller, f.create)
	r.POST("/rest/v1/rpc/join_tournament", f.caller, f.join)
	return r
}

// lastCode returns the most recently issued join code.
func (f *fakeSupabase) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tournaments) == 0 {
		return ""
	}
	return f.tournaments[len(f.tournaments)-1].joinCode
}

func (f *fakeSupabase) nextCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	f.codes++
	n := f.codes * 7919
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(alphabet[n%len(alphabet)])
		n = n/len(alphabet) + i*13
	}
	return b.String()
}

// issue must be called with mu held.
func (f *fakeSupabase) issue(c *gin.Context, u *fakeUser) {
	exp := time.Now().Add(time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.id.String(),
		"email": u.email,
		"exp":   exp.Unix(),
		"role":  "authenticated",
	})
	access, err := tok.SignedString(signingKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
		return
	}
	refresh := uuid.NewString()
	f.refresh[refresh] = u.id
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"token_type":    "bearer",
		"expires_in":    3600,
		"expires_at":    exp.Unix(),
		"refresh_token": refresh,
		"user":          gin.H{"id": u.id.String(), "email": u.email},
	})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f *fakeSupabase) signup(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil || !strings.Contains(in.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Unable to validate email address: invalid format"})
		return
	}
	if len(in.Password) < 6 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"msg": "Password should be at least 6 characters."})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[in.Email]; exists {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"msg": "User already registered"})
		return
	}
	u := &fakeUser{id: uuid.New(), email: in.Email, password: in.Password}
	f.users[in.Email] = u
	f.issue(c, u)
}

func (f *fakeSupabase) token(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch c.Query("grant_type") {
	case "password":
		var in credentials
		_ = c.ShouldBindJSON(&in)
		u, ok := f.users[in.Email]
		if !ok || u.password != in.Password {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grant", "error_description": "Invalid login credentials"})
			return
		}
		f.issue(c, u)
	case "refresh_token":
		var in struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.ShouldBindJSON(&in)
		id, ok := f.refresh[in.RefreshToken]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grant", "error_description": "Invalid Refresh Token: Refresh Token Not Found"})
			return
		}
		delete(f.refresh, in.RefreshToken)
		for _, u := range f.users {
			if u.id == id {
				f.issue(c, u)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"msg": "unsupported grant_type"})
	}
}

func (f *fakeSupabase) logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// caller resolves the bearer token to a user id, or rejects the call.
func (f *fakeSupabase) caller(c *gin.Context) {
	if c.GetHeader("apikey") == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No API key found in request"})
		return
	}
	raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return signingKey, nil })
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "JWT expired or invalid"})
		return
	}
	sub, _ := claims.GetSubject()
	id, err := uuid.Parse(sub)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid sub claim"})
		return
	}
	c.Set("uid", id)
	c.Next()
}

func (f *fakeSupabase) list(c *gin.Context) {
	uid := c.MustGet("uid").(uuid.UUID)
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := []gin.H{}
	visible := make([]*fakeTournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		if t.createdBy == uid || t.members[uid] {
			visible = append(visible, t)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].createdAt.After(visible[j].createdAt) })
	for _, t := range visible {
		rows = append(rows, gin.H{
			"id":         t.id,
			"name":       t.name,
			"join_code":  t.joinCode,
			"created_at": t.createdAt.Format(time.RFC3339Nano),
			"created_by": t.createdBy,
		})
	}
	c.JSON(http.StatusOK, rows)
}

func (f *fakeSupabase) create(c *gin.Context) {
	uid := c.MustGet("uid").(uuid.UUID)
	var in struct {
		Name string `json:"p_name"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTournament{
		id:        uuid.New(),
		name:      in.Name,
		joinCode:  f.nextCode(),
		createdAt: time.Now().Add(time.Duration(len(f.tournaments)) * time.Millisecond),
		createdBy: uid,
		members:   map[uuid.UUID]bool{uid: true},
	}
	f.tournaments = append(f.tournaments, t)
	c.JSON(http.StatusOK, []gin.H{{"id": t.id, "name": t.name, "join_code": t.joinCode}})
}

func (f *fakeSupabase) join(c *gin.Context) {
	uid := c.MustGet("uid").(uuid.UUID)
	var in struct {
		JoinCode string `json:"p_join_code"`
	}
	_ = c.ShouldBindJSON(&in)
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tournaments {
		if t.joinCode == in.JoinCode {
			t.members[uid] = true
			c.JSON(http.StatusOK, nil)
			return
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"code": "P0001", "message": "invalid join code"})
}
