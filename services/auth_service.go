// File: services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"zeus-tournaments/logger"
	"zeus-tournaments/models"
)

// AuthEvent names a session transition, mirroring the auth service's event names.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Refresh timing: the auto-refresher ticks every RefreshTickInterval and renews a session
// that expires within RefreshMargin. Stored sessions this close to expiry are renewed on read.
const (
	RefreshTickInterval = 30 * time.Second
	RefreshMargin       = 3 * RefreshTickInterval
)

// SessionListener receives every session transition; session is nil after sign-out.
type SessionListener func(event AuthEvent, session *models.Session)

// Subscription is a registered SessionListener.
type Subscription struct {
	id     uint64
	client *AuthClient
	once   sync.Once
}

// Unsubscribe stops delivery. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.client.mu.Lock()
		delete(s.client.listeners, s.id)
		s.client.mu.Unlock()
	})
}

// AuthClient is one browser view's handle on the auth endpoints. It owns the view's
// session: reads it from storage, renews it, and notifies listeners on every change.
type AuthClient struct {
	api        *restClient
	storage    SessionStorage
	storageKey string
	now        func() time.Time

	mu        sync.Mutex
	listeners map[uint64]SessionListener
	nextID    uint64

	// refreshMu keeps concurrent readers from spending the same refresh token twice.
	refreshMu sync.Mutex
}

// NewAuthClient creates a client for the auth endpoints under baseURL, persisting the
// session in storage under storageKey.
func NewAuthClient(baseURL, anonKey string, httpClient *http.Client, storage SessionStorage, storageKey string) *AuthClient {
	return &AuthClient{
		api:        newRestClient(baseURL, anonKey, httpClient),
		storage:    storage,
		storageKey: storageKey,
		now:        time.Now,
		listeners:  make(map[uint64]SessionListener),
	}
}

// OnSessionChange registers fn for all future session transitions.
func (a *AuthClient) OnSessionChange(fn SessionListener) *Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.listeners[a.nextID] = fn
	return &Subscription{id: a.nextID, client: a}
}

// notify delivers synchronously on the caller's goroutine, outside the lock.
func (a *AuthClient) notify(event AuthEvent, s *models.Session) {
	a.mu.Lock()
	fns := make([]SessionListener, 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	logger.Debug.Printf("[AuthClient.notify] view=%s event=%s listeners=%d", a.storageKey, event, len(fns))
	for _, fn := range fns {
		fn(event, s)
	}
}

// GetSession returns the stored session, renewing it first when it is about to expire.
// It returns nil when there is no usable session.
func (a *AuthClient) GetSession(ctx context.Context) (*models.Session, error) {
	s, err := a.storage.Load(ctx, a.storageKey)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	if !s.ExpiresWithin(a.now(), RefreshMargin) {
		return s, nil
	}

	logger.Debug.Printf("[AuthClient.GetSession] view=%s session expiring at %v, refreshing", a.storageKey, s.Expiry())
	refreshed, err := a.refresh(ctx, s)
	if err != nil {
		return nil, err
	}
	return refreshed, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates an account. When the backend confirms immediately it also returns a
// session, which is stored and announced; otherwise no session exists yet.
func (a *AuthClient) SignUp(ctx context.Context, email, password string) error {
	var resp models.Session
	if err := a.api.doJSON(ctx, http.MethodPost, "/auth/v1/signup", nil, "", credentials{email, password}, &resp); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		logger.Info.Printf("[AuthClient.SignUp] view=%s account created, confirmation pending", a.storageKey)
		return nil
	}
	return a.adopt(ctx, &resp, EventSignedIn)
}

// SignInWithPassword exchanges credentials for a session.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) error {
	q := url.Values{"grant_type": {"password"}}
	var resp models.Session
	if err := a.api.doJSON(ctx, http.MethodPost, "/auth/v1/token", q, "", credentials{email, password}, &resp); err != nil {
		return err
	}
	return a.adopt(ctx, &resp, EventSignedIn)
}

// SignOut revokes the session remotely and forgets it locally. A session the backend
// no longer knows is still removed locally; any other failure keeps it.
func (a *AuthClient) SignOut(ctx context.Context) error {
	s, err := a.storage.Load(ctx, a.storageKey)
	if err != nil {
		return err
	}
	if s != nil {
		err := a.api.doJSON(ctx, http.MethodPost, "/auth/v1/logout", nil, s.AccessToken, nil, nil)
		var be *BackendError
		if err != nil && !(errors.As(err, &be) && isGoneStatus(be.Status)) {
			return err
		}
	}
	return a.drop(ctx)
}

func isGoneStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusNotFound
}

// RefreshSession renews the stored session unconditionally.
func (a *AuthClient) RefreshSession(ctx context.Context) (*models.Session, error) {
	s, err := a.storage.Load(ctx, a.storageKey)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &BackendError{Status: http.StatusUnauthorized, Message: "Auth session missing!"}
	}
	return a.refresh(ctx, s)
}

// refresh spends s's refresh token. A rejected token ends the session.
func (a *AuthClient) refresh(ctx context.Context, s *models.Session) (*models.Session, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	if current, err := a.storage.Load(ctx, a.storageKey); err == nil && current != nil &&
		current.RefreshToken != s.RefreshToken && !current.ExpiresWithin(a.now(), RefreshMargin) {
		return current, nil
	}

	q := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": s.RefreshToken}
	var resp models.Session
	err := a.api.doJSON(ctx, http.MethodPost, "/auth/v1/token", q, "", body, &resp)
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) && be.IsAuthRejection() {
			logger.Warn.Printf("[AuthClient.refresh] view=%s refresh rejected: %v", a.storageKey, err)
			if dropErr := a.drop(ctx); dropErr != nil {
				logger.Error.Printf("[AuthClient.refresh] view=%s failed to drop session: %v", a.storageKey, dropErr)
			}
		}
		return nil, err
	}
	if err := a.adopt(ctx, &resp, EventTokenRefreshed); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartAutoRefresh renews the session ahead of expiry until ctx is cancelled.
func (a *AuthClient) StartAutoRefresh(ctx context.Context) {
	ticker := time.NewTicker(RefreshTickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.autoRefreshTick(ctx)
			}
		}
	}()
}

func (a *AuthClient) autoRefreshTick(ctx context.Context) {
	s, err := a.storage.Load(ctx, a.storageKey)
	if err != nil || s == nil {
		return
	}
	if !s.ExpiresWithin(a.now(), RefreshMargin) {
		return
	}
	if _, err := a.refresh(ctx, s); err != nil {
		logger.Warn.Printf("[AuthClient.autoRefreshTick] view=%s refresh failed: %v", a.storageKey, err)
	}
}

// adopt fills claims-derived fields, persists the session and announces it.
func (a *AuthClient) adopt(ctx context.Context, s *models.Session, event AuthEvent) error {
	if s.AccessToken == "" {
		return &BackendError{Message: "auth response did not include a session"}
	}
	if err := fillFromClaims(s, a.now()); err != nil {
		logger.Warn.Printf("[AuthClient.adopt] view=%s unreadable access token claims: %v", a.storageKey, err)
	}
	if err := a.storage.Save(ctx, a.storageKey, s); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	logger.Info.Printf("[AuthClient.adopt] view=%s event=%s user=%s expires=%v", a.storageKey, event, s.User.Email, s.Expiry())
	a.notify(event, s)
	return nil
}

func (a *AuthClient) drop(ctx context.Context) error {
	if err := a.storage.Delete(ctx, a.storageKey); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	logger.Info.Printf("[AuthClient.drop] view=%s signed out", a.storageKey)
	a.notify(EventSignedOut, nil)
	return nil
}

// AccessTokenClaims decodes the access token's claims without verifying the signature;
// the backend verifies tokens, the client only reads them.
func AccessTokenClaims(accessToken string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

// fillFromClaims completes user and expiry fields the response left empty.
func fillFromClaims(s *models.Session, now time.Time) error {
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = now.Unix() + s.ExpiresIn
	}
	claims, err := AccessTokenClaims(s.AccessToken)
	if err != nil {
		return err
	}
	if s.User.ID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			s.User.ID = sub
		}
	}
	if s.User.Email == "" {
		if email, ok := claims["email"].(string); ok {
			s.User.Email = email
		}
	}
	if s.ExpiresAt == 0 {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.ExpiresAt = exp.Unix()
		}
	}
	return nil
}
