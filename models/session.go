// File: models/session.go
package models

import "time"

// ----------------------- auth models -----------------------

// User is the authenticated account as reported by the auth service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the token bundle issued by the auth service. A nil *Session means unauthenticated.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Expiry returns the access token expiry as a time.
func (s *Session) Expiry() time.Time {
	return time.Unix(s.ExpiresAt, 0)
}

// ExpiresWithin reports whether the access token expires before now+d.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return !now.Add(d).Before(s.Expiry())
}
