// Package view holds the per-browser state of the tournament client and the only
// functions allowed to change it.
// File: view/state.go
package view

import "zeus-tournaments/models"

// AuthMode selects what the auth form submits.
type AuthMode string

const (
	ModeLogin  AuthMode = "login"
	ModeSignup AuthMode = "signup"
)

// Screen is what the browser is shown. There are exactly two.
type Screen string

const (
	ScreenAuth      Screen = "auth"
	ScreenDashboard Screen = "dashboard"
)

// User-facing messages produced by the client itself.
const (
	MsgEnterTournamentName = "Enter a tournament name."
	MsgEnterJoinCode       = "Enter a join code."
	MsgJoined              = "Joined tournament ✅"
)

// CreatedMessage announces the join code of a freshly created tournament.
func CreatedMessage(joinCode string) string {
	return "Created! Join code: " + joinCode
}

// State is everything one browser view shows.
type State struct {
	Session *models.Session

	Mode     AuthMode
	Email    string
	Password string

	TournamentName string
	JoinCode       string
	Tournaments    []models.Tournament

	// Message is the outcome of the last action, cleared when a new one starts.
	Message string

	// Pending is true while a backend call of this view is queued or running.
	Pending bool

	// Epoch counts gate transitions; results of calls issued in an older epoch are dropped.
	Epoch uint64
}

// NewState is the state of a view before its session has been read.
func NewState() State {
	return State{
		Mode:        ModeLogin,
		Tournaments: []models.Tournament{},
	}
}

// Authenticated reports whether a session is held.
func (s State) Authenticated() bool {
	return s.Session != nil
}

// Screen is the dashboard iff a session is held.
func (s State) Screen() Screen {
	if s.Authenticated() {
		return ScreenDashboard
	}
	return ScreenAuth
}
