// File: view/events.go
package view

import "zeus-tournaments/models"

// Event is anything that can change a State: a user action, a session notification,
// or the result of a backend call.
type Event interface {
	isEvent()
}

// ------------------ user and lifecycle events ------------------

// Init starts the view by reading any existing session.
type Init struct{}

// ToggleMode flips the auth form between login and signup.
type ToggleMode struct{}

// SubmitAuth submits the auth form in the current mode.
type SubmitAuth struct {
	Email    string
	Password string
}

// SetJoinCode pre-fills the join form.
type SetJoinCode struct {
	Value string
}

// Refresh reloads the tournament list.
type Refresh struct{}

// CreateTournament submits the create form.
type CreateTournament struct {
	Name string
}

// JoinTournament submits the join form.
type JoinTournament struct {
	Code string
}

// Logout asks the backend to end the session.
type Logout struct{}

// SessionChanged is an out-of-band session notification; nil means signed out.
type SessionChanged struct {
	Session *models.Session
}

// ------------------ backend results ------------------

// SessionRead carries the session read back from the backend.
type SessionRead struct {
	Session *models.Session
}

// AuthSubmitted is the outcome of a login or signup call.
type AuthSubmitted struct {
	Err error
}

// TournamentsLoaded is the outcome of a list call. FollowUp, when set, becomes the
// message once the load settles.
type TournamentsLoaded struct {
	Epoch       uint64
	Tournaments []models.Tournament
	FollowUp    string
	Err         error
}

// TournamentCreated is the outcome of a create call.
type TournamentCreated struct {
	Epoch   uint64
	Created *models.CreatedTournament
	Err     error
}

// TournamentJoined is the outcome of a join call.
type TournamentJoined struct {
	Epoch uint64
	Err   error
}

// SignedOut is the outcome of a sign-out call.
type SignedOut struct {
	Err error
}

func (Init) isEvent()              {}
func (ToggleMode) isEvent()        {}
func (SubmitAuth) isEvent()        {}
func (SetJoinCode) isEvent()       {}
func (Refresh) isEvent()           {}
func (CreateTournament) isEvent()  {}
func (JoinTournament) isEvent()    {}
func (Logout) isEvent()            {}
func (SessionChanged) isEvent()    {}
func (SessionRead) isEvent()       {}
func (AuthSubmitted) isEvent()     {}
func (TournamentsLoaded) isEvent() {}
func (TournamentCreated) isEvent() {}
func (TournamentJoined) isEvent()  {}
func (SignedOut) isEvent()         {}
