// File: view/reducer.go
package view

import (
	"strings"

	"zeus-tournaments/models"
	"zeus-tournaments/services"
)

// Reduce applies e to s and returns the next state plus the backend calls to make.
// It performs no I/O.
func Reduce(s State, e Event) (State, []Effect) {
	switch ev := e.(type) {
	case Init:
		return s, []Effect{ReadSessionEffect{}}

	case SessionChanged:
		return adoptSession(s, ev.Session)

	case SessionRead:
		return adoptSession(s, ev.Session)

	// ------------------ auth form ------------------

	case ToggleMode:
		if s.Authenticated() {
			return s, nil
		}
		if s.Mode == ModeSignup {
			s.Mode = ModeLogin
		} else {
			s.Mode = ModeSignup
		}
		return s, nil

	case SubmitAuth:
		if s.Authenticated() {
			return s, nil
		}
		s.Message = ""
		s.Email = ev.Email
		s.Password = ev.Password
		if s.Mode == ModeSignup {
			return s, []Effect{SignUpEffect{Email: ev.Email, Password: ev.Password}}
		}
		return s, []Effect{SignInEffect{Email: ev.Email, Password: ev.Password}}

	case AuthSubmitted:
		if ev.Err != nil {
			s.Message = services.ErrorMessage(ev.Err)
			return s, nil
		}
		// the call succeeding does not mean a session exists yet; read it back
		return s, []Effect{ReadSessionEffect{}}

	// ------------------ dashboard ------------------

	case SetJoinCode:
		s.JoinCode = strings.ToUpper(ev.Value)
		return s, nil

	case Refresh:
		if !s.Authenticated() {
			return s, nil
		}
		s.Message = ""
		return s, []Effect{LoadTournamentsEffect{Epoch: s.Epoch}}

	case TournamentsLoaded:
		if ev.Epoch != s.Epoch {
			return s, nil
		}
		if ev.Err != nil {
			s.Message = services.ErrorMessage(ev.Err)
		} else {
			s.Tournaments = ev.Tournaments
			if s.Tournaments == nil {
				s.Tournaments = []models.Tournament{}
			}
		}
		if ev.FollowUp != "" {
			s.Message = ev.FollowUp
		}
		return s, nil

	case CreateTournament:
		if !s.Authenticated() {
			return s, nil
		}
		s.Message = ""
		s.TournamentName = ev.Name
		name := strings.TrimSpace(ev.Name)
		if name == "" {
			s.Message = MsgEnterTournamentName
			return s, nil
		}
		return s, []Effect{CreateTournamentEffect{Epoch: s.Epoch, Name: name}}

	case TournamentCreated:
		if ev.Epoch != s.Epoch {
			return s, nil
		}
		if ev.Err != nil {
			s.Message = services.ErrorMessage(ev.Err)
			return s, nil
		}
		s.TournamentName = ""
		load := LoadTournamentsEffect{Epoch: s.Epoch}
		if ev.Created != nil && ev.Created.JoinCode != "" {
			load.FollowUp = CreatedMessage(ev.Created.JoinCode)
		}
		return s, []Effect{load}

	case JoinTournament:
		if !s.Authenticated() {
			return s, nil
		}
		s.Message = ""
		s.JoinCode = strings.ToUpper(ev.Code)
		code := strings.TrimSpace(s.JoinCode)
		if code == "" {
			s.Message = MsgEnterJoinCode
			return s, nil
		}
		return s, []Effect{JoinTournamentEffect{Epoch: s.Epoch, Code: code}}

	case TournamentJoined:
		if ev.Epoch != s.Epoch {
			return s, nil
		}
		if ev.Err != nil {
			s.Message = services.ErrorMessage(ev.Err)
			return s, nil
		}
		s.JoinCode = ""
		return s, []Effect{LoadTournamentsEffect{Epoch: s.Epoch, FollowUp: MsgJoined}}

	case Logout:
		if !s.Authenticated() {
			return s, nil
		}
		s.Message = ""
		return s, []Effect{SignOutEffect{}}

	case SignedOut:
		// the gate flips on the session notification, not here
		if ev.Err != nil {
			s.Message = services.ErrorMessage(ev.Err)
		}
		return s, nil
	}
	return s, nil
}

// adoptSession replaces the held session and runs the gate transition, if any.
func adoptSession(s State, next *models.Session) (State, []Effect) {
	wasAuthenticated := s.Authenticated()
	s.Session = next

	switch {
	case !wasAuthenticated && next != nil:
		s.Epoch++
		s.Password = ""
		s.Message = ""
		return s, []Effect{LoadTournamentsEffect{Epoch: s.Epoch}}
	case wasAuthenticated && next == nil:
		s.Epoch++
		s.Tournaments = []models.Tournament{}
	}
	return s, nil
}
