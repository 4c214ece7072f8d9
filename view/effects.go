// File: view/effects.go
package view

// Effect describes one backend call the loop must make. Each effect produces exactly
// one result event.
type Effect interface {
	isEffect()
}

type ReadSessionEffect struct{}

type SignUpEffect struct {
	Email    string
	Password string
}

type SignInEffect struct {
	Email    string
	Password string
}

type SignOutEffect struct{}

type LoadTournamentsEffect struct {
	Epoch    uint64
	FollowUp string
}

type CreateTournamentEffect struct {
	Epoch uint64
	Name  string
}

type JoinTournamentEffect struct {
	Epoch uint64
	Code  string
}

func (ReadSessionEffect) isEffect()      {}
func (SignUpEffect) isEffect()           {}
func (SignInEffect) isEffect()           {}
func (SignOutEffect) isEffect()          {}
func (LoadTournamentsEffect) isEffect()  {}
func (CreateTournamentEffect) isEffect() {}
func (JoinTournamentEffect) isEffect()   {}
