// Package viewtest provides an in-memory view.Backend for tests.
// File: view/viewtest/backend.go
package viewtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"zeus-tournaments/models"
	"zeus-tournaments/services"
)

// Password is the only password Backend accepts.
const Password = "correct horse"

// Backend behaves like the hosted service for one view: signing in stores a session and
// notifies subscribers on the calling goroutine. Created tournaments get join code
// NextCode.
type Backend struct {
	NextCode string

	mu          sync.Mutex
	session     *models.Session
	tournaments []models.Tournament
	codes       map[string]models.Tournament
	listeners   map[int]func(*models.Session)
	nextID      int
	listCalls   int
	listGate    chan struct{}
	listing     chan struct{}
}

// NewBackend returns a signed-out backend.
func NewBackend() *Backend {
	return &Backend{
		NextCode:  "A2K9QF",
		codes:     make(map[string]models.Tournament),
		listeners: make(map[int]func(*models.Session)),
	}
}

// NewSession returns a session for email valid for an hour.
func NewSession(email string) *models.Session {
	return &models.Session{
		AccessToken: "token-" + uuid.NewString(),
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
		User:        models.User{ID: uuid.NewString(), Email: email},
	}
}

// StoreSession sets the stored session without notifying, as if left by an earlier visit.
func (b *Backend) StoreSession(s *models.Session) {
	b.mu.Lock()
	b.session = s
	b.mu.Unlock()
}

// SetSession sets the session and notifies subscribers, as an out-of-band change would.
func (b *Backend) SetSession(s *models.Session) {
	b.mu.Lock()
	b.session = s
	fns := make([]func(*models.Session), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// AddTournament puts t on the caller's list.
func (b *Backend) AddTournament(t models.Tournament) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tournaments = append(b.tournaments, t)
	b.codes[t.JoinCode] = t
}

// Publish makes t joinable by its code without adding it to the caller's list.
func (b *Backend) Publish(t models.Tournament) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes[t.JoinCode] = t
}

// ListCalls reports how many times ListTournaments ran.
func (b *Backend) ListCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

// Subscribers reports the number of live session subscriptions.
func (b *Backend) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// BlockLists makes the next ListTournaments call wait. The returned channel is closed
// once that call has started; call release to let it finish.
func (b *Backend) BlockLists() (started <-chan struct{}, release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	gate := make(chan struct{})
	b.listGate = gate
	b.listing = make(chan struct{})
	var once sync.Once
	return b.listing, func() { once.Do(func() { close(gate) }) }
}

func (b *Backend) GetSession(ctx context.Context) (*models.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session, nil
}

func (b *Backend) OnSessionChange(fn func(*models.Session)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

func (b *Backend) SignUp(ctx context.Context, email, password string) error {
	if !strings.Contains(email, "@") {
		return &services.BackendError{Status: 400, Message: "Unable to validate email address: invalid format"}
	}
	b.SetSession(NewSession(email))
	return nil
}

func (b *Backend) SignInWithPassword(ctx context.Context, email, password string) error {
	if password != Password {
		return &services.BackendError{Status: 400, Message: "Invalid login credentials"}
	}
	b.SetSession(NewSession(email))
	return nil
}

func (b *Backend) SignOut(ctx context.Context) error {
	b.SetSession(nil)
	return nil
}

func (b *Backend) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	b.mu.Lock()
	b.listCalls++
	gate, listing := b.listGate, b.listing
	b.listGate, b.listing = nil, nil
	b.mu.Unlock()

	if gate != nil {
		close(listing)
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return []models.Tournament{}, nil
	}
	return append([]models.Tournament(nil), b.tournaments...), nil
}

func (b *Backend) CreateTournament(ctx context.Context, name string) (*models.CreatedTournament, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil, &services.BackendError{Status: 400, Message: "not authenticated"}
	}
	t := models.Tournament{
		ID:        models.RowID(uuid.NewString()),
		Name:      name,
		JoinCode:  b.NextCode,
		CreatedAt: time.Now(),
		CreatedBy: models.RowID(b.session.User.ID),
	}
	b.tournaments = append([]models.Tournament{t}, b.tournaments...)
	b.codes[t.JoinCode] = t
	return &models.CreatedTournament{ID: t.ID, Name: t.Name, JoinCode: t.JoinCode}, nil
}

func (b *Backend) JoinTournament(ctx context.Context, joinCode string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return &services.BackendError{Status: 400, Message: "not authenticated"}
	}
	t, ok := b.codes[joinCode]
	if !ok {
		return &services.BackendError{Status: 400, Message: "invalid join code"}
	}
	for _, have := range b.tournaments {
		if have.ID == t.ID {
			return nil
		}
	}
	b.tournaments = append(b.tournaments, t)
	return nil
}
