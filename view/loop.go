// File: view/loop.go
package view

import (
	"context"
	"sync"

	"zeus-tournaments/logger"
	"zeus-tournaments/models"
)

// Backend is the external auth and data service as one view uses it.
type Backend interface {
	GetSession(ctx context.Context) (*models.Session, error)
	OnSessionChange(fn func(*models.Session)) (unsubscribe func())
	SignUp(ctx context.Context, email, password string) error
	SignInWithPassword(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	CreateTournament(ctx context.Context, name string) (*models.CreatedTournament, error)
	JoinTournament(ctx context.Context, joinCode string) error
}

// envelope carries an event into the loop. ack, when set, is closed once the loop is
// idle again after handling the event.
type envelope struct {
	event Event
	ack   chan struct{}
}

// effectDone wraps the result of an effect so the loop knows the worker is free.
type effectDone struct {
	result Event
}

func (effectDone) isEvent() {}

// settle is a no-op event used as a barrier.
type settle struct{}

func (settle) isEvent() {}

const eventBuffer = 64

// Loop owns one view's State. User actions, session notifications and backend results
// all arrive on one channel and are applied one at a time by a single goroutine.
// Backend calls run on a single worker in the order they were issued.
type Loop struct {
	id      string
	backend Backend

	events chan envelope
	work   chan Effect
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.RWMutex
	state     State
	watchers  map[int]func(State)
	nextWatch int
	onClose   []func()

	unsubscribe func()
	startOnce   sync.Once
	closeOnce   sync.Once
}

// NewLoop creates a stopped loop for the view id.
func NewLoop(id string, backend Backend) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		id:       id,
		backend:  backend,
		events:   make(chan envelope, eventBuffer),
		work:     make(chan Effect),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		state:    NewState(),
		watchers: make(map[int]func(State)),
	}
}

// ID returns the view id.
func (l *Loop) ID() string {
	return l.id
}

// Start subscribes to session changes and reads the current session.
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		l.unsubscribe = l.backend.OnSessionChange(func(s *models.Session) {
			l.post(envelope{event: SessionChanged{Session: s}})
		})
		go l.worker()
		go l.run()
		l.post(envelope{event: Init{}})
		logger.Debug.Printf("[Loop.Start] view=%s started", l.id)
	})
}

// OnClose registers fn to run when the loop closes.
func (l *Loop) OnClose(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onClose = append(l.onClose, fn)
}

// Close unsubscribes, stops the loop and abandons queued calls. A call already running
// sees its context cancelled.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		if l.unsubscribe != nil {
			l.unsubscribe()
		}
		l.cancel()
		l.startOnce.Do(func() { close(l.done) })
		<-l.done

		l.mu.Lock()
		hooks := l.onClose
		l.onClose = nil
		l.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
		logger.Debug.Printf("[Loop.Close] view=%s closed", l.id)
	})
}

// Dispatch queues e without waiting.
func (l *Loop) Dispatch(e Event) {
	l.post(envelope{event: e})
}

// DispatchAndWait queues e and returns once every backend call it caused has finished
// and been applied, or ctx ends.
func (l *Loop) DispatchAndWait(ctx context.Context, e Event) error {
	ack := make(chan struct{})
	if !l.post(envelope{event: e, ack: ack}) {
		return context.Canceled
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return context.Canceled
	}
}

// Settle waits until every event queued so far, and every call they caused, is applied.
func (l *Loop) Settle(ctx context.Context) error {
	return l.DispatchAndWait(ctx, settle{})
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Snapshot returns the current state.
func (l *Loop) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Watch calls fn with every new state until the returned cancel func is called.
// fn runs on the loop goroutine and must not block.
func (l *Loop) Watch(fn func(State)) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextWatch++
	id := l.nextWatch
	l.watchers[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.watchers, id)
		l.mu.Unlock()
	}
}

func (l *Loop) post(env envelope) bool {
	select {
	case l.events <- env:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// run is the only goroutine that changes state.
func (l *Loop) run() {
	defer close(l.done)

	state := l.Snapshot()
	var queue []Effect
	busy := false
	var waiters []chan struct{}

	for {
		select {
		case <-l.ctx.Done():
			for _, w := range waiters {
				close(w)
			}
			return

		case env := <-l.events:
			event := env.event
			if d, ok := event.(effectDone); ok {
				busy = false
				event = d.result
			}

			next, effects := Reduce(state, event)
			queue = append(queue, effects...)

			if !busy && len(queue) > 0 {
				select {
				case l.work <- queue[0]:
				case <-l.ctx.Done():
					continue
				}
				queue = queue[1:]
				busy = true
			}
			next.Pending = busy

			if prev := state.Screen(); prev != next.Screen() {
				logger.Info.Printf("[Loop.run] view=%s screen %s -> %s", l.id, prev, next.Screen())
			}
			state = next
			l.publish(state)

			// waiters see the published state
			if env.ack != nil {
				waiters = append(waiters, env.ack)
			}
			if !busy {
				for _, w := range waiters {
					close(w)
				}
				waiters = nil
			}
		}
	}
}

func (l *Loop) publish(s State) {
	l.mu.Lock()
	l.state = s
	fns := make([]func(State), 0, len(l.watchers))
	for _, fn := range l.watchers {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// worker executes effects one at a time and posts each result back to the loop.
func (l *Loop) worker() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case eff := <-l.work:
			result := l.execute(eff)
			l.post(envelope{event: effectDone{result: result}})
		}
	}
}

func (l *Loop) execute(eff Effect) Event {
	ctx := l.ctx
	switch e := eff.(type) {
	case ReadSessionEffect:
		s, err := l.backend.GetSession(ctx)
		if err != nil {
			logger.Warn.Printf("[Loop.execute] view=%s reading session failed: %v", l.id, err)
		}
		return SessionRead{Session: s}

	case SignUpEffect:
		err := l.backend.SignUp(ctx, e.Email, e.Password)
		l.logResult("SignUp", err)
		return AuthSubmitted{Err: err}

	case SignInEffect:
		err := l.backend.SignInWithPassword(ctx, e.Email, e.Password)
		l.logResult("SignInWithPassword", err)
		return AuthSubmitted{Err: err}

	case SignOutEffect:
		err := l.backend.SignOut(ctx)
		l.logResult("SignOut", err)
		return SignedOut{Err: err}

	case LoadTournamentsEffect:
		list, err := l.backend.ListTournaments(ctx)
		l.logResult("ListTournaments", err)
		return TournamentsLoaded{Epoch: e.Epoch, Tournaments: list, FollowUp: e.FollowUp, Err: err}

	case CreateTournamentEffect:
		created, err := l.backend.CreateTournament(ctx, e.Name)
		l.logResult("CreateTournament", err)
		return TournamentCreated{Epoch: e.Epoch, Created: created, Err: err}

	case JoinTournamentEffect:
		err := l.backend.JoinTournament(ctx, e.Code)
		l.logResult("JoinTournament", err)
		return TournamentJoined{Epoch: e.Epoch, Err: err}
	}
	logger.Error.Printf("[Loop.execute] view=%s unknown effect %T", l.id, eff)
	return nil
}

func (l *Loop) logResult(op string, err error) {
	if err != nil {
		logger.Warn.Printf("[Loop.execute] view=%s %s failed: %v", l.id, op, err)
		return
	}
	logger.Debug.Printf("[Loop.execute] view=%s %s ok", l.id, op)
}
