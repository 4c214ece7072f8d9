// File: services/client.go
package services

import (
	"context"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"zeus-tournaments/models"
)

// Client is the whole external service as one browser view sees it: the auth half plus
// the data half, with the view's current access token attached to data calls.
type Client struct {
	Auth        *AuthClient
	Tournaments TournamentService
	Metrics     Metrics
	Tracing     bool
}

// NewClient composes a Client. A nil metrics sink records nothing.
func NewClient(auth *AuthClient, tournaments TournamentService, metrics Metrics, tracing bool) *Client {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Client{Auth: auth, Tournaments: tournaments, Metrics: metrics, Tracing: tracing}
}

// observe wraps one operation with metrics and, when enabled, a trace segment.
func (c *Client) observe(ctx context.Context, op string, fn func(context.Context) error) error {
	var seg *xray.Segment
	if c.Tracing {
		ctx, seg = xray.BeginSegment(ctx, op)
	}
	start := time.Now()
	err := fn(ctx)
	c.Metrics.ObserveCall(op, time.Since(start), err)
	if seg != nil {
		seg.Close(err)
	}
	return err
}

func (c *Client) GetSession(ctx context.Context) (*models.Session, error) {
	var s *models.Session
	err := c.observe(ctx, "GetSession", func(ctx context.Context) error {
		var err error
		s, err = c.Auth.GetSession(ctx)
		return err
	})
	return s, err
}

// OnSessionChange forwards session transitions; call the returned func to stop.
func (c *Client) OnSessionChange(fn func(*models.Session)) func() {
	sub := c.Auth.OnSessionChange(func(_ AuthEvent, s *models.Session) { fn(s) })
	return sub.Unsubscribe
}

func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.observe(ctx, "SignUp", func(ctx context.Context) error {
		return c.Auth.SignUp(ctx, email, password)
	})
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) error {
	return c.observe(ctx, "SignInWithPassword", func(ctx context.Context) error {
		return c.Auth.SignInWithPassword(ctx, email, password)
	})
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.observe(ctx, "SignOut", c.Auth.SignOut)
}

// accessToken is the current session's token, or "" to call anonymously.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	s, err := c.Auth.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return s.AccessToken, nil
}

func (c *Client) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	var list []models.Tournament
	err := c.observe(ctx, "ListTournaments", func(ctx context.Context) error {
		token, err := c.accessToken(ctx)
		if err != nil {
			return err
		}
		list, err = c.Tournaments.ListTournaments(ctx, token)
		return err
	})
	return list, err
}

func (c *Client) CreateTournament(ctx context.Context, name string) (*models.CreatedTournament, error) {
	var created *models.CreatedTournament
	err := c.observe(ctx, "CreateTournament", func(ctx context.Context) error {
		token, err := c.accessToken(ctx)
		if err != nil {
			return err
		}
		created, err = c.Tournaments.CreateTournament(ctx, token, name)
		return err
	})
	return created, err
}

func (c *Client) JoinTournament(ctx context.Context, joinCode string) error {
	return c.observe(ctx, "JoinTournament", func(ctx context.Context) error {
		token, err := c.accessToken(ctx)
		if err != nil {
			return err
		}
		return c.Tournaments.JoinTournament(ctx, token, joinCode)
	})
}
