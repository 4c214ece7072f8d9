// File: services/postgres_tournament_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"zeus-tournaments/logger"
	"zeus-tournaments/models"
)

// PostgresTournamentService runs the same operations directly against the backend's
// database. Each call is a transaction that impersonates the caller the way the REST
// gateway does, so row-level security and the procedures see the same identity.
type PostgresTournamentService struct {
	db *pgxpool.Pool
}

// ConnectPostgres opens a pool for databaseURL and verifies it with a ping.
func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

// NewPostgresTournamentService wraps an open pool.
func NewPostgresTournamentService(db *pgxpool.Pool) *PostgresTournamentService {
	return &PostgresTournamentService{db: db}
}

// requestClaims builds the request.jwt.claims value and database role for a caller.
func requestClaims(accessToken string) (string, string, error) {
	if accessToken == "" {
		return `{"role":"anon"}`, "anon", nil
	}
	claims, err := AccessTokenClaims(accessToken)
	if err != nil {
		return "", "", &BackendError{Message: err.Error()}
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = "authenticated"
	}
	b, err := json.Marshal(claims)
	if err != nil {
		return "", "", fmt.Errorf("encode claims: %w", err)
	}
	return string(b), role, nil
}

// asCaller runs fn inside a transaction scoped to the caller's claims and role.
func (p *PostgresTournamentService) asCaller(ctx context.Context, accessToken string, fn func(pgx.Tx) error) error {
	claims, role, err := requestClaims(accessToken)
	if err != nil {
		return err
	}
	err = pgx.BeginTxFunc(ctx, p.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT set_config('request.jwt.claims', $1, true)`, claims); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "SET LOCAL ROLE "+pgx.Identifier{role}.Sanitize()); err != nil {
			return err
		}
		return fn(tx)
	})
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) {
			return be
		}
		return fromPgError(err)
	}
	return nil
}

// ListTournaments returns the tournaments visible to the caller, newest first.
func (p *PostgresTournamentService) ListTournaments(ctx context.Context, accessToken string) ([]models.Tournament, error) {
	q := `
		SELECT id, name, join_code, created_at, created_by
		FROM public.tournaments
		ORDER BY created_at DESC
	`
	list := []models.Tournament{}
	err := p.asCaller(ctx, accessToken, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t models.Tournament
			var created *time.Time
			if err := rows.Scan(&t.ID, &t.Name, &t.JoinCode, &created, &t.CreatedBy); err != nil {
				return err
			}
			if created != nil {
				t.CreatedAt = *created
			}
			list = append(list, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	logger.Debug.Printf("[PostgresTournamentService.ListTournaments] fetched %d tournaments", len(list))
	return list, nil
}

// CreateTournament calls create_tournament and returns its first row, if any.
func (p *PostgresTournamentService) CreateTournament(ctx context.Context, accessToken, name string) (*models.CreatedTournament, error) {
	var created *models.CreatedTournament
	err := p.asCaller(ctx, accessToken, func(tx pgx.Tx) error {
		var c models.CreatedTournament
		err := tx.QueryRow(ctx, `SELECT id, name, join_code FROM public.create_tournament($1)`, name).
			Scan(&c.ID, &c.Name, &c.JoinCode)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		created = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// JoinTournament calls join_tournament for the caller.
func (p *PostgresTournamentService) JoinTournament(ctx context.Context, accessToken, joinCode string) error {
	return p.asCaller(ctx, accessToken, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `SELECT public.join_tournament($1)`, joinCode)
		return err
	})
}
