// File: services/tournament_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"zeus-tournaments/logger"
	"zeus-tournaments/models"
)

// TournamentService is the data half of the backend. Every call runs as the owner of
// accessToken; an empty token runs anonymously. Membership filtering, join-code generation
// and authorization all happen server-side.
type TournamentService interface {
	ListTournaments(ctx context.Context, accessToken string) ([]models.Tournament, error)
	CreateTournament(ctx context.Context, accessToken, name string) (*models.CreatedTournament, error)
	JoinTournament(ctx context.Context, accessToken, joinCode string) error
}

// RestTournamentService calls the REST table and procedure endpoints.
type RestTournamentService struct {
	api *restClient
}

// NewRestTournamentService creates a service rooted at baseURL.
func NewRestTournamentService(baseURL, anonKey string, httpClient *http.Client) *RestTournamentService {
	return &RestTournamentService{api: newRestClient(baseURL, anonKey, httpClient)}
}

// ListTournaments returns the caller's tournaments, newest first.
func (s *RestTournamentService) ListTournaments(ctx context.Context, accessToken string) ([]models.Tournament, error) {
	q := url.Values{
		"select": {models.TournamentColumns},
		"order":  {"created_at.desc"},
	}
	var rows []models.Tournament
	if err := s.api.doJSON(ctx, http.MethodGet, "/rest/v1/tournaments", q, accessToken, nil, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Tournament{}
	}
	logger.Debug.Printf("[RestTournamentService.ListTournaments] fetched %d tournaments", len(rows))
	return rows, nil
}

// CreateTournament calls create_tournament and returns its first row, or nil when the
// procedure returned none.
func (s *RestTournamentService) CreateTournament(ctx context.Context, accessToken, name string) (*models.CreatedTournament, error) {
	var rows createdRows
	body := map[string]string{"p_name": name}
	if err := s.api.doJSON(ctx, http.MethodPost, "/rest/v1/rpc/create_tournament", nil, accessToken, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	logger.Info.Printf("[RestTournamentService.CreateTournament] created %q with join code %s", name, rows[0].JoinCode)
	return &rows[0], nil
}

// createdRows is the create procedure's result, returned as a set of rows or as a single
// composite. Scalars and null mean the tournament exists but there is no row to read.
type createdRows []models.CreatedTournament

func (r *createdRows) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*r = nil
		return nil
	}
	switch data[0] {
	case '[':
		var rows []models.CreatedTournament
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		*r = rows
	case '{':
		var row models.CreatedTournament
		if err := json.Unmarshal(data, &row); err != nil {
			return err
		}
		*r = createdRows{row}
	default:
		*r = nil
	}
	return nil
}

// JoinTournament calls join_tournament; the result body is ignored.
func (s *RestTournamentService) JoinTournament(ctx context.Context, accessToken, joinCode string) error {
	body := map[string]string{"p_join_code": joinCode}
	if err := s.api.doJSON(ctx, http.MethodPost, "/rest/v1/rpc/join_tournament", nil, accessToken, body, nil); err != nil {
		return err
	}
	logger.Info.Printf("[RestTournamentService.JoinTournament] joined tournament with code %s", joinCode)
	return nil
}
