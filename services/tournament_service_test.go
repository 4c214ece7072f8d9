// file: services/tournament_service_test.go
package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const springOpenRow = `{
	"id": "3f1c2a8e-9a3e-4c1d-8f5e-2b7d6c4a1e90",
	"name": "Spring Open",
	"join_code": "B1C2D3",
	"created_at": "2025-04-01T10:00:00+00:00",
	"created_by": "0b6f4a7c-1d2e-4f3a-9b8c-7d6e5f4a3b21"
}`

func newRestService(t *testing.T, h http.HandlerFunc) *RestTournamentService {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRestTournamentService(srv.URL+"/", "anon-key", srv.Client())
}

func TestListTournaments_QueryShape(t *testing.T) {
	svc := newRestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/tournaments", r.URL.Path)
		assert.Equal(t, "id,name,join_code,created_at,created_by", r.URL.Query().Get("select"))
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		_, _ = w.Write([]byte("[" + springOpenRow + "]"))
	})

	list, err := svc.ListTournaments(context.Background(), "user-token")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Spring Open", list[0].Name)
	assert.Equal(t, "B1C2D3", list[0].JoinCode)
}

func TestListTournaments_AnonymousUsesAnonKey(t *testing.T) {
	svc := newRestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("[]"))
	})

	list, err := svc.ListTournaments(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListTournaments_BackendError(t *testing.T) {
	svc := newRestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"PGRST301","details":null,"hint":null,"message":"JWT expired"}`))
	})

	list, err := svc.ListTournaments(context.Background(), "user-token")
	assert.Nil(t, list)
	require.Error(t, err)
	assert.Equal(t, "JWT expired", ErrorMessage(err))
}

func TestCreateTournament_ReturnsFirstRow(t *testing.T) {
	svc := newRestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/rpc/create_tournament", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, map[string]string{"p_name": "Summer Cup"}, payload)
		_, _ = w.Write([]byte(`[{"id":"3f1c2a8e-9a3e-4c1d-8f5e-2b7d6c4a1e90","name":"Summer Cup","join_code":"A2K9QF"}]`))
	})

	created, err := svc.CreateTournament(context.Background(), "user-token", "Summer Cup")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "A2K9QF", created.JoinCode)
}

func TestCreateTournament_NoRows(t *testing.T) {
	svc := newRestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	created, err := svc.CreateTournament(context.Background(), "user-token", "Summer Cup")
	require.NoError(t, err)
	assert.Nil(t, created)
}

func TestCreateTournament_ResultShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantRow  bool
	}{
		{"single composite", `{"id":12,"name":"Summer Cup","join_code":"A2K9QF"}`, "A2K9QF", true},
		{"set of rows", `[{"id":12,"name":"Summer Cup","join_code":"A2K9QF"},{"id":13,"join_code":"ZZZZZZ"}]`, "A2K9QF", true},
		{"bare scalar", `"A2K9QF"`, "", false},
		{"null", `null`, "", false},
		{"empty body", ``, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newRestService(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			created, err := svc.CreateTournament(context.Background(), "user-token", "Summer Cup")
			require.NoError(t, err)
			if !tt.wantRow {
				assert.Nil(t, created)
				return
			}
			require.NotNil(t, created)
			assert.Equal(t, tt.wantCode, created.JoinCode)
		})
	}
}

func TestListTournaments_TolerantRowShapes(t *testing.T) {
	svc := newRestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":7,"name":"Bigint Cup","join_code":"B1C2D3","created_at":"2025-04-01T10:00:00.123456","created_by":null},
			{"id":"3f1c2a8e-9a3e-4c1d-8f5e-2b7d6c4a1e90","name":"Uuid Cup","join_code":"A2K9QF","created_at":"2025-03-01T09:00:00+00:00","created_by":"0b6f4a7c-1d2e-4f3a-9b8c-7d6e5f4a3b21"}
		]`))
	})

	list, err := svc.ListTournaments(context.Background(), "user-token")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "7", list[0].ID.String())
	assert.Empty(t, list[0].CreatedBy)
	assert.Equal(t, 2025, list[0].CreatedAt.Year())
	assert.Equal(t, "3f1c2a8e-9a3e-4c1d-8f5e-2b7d6c4a1e90", list[1].ID.String())
}

func TestJoinTournament(t *testing.T) {
	var got map[string]string
	svc := newRestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/join_tournament", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, svc.JoinTournament(context.Background(), "user-token", "B1C2D3"))
	assert.Equal(t, "B1C2D3", got["p_join_code"])
}

func TestJoinTournament_InvalidCode(t *testing.T) {
	svc := newRestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"P0001","message":"Invalid join code"}`))
	})

	err := svc.JoinTournament(context.Background(), "user-token", "ZZZZZZ")
	require.Error(t, err)
	assert.Equal(t, "Invalid join code", ErrorMessage(err))
}
