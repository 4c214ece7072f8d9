// Package models defines data structures used across the application.
// File: models/tournament.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ------------------------ row identifiers -----------------------

// RowID is an identifier the backend owns. Tables may key rows by uuid, bigint or
// text, so the client keeps it as an opaque string.
type RowID string

func (id RowID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *RowID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("row id: %w", err)
	}
	*id = RowID(n.String())
	return nil
}

// Scan lets database drivers fill a RowID from uuid, integer or text columns.
func (id *RowID) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*id = ""
	case string:
		*id = RowID(v)
	case []byte:
		*id = RowID(v)
	case int64:
		*id = RowID(strconv.FormatInt(v, 10))
	case [16]byte:
		*id = RowID(fmt.Sprintf("%x-%x-%x-%x-%x", v[0:4], v[4:6], v[6:8], v[8:10], v[10:16]))
	default:
		return fmt.Errorf("cannot scan %T into RowID", src)
	}
	return nil
}

// ------------------------ tournament model -----------------------

// Tournament is a row of the tournaments table as the backend returns it.
type Tournament struct {
	ID        RowID     `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"join_code"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy RowID     `json:"created_by"`
}

// Layouts a created_at value may arrive in. Columns without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp reads a backend timestamp with or without a zone offset.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// UnmarshalJSON decodes a row, tolerating created_at without a zone offset or null.
func (t *Tournament) UnmarshalJSON(data []byte) error {
	type row Tournament
	var raw struct {
		row
		CreatedAt *string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Tournament(raw.row)
	t.CreatedAt = time.Time{}
	if raw.CreatedAt != nil && *raw.CreatedAt != "" {
		created, err := ParseTimestamp(*raw.CreatedAt)
		if err != nil {
			return err
		}
		t.CreatedAt = created
	}
	return nil
}

// TournamentColumns is the projection the dashboard lists.
const TournamentColumns = "id,name,join_code,created_at,created_by"

// CreatedTournament is the first row returned by the create procedure.
// Only JoinCode is relied on; the list refetch is the source of truth.
type CreatedTournament struct {
	ID       RowID  `json:"id"`
	Name     string `json:"name"`
	JoinCode string `json:"join_code"`
}
