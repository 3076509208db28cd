package models

import (
	"bytes"
	"database/sql"
	"time"

	"github.com/goccy/go-json"
)

// PlayerID is the API's opaque player identifier.
// The API sends it either as a string or as a number; both are kept in textual form.
type PlayerID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *PlayerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PlayerID(s)
		return nil
	}

	*id = PlayerID(data)
	return nil
}

// Player is a player record as returned by the API
type Player struct {
	ID      PlayerID `json:"id"`
	Name    string   `json:"name"`
	Country string   `json:"country"`
}

// PlayerRow represents a persisted row of the players table
type PlayerRow struct {
	ID         int64          `db:"id"`
	PlayerID   sql.NullString `db:"player_id"`
	PlayerName sql.NullString `db:"player_name"`
	Country    string         `db:"country"`
	DateAdded  time.Time      `db:"date_added"`
}

// ToPlayerRow converts an API Player to a row stamped with addedAt
func (p *Player) ToPlayerRow(addedAt time.Time) *PlayerRow {
	row := &PlayerRow{
		Country:   p.Country,
		DateAdded: addedAt.UTC(),
	}

	if p.ID != "" {
		row.PlayerID = sql.NullString{String: string(p.ID), Valid: true}
	}
	if p.Name != "" {
		row.PlayerName = sql.NullString{String: p.Name, Valid: true}
	}

	return row
}

// CountryTrackerRow is one entry of the append-only country_tracker log
type CountryTrackerRow struct {
	ID            int64     `db:"id"`
	Country       string    `db:"country"`
	LastAddedDate time.Time `db:"last_added_date"`
}
