package repository

import (
	"context"
	"fmt"

	"player_rotation/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// PlayerRepository handles players table operations
type PlayerRepository struct {
	db *Database
}

// insert adds one player row using q, which may be a transaction
func (r *PlayerRepository) insert(ctx context.Context, q execer, row *models.PlayerRow) error {
	query := r.db.rebind(`
		INSERT INTO players (player_id, player_name, country, date_added)
		VALUES (?, ?, ?, ?)
	`)

	_, err := q.ExecContext(ctx, query,
		row.PlayerID, row.PlayerName, row.Country, row.DateAdded,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}

	log.Debug().
		Str("player_id", row.PlayerID.String).
		Str("country", row.Country).
		Msg("Player inserted")

	return nil
}

// ListByCountry retrieves all player rows for a country in insertion order
func (r *PlayerRepository) ListByCountry(ctx context.Context, country string) ([]*models.PlayerRow, error) {
	query := r.db.rebind(`
		SELECT id, player_id, player_name, country, date_added
		FROM players
		WHERE country = ?
		ORDER BY id
	`)

	rows, err := r.db.DB.QueryContext(ctx, query, country)
	if err != nil {
		return nil, fmt.Errorf("failed to list players by country: %w", err)
	}
	defer rows.Close()

	var players []*models.PlayerRow
	for rows.Next() {
		var p models.PlayerRow
		if err := rows.Scan(&p.ID, &p.PlayerID, &p.PlayerName, &p.Country, &p.DateAdded); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}

// Count returns the total number of player rows
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// CountByCountry returns the number of player rows for a country
func (r *PlayerRepository) CountByCountry(ctx context.Context, country string) (int, error) {
	query := r.db.rebind(`SELECT COUNT(*) FROM players WHERE country = ?`)

	var count int
	if err := r.db.DB.QueryRowContext(ctx, query, country).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players by country: %w", err)
	}
	return count, nil
}
