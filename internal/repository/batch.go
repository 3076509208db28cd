package repository

import (
	"context"
	"fmt"
	"time"

	"player_rotation/ingestion/internal/metrics"
	"player_rotation/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// LastAddedCountry returns the most recently recorded country
func (db *Database) LastAddedCountry(ctx context.Context) (string, bool, error) {
	return db.Countries.LastAddedCountry(ctx)
}

// AddCountryBatch stores all players of one country and records the country
// in the tracker, in a single transaction. Each player row gets its own
// timestamp; the tracker row is stamped after the last player insert.
func (db *Database) AddCountryBatch(ctx context.Context, country string, players []models.Player) (int, error) {
	start := time.Now()

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordDBQuery("add_country_batch", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("%w: starting transaction: %w", ErrStorageWrite, err)
	}
	defer tx.Rollback()

	for i := range players {
		row := players[i].ToPlayerRow(time.Now())
		row.Country = country
		if err := db.Players.insert(ctx, tx, row); err != nil {
			metrics.RecordDBQuery("add_country_batch", "error", time.Since(start).Seconds())
			return 0, fmt.Errorf("%w: %w", ErrStorageWrite, err)
		}
	}

	entry := &models.CountryTrackerRow{
		Country:       country,
		LastAddedDate: time.Now().UTC(),
	}
	if err := db.Countries.append(ctx, tx, entry); err != nil {
		metrics.RecordDBQuery("add_country_batch", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBQuery("add_country_batch", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("%w: committing transaction: %w", ErrStorageWrite, err)
	}
	metrics.RecordDBQuery("add_country_batch", "success", time.Since(start).Seconds())

	log.Info().
		Int("count", len(players)).
		Str("country", country).
		Dur("duration", time.Since(start)).
		Msgf("Added %d players from %s to the database.", len(players), country)

	return len(players), nil
}
