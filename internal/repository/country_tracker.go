package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"player_rotation/ingestion/internal/metrics"
	"player_rotation/ingestion/internal/models"
)

// CountryTrackerRepository handles the append-only country_tracker log
type CountryTrackerRepository struct {
	db *Database
}

// append adds one tracker row using q, which may be a transaction
func (r *CountryTrackerRepository) append(ctx context.Context, q execer, row *models.CountryTrackerRow) error {
	query := r.db.rebind(`
		INSERT INTO country_tracker (country, last_added_date)
		VALUES (?, ?)
	`)

	if _, err := q.ExecContext(ctx, query, row.Country, row.LastAddedDate); err != nil {
		return fmt.Errorf("failed to record country: %w", err)
	}
	return nil
}

// LastAddedCountry returns the country of the most recent tracker row.
// ok is false when nothing has been recorded yet.
func (r *CountryTrackerRepository) LastAddedCountry(ctx context.Context) (country string, ok bool, err error) {
	start := time.Now()
	query := `
		SELECT country
		FROM country_tracker
		ORDER BY last_added_date DESC, id DESC
		LIMIT 1
	`

	var last sql.NullString
	err = r.db.DB.QueryRowContext(ctx, query).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("last_country", "success", time.Since(start).Seconds())
		return "", false, nil
	}
	if err != nil {
		metrics.RecordDBQuery("last_country", "error", time.Since(start).Seconds())
		return "", false, fmt.Errorf("failed to get last added country: %w", err)
	}

	metrics.RecordDBQuery("last_country", "success", time.Since(start).Seconds())
	if !last.Valid {
		return "", false, nil
	}
	return last.String, true, nil
}

// List retrieves the tracker log, oldest first
func (r *CountryTrackerRepository) List(ctx context.Context) ([]*models.CountryTrackerRow, error) {
	rows, err := r.db.DB.QueryContext(ctx, `
		SELECT id, country, last_added_date
		FROM country_tracker
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list country tracker: %w", err)
	}
	defer rows.Close()

	var entries []*models.CountryTrackerRow
	for rows.Next() {
		var e models.CountryTrackerRow
		if err := rows.Scan(&e.ID, &e.Country, &e.LastAddedDate); err != nil {
			return nil, fmt.Errorf("failed to scan country tracker row: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country tracker: %w", err)
	}

	return entries, nil
}

// Count returns the number of tracker rows
func (r *CountryTrackerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM country_tracker`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count country tracker rows: %w", err)
	}
	return count, nil
}
