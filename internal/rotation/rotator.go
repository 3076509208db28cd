package rotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"player_rotation/ingestion/internal/lock"
	"player_rotation/ingestion/internal/metrics"
	"player_rotation/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Outcome describes how an invocation ended
type Outcome string

const (
	OutcomeAdded     Outcome = "added"
	OutcomeNoData    Outcome = "no_data"
	OutcomeNoPlayers Outcome = "no_players"
	OutcomeLocked    Outcome = "locked"
	OutcomeFailed    Outcome = "failed"
)

// Result is the summary of one invocation
type Result struct {
	Outcome      Outcome
	Country      string
	PlayersAdded int
}

// Fetcher returns the current players grouped by country. Failures are
// reported as an empty result.
type Fetcher interface {
	FetchPlayersGroupedByCountry(ctx context.Context) models.CountryGroups
}

// Store is the persisted state the rotation reads and appends to
type Store interface {
	LastAddedCountry(ctx context.Context) (string, bool, error)
	AddCountryBatch(ctx context.Context, country string, players []models.Player) (int, error)
	Close() error
}

// OpenFunc acquires a Store for the duration of one invocation
type OpenFunc func(ctx context.Context) (Store, error)

// Rotator runs one fetch/select/write invocation at a time
type Rotator struct {
	fetcher Fetcher
	open    OpenFunc
	locker  lock.Locker
}

// NewRotator creates a Rotator. A nil locker disables locking.
func NewRotator(fetcher Fetcher, open OpenFunc, locker lock.Locker) *Rotator {
	if locker == nil {
		locker = lock.Nop{}
	}
	return &Rotator{
		fetcher: fetcher,
		open:    open,
		locker:  locker,
	}
}

// Run performs one invocation. No-op outcomes return a nil error; storage
// failures are returned.
func (r *Rotator) Run(ctx context.Context) (res Result, err error) {
	start := time.Now()
	defer func() {
		outcome := res.Outcome
		if err != nil {
			outcome = OutcomeFailed
		}
		metrics.RecordRotation(string(outcome), time.Since(start).Seconds())
	}()

	release, err := r.locker.Acquire(ctx)
	if errors.Is(err, lock.ErrLockHeld) {
		log.Warn().Msg("Another invocation is in progress, skipping")
		return Result{Outcome: OutcomeLocked}, nil
	}
	if err != nil {
		metrics.RecordError("rotator", "lock")
		return Result{}, fmt.Errorf("failed to acquire invocation lock: %w", err)
	}
	defer release()

	groups := r.fetcher.FetchPlayersGroupedByCountry(ctx)
	if len(groups) == 0 {
		log.Info().Msg("No player data fetched.")
		return Result{Outcome: OutcomeNoData}, nil
	}

	store, err := r.open(ctx)
	if err != nil {
		metrics.RecordError("rotator", "storage_unavailable")
		return Result{}, fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close store")
		}
	}()

	country, err := selectCountry(ctx, store, groups)
	if err != nil {
		metrics.RecordError("rotator", "select")
		return Result{}, err
	}

	players := groups[country]
	if len(players) == 0 {
		log.Info().Str("country", country).Msgf("No players found for country %s.", country)
		return Result{Outcome: OutcomeNoPlayers, Country: country}, nil
	}

	added, err := store.AddCountryBatch(ctx, country, players)
	if err != nil {
		metrics.RecordError("rotator", "storage_write")
		return Result{}, fmt.Errorf("failed to add players from %s: %w", country, err)
	}
	metrics.RecordPlayersAdded(country, added)

	return Result{
		Outcome:      OutcomeAdded,
		Country:      country,
		PlayersAdded: added,
	}, nil
}

// selectCountry reads the last added country and computes the next one
func selectCountry(ctx context.Context, store Store, groups models.CountryGroups) (string, error) {
	last, ok, err := store.LastAddedCountry(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read last added country: %w", err)
	}

	next := NextCountry(last, ok, groups)

	log.Info().
		Str("last_country", last).
		Str("next_country", next).
		Int("countries", len(groups)).
		Msg("Selected next country")

	return next, nil
}
