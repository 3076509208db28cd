// Command rotate runs one rotation invocation: fetch players, pick the next
// country after the last one added, store that country's players, exit.
// Fetch failures and empty fetches are logged and exit normally; storage
// failures are fatal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"player_rotation/ingestion/internal/app"
	"player_rotation/ingestion/internal/config"
	"player_rotation/ingestion/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoad()
	logging.Setup(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rotator, cleanup, err := app.NewRotator(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rotator")
	}

	res, err := rotator.Run(ctx)
	cleanup()
	if err != nil {
		log.Fatal().Err(err).Msg("Rotation failed")
	}

	log.Info().
		Str("outcome", string(res.Outcome)).
		Str("country", res.Country).
		Int("players_added", res.PlayersAdded).
		Msg("Rotation complete")
}
