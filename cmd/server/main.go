package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/duskfort/skirmish/pkg/console"
	"github.com/duskfort/skirmish/pkg/game"
	"github.com/duskfort/skirmish/pkg/logging"
)

func main() {
	defaults := game.DefaultConfig()

	address := flag.String("address", defaults.Address, "address to listen on")
	tickRate := flag.Int("tick-rate", defaults.TickRate, "simulation ticks per second")
	maxPlayers := flag.Int("max-players", defaults.MaxPlayers, "maximum concurrent players")
	maxPerRemote := flag.Int("max-players-per-remote", defaults.MaxPlayersPerRemote, "maximum concurrent players from one remote address")
	statsEvery := flag.Int64("stats-dump-every-ticks", defaults.StatsDumpEveryTicks, "how often, in ticks, to dump stats to the log")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log := logging.New(*logLevel, os.Stdout)

	cfg := game.Config{
		Address:             *address,
		TickRate:            *tickRate,
		MaxPlayers:          *maxPlayers,
		MaxPlayersPerRemote: *maxPerRemote,
		StatsDumpEveryTicks: *statsEvery,
	}

	srv := game.New(cfg, log)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	fmt.Println(console.Line(
		console.Colored("skirmish", console.Green),
		console.Plain(fmt.Sprintf(" listening on %s, %d ticks/s", cfg.Address, cfg.TickRate)),
	))

	log.Info().
		Str("address", cfg.Address).
		Int("tick_rate", cfg.TickRate).
		Int("max_players", cfg.MaxPlayers).
		Msg("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-srv.StopChan():
		log.Info().Msg("shutting down (internal)")
	}

	srv.Stop()
	log.Info().Msg("server stopped")
}
