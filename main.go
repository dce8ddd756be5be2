package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/arixlin/hearthstone-ai/config"
	"github.com/arixlin/hearthstone-ai/experiments"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfgPath := flag.String("config", "", "Path to a YAML experiment config")
	experiment := flag.String("experiment", "", "Experiment name, overrides the config")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := config.Setup(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *experiment != "" {
		cfg.Name = *experiment
	}
	level, err := cfg.Level()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dir, err := experiments.Run(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("experiment failed")
	}
	log.Info().Str("dir", dir).Msg("results stored")
}
