package experiments

import (
	"context"
	"fmt"
	"time"

	"github.com/arixlin/hearthstone-ai/config"
	"github.com/arixlin/hearthstone-ai/engine"
	"github.com/arixlin/hearthstone-ai/experiments/metrics"
	"github.com/arixlin/hearthstone-ai/game"
	"github.com/arixlin/hearthstone-ai/searcher"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Run plays cfg.Games games between the two configured agents, swapping seats
// every game, and stores the results. It returns the directory of the run.
func Run(ctx context.Context, cfg *config.Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	writer, err := metrics.NewWriter(cfg.OutputDir, cfg.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	logger := log.With().Str("experiment", cfg.Name).Str("run", writer.RunID()).Logger()
	logger.Info().Uint64("seed", seed).Msgf("starting %d games...", cfg.Games)

	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	for i := 0; i < cfg.Games; i++ {
		// Alternate the starting agent
		seats := [2]config.AgentConfig{cfg.Agents[0], cfg.Agents[1]}
		if i%2 == 1 {
			seats[0], seats[1] = seats[1], seats[0]
		}

		logger.Info().Msgf("starting game %d of %d with agent %d as player 1", i+1, cfg.Games, seats[0].ID)
		gameSeed := seed + uint64(i)*3
		result, gameMetric, moveMetrics, err := runGame(ctx, cfg, seats, gameSeed)
		if err != nil {
			return writer.Dir(), fmt.Errorf("game %d failed: %w", i+1, err)
		}

		record := metrics.GameRecord{
			ID:         i + 1,
			Agent1:     seats[0].ID,
			Agent2:     seats[1].ID,
			GameMetric: gameMetric,
		}
		if winner := result.Winner(); winner != 0 {
			record.WinnerAgent = seats[winner-1].ID
		}
		gameRecords = append(gameRecords, record)
		for _, mm := range moveMetrics {
			moveRecords = append(moveRecords, metrics.MoveRecord{
				Game:       record.ID,
				Agent:      seats[mm.Player-1].ID,
				MoveMetric: mm,
			})
		}

		logger.Info().Msgf("completed game %d of %d with result %s", i+1, cfg.Games, result)
	}

	if err := store(writer, cfg, gameRecords, moveRecords); err != nil {
		return writer.Dir(), err
	}
	logger.Info().Str("dir", writer.Dir()).Msg("completed experiment")
	return writer.Dir(), nil
}

func store(writer *metrics.Writer, cfg *config.Config, games []metrics.GameRecord, moves []metrics.MoveRecord) error {
	// Store experiment metadata
	if err := writer.WriteConfig(cfg); err != nil {
		return err
	}
	if err := writer.WriteAgentConfigs(cfg.Agents); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	// Store experiment results
	if err := writer.WriteGameRecords(games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	return nil
}

// runGame plays a single game between the agents seated as player 1 and 2.
func runGame(ctx context.Context, cfg *config.Config, seats [2]config.AgentConfig, seed uint64) (game.Result, metrics.GameMetric, []metrics.MoveMetric, error) {
	agents := []engine.Agent{
		NewAgent(seats[0], seed+1, cfg.Strict),
		NewAgent(seats[1], seed+2, cfg.Strict),
	}
	rng := rand.New(rand.NewSource(seed))
	e := engine.LocalEngine(agents, game.NewDuel(rng), cfg.MaxMoves, rng)
	return e.Run(ctx)
}

// NewAgent builds the agent described by an already validated config.
func NewAgent(c config.AgentConfig, seed uint64, strict bool) engine.Agent {
	if c.Kind == config.KindRandom {
		return engine.NewRandomAgent(rand.New(rand.NewSource(seed)))
	}
	return engine.NewMCTSAgent(createMCTS(c, seed, strict))
}

func createMCTS(c config.AgentConfig, seed uint64, strict bool) *searcher.MCTS {
	options := []searcher.Option{
		searcher.WithSeed(seed),
		searcher.WithStrictChecks(strict),
	}

	if c.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(c.Episodes))
	}
	if c.Duration > 0 {
		options = append(options, searcher.WithDuration(c.Duration))
	}
	if c.Cutoff > 0 {
		options = append(options, searcher.WithCutoff(c.Cutoff))
	}
	if c.Exploration > 0 {
		options = append(options, searcher.WithExploration(c.Exploration))
	}

	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(c.Goroutines, options...)
}
