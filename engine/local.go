package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/arixlin/hearthstone-ai/experiments/metrics"
	"github.com/arixlin/hearthstone-ai/game"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var _ Engine = (*LocalGame)(nil)

// LocalGame runs a game in process, one agent per player.
type LocalGame struct {
	State    game.State
	Agents   []Agent // Agents[i] plays as player i+1
	maxMoves int
	chance   game.ActionChooser
}

// LocalEngine plays state with agents, resolving random sub-actions with rng.
func LocalEngine(agents []Agent, state game.State, maxMoves int, rng *rand.Rand) *LocalGame {
	if len(agents) != 2 {
		panic("need exactly two agents")
	}
	if maxMoves <= 0 {
		maxMoves = MaxMoves
	}
	return &LocalGame{
		State:    state,
		Agents:   agents,
		maxMoves: maxMoves,
		chance:   game.NewRandomChooser(rng),
	}
}

// Run executes the game loop until the game is over or the move limit is hit.
func (e *LocalGame) Run(ctx context.Context) (game.Result, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.State.Player(),
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("player %d is starting", e.State.Player())

	step := 0
	for !e.State.Result().IsTerminal() && step < e.maxMoves {
		if err := ctx.Err(); err != nil {
			return e.State.Result(), e.complete(gameMetric, step), moveMetrics, err
		}

		player := e.State.Player()
		chooser, metric, err := e.Agents[player-1].FindMove(ctx, e.State)
		if err != nil {
			return e.State.Result(), e.complete(gameMetric, step), moveMetrics, fmt.Errorf("player %d failed to find a move: %w", player, err)
		}
		step++
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			SearchMetric: metric,
		})

		if _, err := e.State.PlayMainAction(&referee{agent: chooser, chance: e.chance}); err != nil {
			return e.State.Result(), e.complete(gameMetric, step), moveMetrics, fmt.Errorf("player %d played an illegal move: %w", player, err)
		}
	}

	result := e.State.Result()
	if !result.IsTerminal() {
		log.Warn().Int("moves", step).Msg("stopped at the move limit")
	}
	log.Info().Str("result", result.String()).Int("moves", step).Msg("game-over")
	return result, e.complete(gameMetric, step), moveMetrics, nil
}

func (e *LocalGame) complete(gameMetric metrics.GameMetric, moves int) metrics.GameMetric {
	result := e.State.Result()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Winner = result.Winner()
	gameMetric.Result = result.String()
	gameMetric.TotalMoves = moves
	return gameMetric
}

// referee hands the decisions to the agent and resolves chance itself, so no
// agent can pick a random outcome.
type referee struct {
	agent  game.ActionChooser
	chance game.ActionChooser
}

func (r *referee) ChooseAction(view game.BoardView, actionType game.ActionType, choices game.ActionChoices) (int, error) {
	if actionType.IsChosenRandomly() {
		return r.chance.ChooseAction(view, actionType, choices)
	}
	return r.agent.ChooseAction(view, actionType, choices)
}
