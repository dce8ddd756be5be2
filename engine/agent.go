package engine

import (
	"context"

	"github.com/arixlin/hearthstone-ai/experiments/metrics"
	"github.com/arixlin/hearthstone-ai/game"
	"github.com/arixlin/hearthstone-ai/searcher"
	"golang.org/x/exp/rand"
)

// Agent decides the next main action of the acting player. The returned
// chooser is asked for the manual sub-actions of exactly one main action.
type Agent interface {
	FindMove(ctx context.Context, state game.State) (game.ActionChooser, metrics.SearchMetric, error)
}

type MCTSAgent struct {
	mcts *searcher.MCTS
}

func NewMCTSAgent(mcts *searcher.MCTS) *MCTSAgent {
	return &MCTSAgent{mcts: mcts}
}

func (a *MCTSAgent) FindMove(ctx context.Context, state game.State) (game.ActionChooser, metrics.SearchMetric, error) {
	metric, err := a.mcts.Simulate(ctx, state)
	if err != nil {
		return nil, metric, err
	}
	return a.mcts.Chooser(), metric, nil
}

type RandomAgent struct {
	chooser *game.RandomChooser
}

func NewRandomAgent(rng *rand.Rand) *RandomAgent {
	return &RandomAgent{chooser: game.NewRandomChooser(rng)}
}

func (a *RandomAgent) FindMove(_ context.Context, _ game.State) (game.ActionChooser, metrics.SearchMetric, error) {
	return a.chooser, metrics.SearchMetric{}, nil
}
