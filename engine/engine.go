package engine

import (
	"context"

	"github.com/arixlin/hearthstone-ai/experiments/metrics"
	"github.com/arixlin/hearthstone-ai/game"
)

const MaxMoves = 10000

type Engine interface {
	// Run plays a game till there's a result or a max number of main actions is reached
	Run(ctx context.Context) (game.Result, metrics.GameMetric, []metrics.MoveMetric, error)
}
