package searcher

import (
	"math"

	"github.com/arixlin/hearthstone-ai/game"
	"golang.org/x/exp/rand"
)

// Hyperparameters for MCTS

const CSquared = 2.0 // Exploration constant

const WIN = 1.0  // Reward for winning outcome
const LOSS = 0.0 // Reward for losing outcome
const DRAW = (WIN + LOSS) / 2

// NodeStats is the read-only view of a node handed to a SelectPolicy.
type NodeStats interface {
	Visits() int
	Edge(choice int) EdgeStats
}

// SelectPolicy picks among the choices of a manual sub-action. It must return
// an index in [0, choices.Size()).
type SelectPolicy interface {
	Select(stats NodeStats, actionType game.ActionType, choices game.ActionChoices) int
}

// RandomPolicy resolves random sub-actions.
type RandomPolicy interface {
	GetRandom(rng *rand.Rand, size int) int
}

// UCT picks unexplored choices first, then the one maximizing UCB1.
type UCT struct {
	CSquared float64
}

func NewUCT(cSquared float64) UCT {
	return UCT{CSquared: cSquared}
}

func (p UCT) Select(stats NodeStats, _ game.ActionType, choices game.ActionChoices) int {
	total := 0.0
	for i := 0; i < choices.Size(); i++ {
		visits := stats.Edge(i).Visits
		if visits == 0 {
			return i
		}
		total += float64(visits)
	}
	if total == 0 {
		return -1
	}

	policy := newUCT(p.CSquared, total)
	best, bestScore := -1, math.Inf(-1)
	for i := 0; i < choices.Size(); i++ {
		e := stats.Edge(i)
		score := policy.evaluate(e.Credit, float64(e.Visits))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

type uct struct {
	numerator float64
}

func newUCT(cSquared float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: cSquared * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCT = q/n + sqrt(c^2*ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}

type UniformRandom struct{}

func (UniformRandom) GetRandom(rng *rand.Rand, size int) int {
	return rng.Intn(size)
}
