package searcher

import (
	"context"
	"fmt"
	"time"

	"github.com/arixlin/hearthstone-ai/experiments/metrics"
	"github.com/arixlin/hearthstone-ai/game"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// MaxCutoff bounds the number of main actions a rollout plays.
const MaxCutoff = 1000

type Option func(mcts *MCTS)

type MCTS struct {
	goroutines int
	duration   time.Duration
	episodes   int
	cutoff     int
	evaluate   game.Evaluate
	cSquared   float64
	seed       uint64
	strict     bool
	searches   uint64
	rng        *rand.Rand
	tree       *Tree
	turnNodes  *BoardNodeMap
	root       *TreeNode
	metrics    metrics.Collector
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithExploration(cSquared float64) Option {
	return func(m *MCTS) {
		if cSquared > 0 {
			m.cSquared = cSquared
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

// WithStrictChecks panics on the first invariant violation instead of failing
// the search with an error.
func WithStrictChecks(strict bool) Option {
	return func(m *MCTS) {
		m.strict = strict
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines: max(1, goroutines),
		cutoff:     MaxCutoff,
		evaluate:   game.EvaluateHealth,
		cSquared:   CSquared,
		seed:       uint64(time.Now().UnixNano()),
		metrics:    metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	m.rng = rand.New(rand.NewSource(m.seed))
	m.Reset()
	return m
}

// Reset drops the whole tree.
func (m *MCTS) Reset() {
	m.tree = NewTree()
	m.turnNodes = NewBoardNodeMap(m.tree)
	m.root = nil
}

func (m *MCTS) Tree() *Tree {
	return m.tree
}

func (m *MCTS) TurnNodes() *BoardNodeMap {
	return m.turnNodes
}

// Root is the node of the state passed to the last Simulate call.
func (m *MCTS) Root() *TreeNode {
	return m.root
}

// Simulate grows the tree below state for the configured number of episodes or
// duration. The tree of earlier searches is reused if it already holds state.
func (m *MCTS) Simulate(ctx context.Context, state game.State) (metrics.SearchMetric, error) {
	if result := state.Result(); result.IsTerminal() {
		return metrics.SearchMetric{}, fmt.Errorf("cannot search a finished game: %s", result)
	}

	m.findRoot(state)
	m.searches++

	// Run simulations to collect statistics
	m.metrics.Start(m.goroutines, m.cutoff)
	var err error
	if m.episodes > 0 {
		err = m.iterate(ctx, state)
	} else {
		err = m.countdown(ctx, state)
	}
	metric := m.metrics.Complete(m.tree.Size())
	if err != nil {
		return metric, fmt.Errorf("search failed: %w", err)
	}

	log.Debug().
		Int("episodes", metric.Episodes).
		Int("new-nodes", metric.NewNodes).
		Int("tree-size", metric.TreeSize).
		Bool("tree-reset", metric.IsTreeReset).
		Dur("duration", metric.Duration).
		Msg("search-complete")
	return metric, nil
}

func (m *MCTS) findRoot(state game.State) {
	snapshot := state.Snapshot()
	if root := m.turnNodes.Find(snapshot); root != nil {
		m.root = root
		m.metrics.SetTreeReset(false)
		return
	}

	m.Reset()
	m.root, _ = m.turnNodes.GetOrCreateNode(snapshot)
	m.metrics.SetTreeReset(true)
}

func (m *MCTS) iterate(ctx context.Context, state game.State) error {
	task := make(chan any, m.episodes)
	for i := 0; i < m.episodes; i++ {
		task <- nil
	}
	close(task)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < m.goroutines; i++ {
		w := m.newWorker(i)
		g.Go(func() error {
			for range task {
				if ctx.Err() != nil {
					return nil
				}
				if err := w.simulate(m.root, state); err != nil {
					return err
				}
				m.metrics.AddEpisode()
			}
			return nil
		})
	}
	return g.Wait()
}

func (m *MCTS) countdown(ctx context.Context, state game.State) error {
	ctx, cancel := context.WithTimeout(ctx, m.duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < m.goroutines; i++ {
		w := m.newWorker(i)
		g.Go(func() error {
			for ctx.Err() == nil {
				if err := w.simulate(m.root, state); err != nil {
					return err
				}
				m.metrics.AddEpisode()
			}
			return nil
		})
	}
	return g.Wait()
}

// Chooser plays the main action at the root by following the most visited
// choices. Off the tree it picks uniformly at random.
func (m *MCTS) Chooser() *BestChooser {
	return &BestChooser{
		node:     m.root,
		fallback: game.NewRandomChooser(m.rng),
	}
}

// worker runs iterations on one goroutine with its own random source and selection.
type worker struct {
	m         *MCTS
	selection *Selection
	rollout   game.ActionChooser
}

func (m *MCTS) newWorker(i int) *worker {
	seed := m.seed + m.searches*uint64(m.goroutines) + uint64(i) + 1
	rng := rand.New(rand.NewSource(seed))
	return &worker{
		m: m,
		selection: NewSelection(rng,
			WithSelectPolicy(NewUCT(m.cSquared)),
			WithStrict(m.strict),
		),
		rollout: game.NewRandomChooser(rng),
	}
}

func (w *worker) simulate(root *TreeNode, state game.State) error {
	state = state.Clone()
	turns, err := w.selectThenExpand(root, state)
	if err == nil {
		var reward func(player int) float64
		if reward, err = w.doRollout(state); err == nil {
			Backup(turns, reward)
			return nil
		}
	}

	// Abandoned iteration, take back every virtual loss it holds
	for _, turn := range turns {
		releaseLosses(turn.Path)
	}
	return err
}

// selectThenExpand plays main actions through the tree until one new node was
// added or the game ended. On error it returns the turns recorded so far; the
// path of the failed main action is released by the selection.
func (w *worker) selectThenExpand(root *TreeNode, state game.State) ([]TurnPath, error) {
	var turns []TurnPath
	chooser := &playoutChooser{selection: w.selection, rollout: w.rollout}

	node := root
	for node != nil {
		player := state.Player()
		w.selection.StartNewMainAction(node)
		chooser.inTree = true

		result, err := state.PlayMainAction(chooser)
		if err != nil {
			w.selection.releasePath()
			return turns, err
		}
		turn := TurnPath{Player: player, Path: w.selection.Path()}

		// Expanded within the main action, the rest of it was played by the rollout
		if w.selection.HasNewNodeCreated() {
			turns = append(turns, turn)
			w.m.metrics.AddNewNode()
			break
		}

		next, err := w.selection.FinishMainAction(state.Snapshot(), w.m.turnNodes, result)
		if err != nil {
			return turns, err
		}
		turns = append(turns, turn)
		if w.selection.HasNewNodeCreated() {
			w.m.metrics.AddNewNode()
			break
		}
		node = next
	}
	return turns, nil
}

func (w *worker) doRollout(state game.State) (func(player int) float64, error) {
	depth := 0
	// Rollout till game over or for cutoff number of main actions
	for !state.Result().IsTerminal() && depth < w.m.cutoff {
		if _, err := state.PlayMainAction(w.rollout); err != nil {
			return nil, err
		}
		depth++
	}

	if result := state.Result(); result.IsTerminal() {
		w.m.metrics.AddFullPlayout()
		return resultRewarder(result), nil
	}
	return evaluationRewarder(state, w.m.evaluate), nil
}

// playoutChooser hands sub-actions to the selection until a new node was
// created, and to the rollout chooser from then on.
type playoutChooser struct {
	selection *Selection
	rollout   game.ActionChooser
	inTree    bool
}

func (c *playoutChooser) ChooseAction(view game.BoardView, actionType game.ActionType, choices game.ActionChoices) (int, error) {
	if c.inTree && c.selection.HasNewNodeCreated() {
		c.inTree = false
	}
	if c.inTree {
		return c.selection.ChooseAction(view, actionType, choices)
	}
	return c.rollout.ChooseAction(view, actionType, choices)
}

// BestChooser replays the statistics of a finished search for one main action.
type BestChooser struct {
	node     *TreeNode
	choice   int
	pending  bool // choice was made at node and not yet followed
	fallback game.ActionChooser
}

func (c *BestChooser) ChooseAction(view game.BoardView, actionType game.ActionType, choices game.ActionChoices) (int, error) {
	if !actionType.IsChosenManually() {
		return c.fallback.ChooseAction(view, actionType, choices)
	}

	if c.node != nil && c.pending {
		c.node = c.node.Child(c.choice)
		c.pending = false
	}
	if c.node == nil {
		return c.fallback.ChooseAction(view, actionType, choices)
	}

	choice, ok := c.node.BestChoice(choices)
	if !ok {
		var err error
		choice, err = c.fallback.ChooseAction(view, actionType, choices)
		if err != nil {
			return -1, err
		}
	}
	c.choice = choice
	c.pending = true
	return choice, nil
}
