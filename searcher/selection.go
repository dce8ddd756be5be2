package searcher

import (
	"fmt"

	"github.com/arixlin/hearthstone-ai/game"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type SelectionOption func(s *Selection)

func WithSelectPolicy(policy SelectPolicy) SelectionOption {
	return func(s *Selection) {
		if policy != nil {
			s.policy = policy
		}
	}
}

func WithRandomPolicy(policy RandomPolicy) SelectionOption {
	return func(s *Selection) {
		if policy != nil {
			s.random = policy
		}
	}
}

// WithSanctionedAfterChance sets which manual sub-actions may follow a random
// sub-action within the same main action.
func WithSanctionedAfterChance(sanctioned func(game.ActionType) bool) SelectionOption {
	return func(s *Selection) {
		if sanctioned != nil {
			s.sanctioned = sanctioned
		}
	}
}

// WithStrict makes every invariant violation panic instead of returning an error.
func WithStrict(strict bool) SelectionOption {
	return func(s *Selection) {
		s.strict = strict
	}
}

// ChooseOneAfterChance allows only choose-one cards to be resolved after a
// random sub-action, e.g. a random roll whose result scales the chosen effect.
func ChooseOneAfterChance(actionType game.ActionType) bool {
	return actionType == game.ChooseOne
}

// Selection walks the tree for one main action at a time and implements
// game.ActionChooser for the rules engine. It must not be shared between
// goroutines.
type Selection struct {
	path           []TraversedNodeInfo
	rng            *rand.Rand
	policy         SelectPolicy
	random         RandomPolicy
	sanctioned     func(game.ActionType) bool
	strict         bool
	newNodeCreated bool
	pendingRandoms bool
	released       bool
	err            error
}

func NewSelection(rng *rand.Rand, options ...SelectionOption) *Selection {
	s := &Selection{
		rng:        rng,
		policy:     NewUCT(CSquared),
		random:     UniformRandom{},
		sanctioned: ChooseOneAfterChance,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// StartNewMainAction resets the path to root and clears all per-iteration state.
func (s *Selection) StartNewMainAction(root *TreeNode) {
	s.path = []TraversedNodeInfo{newTraversedNodeInfo(root)}
	s.newNodeCreated = false
	s.pendingRandoms = false
	s.released = false
	s.err = nil
}

// ChooseAction returns the index chosen for one sub-action, never a negative
// value together with a nil error.
func (s *Selection) ChooseAction(view game.BoardView, actionType game.ActionType, choices game.ActionChoices) (int, error) {
	if s.err != nil {
		return -1, fmt.Errorf("%w: %w", ErrSelectionAborted, s.err)
	}
	if len(s.path) == 0 {
		panic("StartNewMainAction must be called before ChooseAction")
	}
	if choices.Empty() {
		return -1, s.fail(&InvariantError{
			Kind:       ErrInvalidChoices,
			Node:       s.frontier().ID(),
			ActionType: actionType,
			Detail:     "no legal choices",
		})
	}

	if actionType.IsChosenRandomly() {
		return s.chooseRandomly(actionType, choices)
	}
	if !actionType.IsChosenManually() {
		return -1, s.fail(&InvariantError{
			Kind:       ErrInvalidChoices,
			Node:       s.frontier().ID(),
			ActionType: actionType,
			Detail:     "unknown action type",
		})
	}

	last := &s.path[len(s.path)-1]
	if last.HasMadeChoice() {
		next, created, err := last.ConstructNextNode()
		if err != nil {
			return -1, s.fail(err)
		}
		if created {
			s.newNodeCreated = true
		}
		s.path = append(s.path, newTraversedNodeInfo(next))
	}

	current := &s.path[len(s.path)-1]
	node := current.GetNode()

	if s.pendingRandoms && !s.sanctioned(actionType) {
		// The random outcome would influence this decision, so the random
		// sub-action must be modeled after it
		return -1, s.fail(&InvariantError{
			Kind:       ErrOrderingViolation,
			Node:       node.ID(),
			ActionType: actionType,
			Detail:     "random sub-actions must be resolved after the manual sub-actions of a main action",
		})
	}

	// Checked before Select, so a rejected visit leaves no statistics behind
	if err := node.checkConsistency(view, actionType, choices); err != nil {
		return -1, s.fail(err)
	}
	choice, err := node.Select(actionType, choices, s.policy)
	if err != nil {
		return -1, s.fail(err)
	}

	current.MakeChoice(choice)
	return choice, nil
}

func (s *Selection) chooseRandomly(actionType game.ActionType, choices game.ActionChoices) (int, error) {
	if choices.Kind() != game.ChooseFromZeroToExclusiveMax {
		return -1, s.fail(&InvariantError{
			Kind:       ErrInvalidChoices,
			Node:       s.frontier().ID(),
			ActionType: actionType,
			Detail:     fmt.Sprintf("random sub-actions choose from a range, got %s", choices),
		})
	}

	s.pendingRandoms = true
	choice := s.random.GetRandom(s.rng, choices.Size())
	if choice < 0 || choice >= choices.Size() {
		return -1, s.fail(&InvariantError{
			Kind:       ErrInvalidChoice,
			Node:       s.frontier().ID(),
			ActionType: actionType,
			Detail:     fmt.Sprintf("random policy returned %d over %s", choice, choices),
		})
	}
	return choice, nil
}

// FinishMainAction seals the path of the main action that just ended and
// returns the node of the next main action, or nil if the game is over.
func (s *Selection) FinishMainAction(snapshot game.Snapshot, turnNodes *BoardNodeMap, result game.Result) (*TreeNode, error) {
	if s.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSelectionAborted, s.err)
	}
	if len(s.path) == 0 {
		panic("StartNewMainAction must be called before FinishMainAction")
	}

	last := &s.path[len(s.path)-1]
	if !last.HasMadeChoice() {
		return nil, s.fail(&InvariantError{
			Kind:       ErrInconsistentNode,
			Node:       last.GetNode().ID(),
			ActionType: game.MainAction,
			Detail:     "main action finished without any manual choice",
		})
	}
	if err := last.ConstructRedirectNode(); err != nil {
		return nil, s.fail(err)
	}

	if result.IsTerminal() {
		return nil, nil
	}

	next, created := turnNodes.GetOrCreateNode(snapshot)
	if actionType := next.ActionType(); actionType.IsValid() && actionType != game.MainAction {
		return nil, s.fail(&InvariantError{
			Kind:       ErrInconsistentNode,
			Node:       next.ID(),
			ActionType: actionType,
			Detail:     "board snapshot maps to a node that is not a main action",
		})
	}
	if created {
		s.newNodeCreated = true
	}
	return next, nil
}

func (s *Selection) fail(err error) error {
	s.err = err
	s.releasePath()
	log.Error().Err(err).Msg("selection-invariant-violation")
	if s.strict {
		panic(err)
	}
	return err
}

// releasePath takes back the virtual losses of the committed choices on the
// path. It runs at most once per main action.
func (s *Selection) releasePath() {
	if s.released {
		return
	}
	s.released = true
	releaseLosses(s.path)
}

func (s *Selection) frontier() *TreeNode {
	return s.path[len(s.path)-1].GetNode()
}

// Path returns the nodes traversed since the last StartNewMainAction. The
// returned slice stays valid after the next StartNewMainAction.
func (s *Selection) Path() []TraversedNodeInfo {
	return s.path
}

func (s *Selection) HasNewNodeCreated() bool {
	return s.newNodeCreated
}

func (s *Selection) HasPendingRandoms() bool {
	return s.pendingRandoms
}

// Err returns the violation that aborted the current main action, if any.
func (s *Selection) Err() error {
	return s.err
}
