package searcher

import (
	"fmt"
	"sync"

	"github.com/arixlin/hearthstone-ai/game"
)

// EdgeStats are the statistics of one choice at a node, from the perspective of
// the player making that choice.
type EdgeStats struct {
	Visits int
	Credit float64
}

type edge struct {
	child    NodeID // NoNode until the choice leads to another sub-action
	redirect bool   // the choice ended the main action
	stats    EdgeStats
}

// Addon holds per-node data that is not part of the search statistics.
type Addon struct {
	ConsistencyChecker ConsistencyChecker
}

// TreeNode is a decision point: the set of states reachable by a specific
// prefix of manual choices from the last main-action node.
type TreeNode struct {
	sync.Mutex
	id         NodeID
	parent     NodeID
	tree       *Tree
	actionType game.ActionType
	children   map[int]*edge
	visits     int
	addon      Addon
}

func (n *TreeNode) ID() NodeID {
	return n.id
}

// Parent is a weak back-reference used for bookkeeping only. Turn roots have no
// parent since they are shared by every path that transposes into them.
func (n *TreeNode) Parent() NodeID {
	return n.parent
}

// ActionType is InvalidAction until the node was visited once.
func (n *TreeNode) ActionType() game.ActionType {
	n.Lock()
	defer n.Unlock()

	return n.actionType
}

func (n *TreeNode) Visits() int {
	n.Lock()
	defer n.Unlock()

	return n.visits
}

// GetAddon exposes the addon slot. It is not synchronized; use it only while no
// search runs on the tree.
func (n *TreeNode) GetAddon() *Addon {
	return &n.addon
}

// Select asks policy for one of choices, given the node's edge statistics. The
// chosen edge takes a virtual loss until backup, steering concurrent
// iterations towards other choices.
func (n *TreeNode) Select(actionType game.ActionType, choices game.ActionChoices, policy SelectPolicy) (int, error) {
	n.Lock()
	choice := policy.Select(nodeStats{n}, actionType, choices)
	valid := choice >= 0 && choice < choices.Size()
	if valid {
		n.applyLossLocked(choice)
	}
	n.Unlock()

	if !valid {
		return -1, &InvariantError{
			Kind:       ErrInvalidChoice,
			Node:       n.id,
			ActionType: actionType,
			Detail:     fmt.Sprintf("policy returned %d over %s", choice, choices),
		}
	}
	return choice, nil
}

func (n *TreeNode) checkConsistency(view game.BoardView, actionType game.ActionType, choices game.ActionChoices) error {
	n.Lock()
	defer n.Unlock()

	if err := n.addon.ConsistencyChecker.SetAndCheck(view, actionType, choices); err != nil {
		if invariant, ok := err.(*InvariantError); ok {
			invariant.Node = n.id
		}
		return err
	}
	n.actionType = actionType
	return nil
}

// edgeLocked returns the edge for choice, creating it if needed. Caller holds the lock.
func (n *TreeNode) edgeLocked(choice int) *edge {
	if n.children == nil {
		n.children = make(map[int]*edge)
	}
	e, ok := n.children[choice]
	if !ok {
		e = &edge{child: NoNode}
		n.children[choice] = e
	}
	return e
}

// nextNode is the create-or-get of the child behind choice.
func (n *TreeNode) nextNode(choice int) (*TreeNode, bool, error) {
	n.Lock()
	defer n.Unlock()

	e := n.edgeLocked(choice)
	if e.redirect {
		return nil, false, &InvariantError{
			Kind:       ErrInconsistentNode,
			Node:       n.id,
			ActionType: n.actionType,
			Detail:     fmt.Sprintf("choice %d ended the main action before but now leads to another sub-action", choice),
		}
	}
	if e.child != NoNode {
		return n.tree.Node(e.child), false, nil
	}

	child := n.tree.newNode(n.id)
	e.child = child.id
	return child, true, nil
}

// redirect seals choice as the last sub-action of a main action.
func (n *TreeNode) redirect(choice int) error {
	n.Lock()
	defer n.Unlock()

	e := n.edgeLocked(choice)
	if e.child != NoNode {
		return &InvariantError{
			Kind:       ErrInconsistentNode,
			Node:       n.id,
			ActionType: n.actionType,
			Detail:     fmt.Sprintf("choice %d led to another sub-action before but now ends the main action", choice),
		}
	}
	e.redirect = true
	return nil
}

// Update records one playout through choice.
func (n *TreeNode) Update(choice int, credit float64) {
	n.Lock()
	defer n.Unlock()

	n.updateLocked(choice, credit)
}

// backup replaces the virtual loss taken by Select with the playout's credit.
func (n *TreeNode) backup(choice int, credit float64) {
	n.Lock()
	defer n.Unlock()

	n.reverseLossLocked(choice)
	n.updateLocked(choice, credit)
}

// releaseLoss drops the virtual loss taken by Select for a visit that is abandoned.
func (n *TreeNode) releaseLoss(choice int) {
	n.Lock()
	defer n.Unlock()

	n.reverseLossLocked(choice)
}

func (n *TreeNode) updateLocked(choice int, credit float64) {
	n.visits++
	e := n.edgeLocked(choice)
	e.stats.Visits++
	e.stats.Credit += credit
}

func (n *TreeNode) applyLossLocked(choice int) {
	n.updateLocked(choice, LOSS)
}

func (n *TreeNode) reverseLossLocked(choice int) {
	n.visits--
	e := n.edgeLocked(choice)
	e.stats.Visits--
	e.stats.Credit -= LOSS
}

func (n *TreeNode) Edge(choice int) (EdgeStats, bool) {
	n.Lock()
	defer n.Unlock()

	e, ok := n.children[choice]
	if !ok {
		return EdgeStats{}, false
	}
	return e.stats, true
}

// Child returns the node behind choice, or nil if there is none yet.
func (n *TreeNode) Child(choice int) *TreeNode {
	n.Lock()
	defer n.Unlock()

	e, ok := n.children[choice]
	if !ok || e.child == NoNode {
		return nil
	}
	return n.tree.Node(e.child)
}

func (n *TreeNode) IsRedirect(choice int) bool {
	n.Lock()
	defer n.Unlock()

	e, ok := n.children[choice]
	return ok && e.redirect
}

func (n *TreeNode) ChildCount() int {
	n.Lock()
	defer n.Unlock()

	count := 0
	for _, e := range n.children {
		if e.child != NoNode {
			count++
		}
	}
	return count
}

// BestChoice returns the most visited of choices, or false if none was visited.
func (n *TreeNode) BestChoice(choices game.ActionChoices) (int, bool) {
	n.Lock()
	defer n.Unlock()

	best, bestVisits := -1, 0
	for i := 0; i < choices.Size(); i++ {
		if e, ok := n.children[i]; ok && e.stats.Visits > bestVisits {
			best, bestVisits = i, e.stats.Visits
		}
	}
	return best, best >= 0
}

// nodeStats reads a node whose lock is already held.
type nodeStats struct {
	n *TreeNode
}

func (s nodeStats) Visits() int {
	return s.n.visits
}

func (s nodeStats) Edge(choice int) EdgeStats {
	if e, ok := s.n.children[choice]; ok {
		return e.stats
	}
	return EdgeStats{}
}
