package searcher

import (
	"fmt"

	"github.com/arixlin/hearthstone-ai/game"
)

// Fingerprint is the decision context a tree position presented when it was
// first reached.
type Fingerprint struct {
	View       uint64
	ActionType game.ActionType
	Choices    game.ActionChoices
}

func newFingerprint(view game.BoardView, actionType game.ActionType, choices game.ActionChoices) Fingerprint {
	return Fingerprint{View: view.Digest(), ActionType: actionType, Choices: choices}
}

func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.View == other.View && f.ActionType == other.ActionType && f.Choices.Equal(other.Choices)
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("view=%016x type=%s choices=%s", f.View, f.ActionType, f.Choices)
}

// ConsistencyChecker records the first fingerprint of a node and compares every
// later visit against it.
type ConsistencyChecker struct {
	recorded *Fingerprint
}

// SetAndCheck initializes the fingerprint on the first call. Later calls fail
// with ErrInconsistentNode unless they observe the same fingerprint.
func (c *ConsistencyChecker) SetAndCheck(view game.BoardView, actionType game.ActionType, choices game.ActionChoices) error {
	observed := newFingerprint(view, actionType, choices)
	if c.recorded == nil {
		c.recorded = &observed
		return nil
	}
	if !c.recorded.Equal(observed) {
		recorded := *c.recorded
		return &InvariantError{
			Kind:       ErrInconsistentNode,
			ActionType: actionType,
			Recorded:   &recorded,
			Observed:   &observed,
			Detail:     "decision context differs from the first visit",
		}
	}
	return nil
}

// Recorded returns the first-seen fingerprint, if any.
func (c *ConsistencyChecker) Recorded() (Fingerprint, bool) {
	if c.recorded == nil {
		return Fingerprint{}, false
	}
	return *c.recorded, true
}
