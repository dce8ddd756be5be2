package searcher

import (
	"errors"
	"fmt"

	"github.com/arixlin/hearthstone-ai/game"
)

var (
	// A manual sub-action followed a random one within the same main action
	ErrOrderingViolation = errors.New("manual sub-action after a random sub-action")
	// The same tree position was reached with a different decision context
	ErrInconsistentNode = errors.New("inconsistent tree node")
	// A selection policy returned an index outside of the choices
	ErrInvalidChoice = errors.New("invalid choice")
	// The rules engine passed choices the selection cannot work with
	ErrInvalidChoices = errors.New("invalid choices")
	// The selection hit a violation earlier in this main action
	ErrSelectionAborted = errors.New("selection aborted after invariant violation")
)

// InvariantError carries the context of a violated tree invariant so the
// offending game model can be diagnosed offline.
type InvariantError struct {
	Kind       error
	Node       NodeID
	ActionType game.ActionType
	Recorded   *Fingerprint // fingerprint stored on the node, if any
	Observed   *Fingerprint // fingerprint seen on this visit, if any
	Detail     string
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("%v at node %d (%s)", e.Kind, e.Node, e.ActionType)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Recorded != nil && e.Observed != nil {
		msg += fmt.Sprintf(" [recorded %s, observed %s]", e.Recorded, e.Observed)
	}
	return msg
}

func (e *InvariantError) Unwrap() error {
	return e.Kind
}
