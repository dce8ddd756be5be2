package game

import (
	"fmt"
	"slices"
)

type ChoicesKind int

const (
	ChooseFromZeroToExclusiveMax ChoicesKind = iota
	ChooseFromCardIDs
)

// ActionChoices is the set of legal choices for one sub-action. Choices are
// always addressed by index; for card lists the index maps to a card ID.
type ActionChoices struct {
	kind    ChoicesKind
	max     int
	cardIDs []CardID
}

func NewRangeChoices(max int) ActionChoices {
	return ActionChoices{kind: ChooseFromZeroToExclusiveMax, max: max}
}

func NewCardChoices(ids []CardID) ActionChoices {
	return ActionChoices{kind: ChooseFromCardIDs, cardIDs: slices.Clone(ids)}
}

func (c ActionChoices) Kind() ChoicesKind {
	return c.kind
}

func (c ActionChoices) Size() int {
	if c.kind == ChooseFromCardIDs {
		return len(c.cardIDs)
	}
	return c.max
}

func (c ActionChoices) Empty() bool {
	return c.Size() <= 0
}

// Get returns the value behind a choice index: the index itself for ranges,
// the card ID for card lists.
func (c ActionChoices) Get(index int) int {
	if index < 0 || index >= c.Size() {
		panic(fmt.Sprintf("choice index %d out of range [0, %d)", index, c.Size()))
	}
	if c.kind == ChooseFromCardIDs {
		return int(c.cardIDs[index])
	}
	return index
}

func (c ActionChoices) Equal(other ActionChoices) bool {
	if c.kind != other.kind {
		return false
	}
	if c.kind == ChooseFromCardIDs {
		return slices.Equal(c.cardIDs, other.cardIDs)
	}
	return c.max == other.max
}

func (c ActionChoices) String() string {
	if c.kind == ChooseFromCardIDs {
		return fmt.Sprintf("cards%v", c.cardIDs)
	}
	return fmt.Sprintf("range[0,%d)", c.max)
}
