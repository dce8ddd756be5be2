package game

import "golang.org/x/exp/rand"

// RandomChooser picks uniformly among the choices of every sub-action, manual or
// random alike.
type RandomChooser struct {
	rng *rand.Rand
}

func NewRandomChooser(rng *rand.Rand) *RandomChooser {
	return &RandomChooser{rng: rng}
}

func (c *RandomChooser) ChooseAction(_ BoardView, _ ActionType, choices ActionChoices) (int, error) {
	return c.rng.Intn(choices.Size()), nil
}
