package game

// ActionType classifies a sub-action: who resolves it and what kind of choice it is.
type ActionType int

const (
	InvalidAction ActionType = iota
	MainAction               // play a card or end the turn
	RandomAction             // resolved by chance
	ChooseHandCard
	ChooseTarget
	ChooseOne // pick one of several card effects
)

func (t ActionType) IsValid() bool {
	return t > InvalidAction && t <= ChooseOne
}

func (t ActionType) IsChosenRandomly() bool {
	return t == RandomAction
}

func (t ActionType) IsChosenManually() bool {
	return t.IsValid() && !t.IsChosenRandomly()
}

func (t ActionType) String() string {
	switch t {
	case MainAction:
		return "main-action"
	case RandomAction:
		return "random"
	case ChooseHandCard:
		return "choose-hand-card"
	case ChooseTarget:
		return "choose-target"
	case ChooseOne:
		return "choose-one"
	default:
		return "invalid"
	}
}
