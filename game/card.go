package game

type CardID int

const (
	Spark     CardID = iota // 1 mana: deal 2 damage to a chosen hero
	Strike                  // 2 mana: deal 3 damage to the enemy hero
	WildBolt                // 2 mana: deal 4 damage to a random hero
	Bloom                   // 1 mana: choose one - gain 3 armor or draw a card
	Gamble                  // 2 mana: roll a bonus of 0-2, then choose one - deal 1+bonus damage or restore 1+bonus health
	Barrier                 // 1 mana: gain 2 armor
	NumCards
)

type Card struct {
	ID   CardID
	Name string
	Cost int
}

var Cards = [NumCards]Card{
	Spark:    {ID: Spark, Name: "Spark", Cost: 1},
	Strike:   {ID: Strike, Name: "Strike", Cost: 2},
	WildBolt: {ID: WildBolt, Name: "Wild Bolt", Cost: 2},
	Bloom:    {ID: Bloom, Name: "Bloom", Cost: 1},
	Gamble:   {ID: Gamble, Name: "Gamble", Cost: 2},
	Barrier:  {ID: Barrier, Name: "Barrier", Cost: 1},
}

func (id CardID) String() string {
	if id < 0 || id >= NumCards {
		return "unknown"
	}
	return Cards[id].Name
}

// CardCounts holds how many copies of every card a hand or deck contains. It
// keeps snapshots canonical: two hands with the same cards compare equal
// regardless of draw order.
type CardCounts [NumCards]int

func (c CardCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Nth returns the card at position n when the cards are laid out in ID order.
func (c CardCounts) Nth(n int) CardID {
	for id, count := range c {
		if n < count {
			return CardID(id)
		}
		n -= count
	}
	panic("card position out of range")
}

// StandardDeck is the deck list both players start with.
func StandardDeck() CardCounts {
	return CardCounts{
		Spark:    3,
		Strike:   2,
		WildBolt: 2,
		Bloom:    2,
		Gamble:   2,
		Barrier:  1,
	}
}
