package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"golang.org/x/exp/rand"
)

const (
	StartingHealth = 15
	MaxMana        = 5
	MaxHandSize    = 6
	StartingHand   = 3
	MaxTurns       = 40 // the game is a draw after this many turns
)

const (
	mainPlayCard = 0
	mainEndTurn  = 1

	targetEnemyHero = 0
	targetOwnHero   = 1
)

type Hero struct {
	Health int
	Armor  int
}

// takeDamage lets armor absorb damage first.
func (h *Hero) takeDamage(amount int) {
	absorbed := min(h.Armor, amount)
	h.Armor -= absorbed
	h.Health -= amount - absorbed
}

func (h *Hero) restore(amount int) {
	h.Health = min(StartingHealth, h.Health+amount)
}

type Side struct {
	Hero    Hero
	Hand    CardCounts
	Deck    CardCounts
	Fatigue int
}

// Duel is a small two-player card game used to exercise the searcher. All of its
// fields are values, so copying a Duel copies the whole game.
type Duel struct {
	Sides   [2]Side
	Current int // 1 or 2
	Turn    int
	Mana    int
	Outcome Result

	// Resolved by chance before the player picks a Gamble effect. It is hidden
	// from the board view, since the roll only scales the effect picked after it.
	pendingBonus int
}

// NewDuel deals the opening hands using rng. Player 1 acts first.
func NewDuel(rng *rand.Rand) *Duel {
	d := &Duel{Current: 1, Turn: 1, Mana: 1}
	for i := range d.Sides {
		d.Sides[i] = Side{
			Hero: Hero{Health: StartingHealth},
			Deck: StandardDeck(),
		}
		for j := 0; j < StartingHand; j++ {
			d.Sides[i].draw(rng.Intn(d.Sides[i].Deck.Total()))
		}
	}
	return d
}

func (s *Side) draw(position int) {
	card := s.Deck.Nth(position)
	s.Deck[card]--
	if s.Hand.Total() < MaxHandSize {
		s.Hand[card]++
	}
}

func (d *Duel) Player() int {
	return d.Current
}

func (d *Duel) Result() Result {
	return d.Outcome
}

func (d *Duel) Clone() State {
	c := *d
	return &c
}

func (d *Duel) self() *Side {
	return &d.Sides[d.Current-1]
}

func (d *Duel) enemy() *Side {
	return &d.Sides[2-d.Current]
}

// PlayableCards lists the distinct cards in the current hand that the player can
// afford, in ID order.
func (d *Duel) PlayableCards() []CardID {
	var ids []CardID
	for id, count := range d.self().Hand {
		if count > 0 && Cards[id].Cost <= d.Mana {
			ids = append(ids, CardID(id))
		}
	}
	return ids
}

func (d *Duel) PlayMainAction(chooser ActionChooser) (Result, error) {
	if d.Outcome.IsTerminal() {
		return d.Outcome, fmt.Errorf("game is already over: %s", d.Outcome)
	}

	playable := d.PlayableCards()
	options := 1
	if len(playable) > 0 {
		options = 2
	}
	// With nothing playable the only option (index 0) ends the turn
	choice, err := d.choose(chooser, MainAction, NewRangeChoices(options))
	if err != nil {
		return d.Outcome, err
	}

	if options == 1 || choice == mainEndTurn {
		if err := d.endTurn(chooser); err != nil {
			return d.Outcome, err
		}
		return d.Outcome, nil
	}

	choices := NewCardChoices(playable)
	choice, err = d.choose(chooser, ChooseHandCard, choices)
	if err != nil {
		return d.Outcome, err
	}
	card := CardID(choices.Get(choice))
	if err := d.playCard(chooser, card); err != nil {
		return d.Outcome, err
	}
	d.checkOutcome()
	return d.Outcome, nil
}

func (d *Duel) playCard(chooser ActionChooser, card CardID) error {
	self, enemy := d.self(), d.enemy()
	self.Hand[card]--
	d.Mana -= Cards[card].Cost

	switch card {
	case Spark:
		target, err := d.choose(chooser, ChooseTarget, NewRangeChoices(2))
		if err != nil {
			return err
		}
		if target == targetEnemyHero {
			enemy.Hero.takeDamage(2)
		} else {
			self.Hero.takeDamage(2)
		}
	case Strike:
		enemy.Hero.takeDamage(3)
	case WildBolt:
		target, err := d.choose(chooser, RandomAction, NewRangeChoices(2))
		if err != nil {
			return err
		}
		d.Sides[target].Hero.takeDamage(4)
	case Bloom:
		effect, err := d.choose(chooser, ChooseOne, NewRangeChoices(2))
		if err != nil {
			return err
		}
		if effect == 0 {
			self.Hero.Armor += 3
		} else if err := d.drawRandom(chooser, self); err != nil {
			return err
		}
	case Gamble:
		bonus, err := d.choose(chooser, RandomAction, NewRangeChoices(3))
		if err != nil {
			return err
		}
		d.pendingBonus = bonus
		effect, err := d.choose(chooser, ChooseOne, NewRangeChoices(2))
		if err != nil {
			return err
		}
		if effect == 0 {
			enemy.Hero.takeDamage(1 + d.pendingBonus)
		} else {
			self.Hero.restore(1 + d.pendingBonus)
		}
		d.pendingBonus = 0
	case Barrier:
		self.Hero.Armor += 2
	default:
		return fmt.Errorf("unknown card %d", card)
	}
	return nil
}

func (d *Duel) endTurn(chooser ActionChooser) error {
	d.Current = 3 - d.Current
	d.Turn++
	d.Mana = min(MaxMana, (d.Turn+1)/2)
	if d.Turn > MaxTurns {
		d.Outcome = ResultDraw
		return nil
	}
	if err := d.drawRandom(chooser, d.self()); err != nil {
		return err
	}
	d.checkOutcome()
	return nil
}

// drawRandom draws a card for side, or deals increasing fatigue damage once the
// deck is empty.
func (d *Duel) drawRandom(chooser ActionChooser, side *Side) error {
	size := side.Deck.Total()
	if size == 0 {
		side.Fatigue++
		side.Hero.takeDamage(side.Fatigue)
		return nil
	}
	position, err := d.choose(chooser, RandomAction, NewRangeChoices(size))
	if err != nil {
		return err
	}
	side.draw(position)
	return nil
}

func (d *Duel) choose(chooser ActionChooser, actionType ActionType, choices ActionChoices) (int, error) {
	choice, err := chooser.ChooseAction(d.View(), actionType, choices)
	if err != nil {
		return -1, fmt.Errorf("failed to choose %s: %w", actionType, err)
	}
	if choice < 0 || choice >= choices.Size() {
		return -1, fmt.Errorf("chooser returned %d for %s over %s", choice, actionType, choices)
	}
	return choice, nil
}

func (d *Duel) checkOutcome() {
	first, second := d.Sides[0].Hero.Health <= 0, d.Sides[1].Hero.Health <= 0
	switch {
	case first && second:
		d.Outcome = ResultDraw
	case first:
		d.Outcome = ResultSecondPlayerWin
	case second:
		d.Outcome = ResultFirstPlayerWin
	}
}

// View is what the current player observes: both heroes, mana and its own hand.
func (d *Duel) View() BoardView {
	return DuelView{
		Current: d.Current,
		Mana:    d.Mana,
		Heroes:  [2]Hero{d.Sides[0].Hero, d.Sides[1].Hero},
		Hand:    d.self().Hand,
	}
}

func (d *Duel) Snapshot() Snapshot {
	return DuelSnapshot{
		Sides:   d.Sides,
		Current: d.Current,
		Turn:    d.Turn,
		Mana:    d.Mana,
		Outcome: d.Outcome,
	}
}

type DuelView struct {
	Current int
	Mana    int
	Heroes  [2]Hero
	Hand    CardCounts
}

func (v DuelView) Digest() uint64 {
	hasher := fnv.New64a()
	write := func(values ...int) {
		for _, value := range values {
			binary.Write(hasher, binary.LittleEndian, int64(value))
		}
	}
	write(v.Current, v.Mana)
	for _, hero := range v.Heroes {
		write(hero.Health, hero.Armor)
	}
	write(v.Hand[:]...)
	return hasher.Sum64()
}

// DuelSnapshot is comparable, so equality is plain struct equality.
type DuelSnapshot struct {
	Sides   [2]Side
	Current int
	Turn    int
	Mana    int
	Outcome Result
}

func (s DuelSnapshot) Hash() StateHash {
	hasher := fnv.New64a()
	write := func(values ...int) {
		for _, value := range values {
			binary.Write(hasher, binary.LittleEndian, int64(value))
		}
	}

	// Hash turn bookkeeping
	write(s.Current, s.Turn, s.Mana, int(s.Outcome))
	// Hash both sides
	for _, side := range s.Sides {
		write(side.Hero.Health, side.Hero.Armor, side.Fatigue)
		write(side.Hand[:]...)
		write(side.Deck[:]...)
	}
	return StateHash(hasher.Sum64())
}

func (s DuelSnapshot) Equal(other Snapshot) bool {
	o, ok := other.(DuelSnapshot)
	return ok && s == o
}
