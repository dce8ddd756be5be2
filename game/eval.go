package game

// EvaluateHealth scores a duel by the share of effective health (health plus
// armor) the player holds, plus a small card advantage term, between 0 and 1.
func EvaluateHealth(s State, player int) float64 {
	d, ok := s.(*Duel)
	if !ok {
		panic("unexpected state type")
	}
	if d.Outcome.IsTerminal() {
		switch d.Outcome.Winner() {
		case player:
			return 1
		case 0:
			return 0.5
		default:
			return 0
		}
	}

	self, enemy := d.Sides[player-1], d.Sides[2-player]
	selfScore := float64(max(0, self.Hero.Health)+self.Hero.Armor) + 0.5*float64(self.Hand.Total())
	enemyScore := float64(max(0, enemy.Hero.Health)+enemy.Hero.Armor) + 0.5*float64(enemy.Hand.Total())
	if selfScore+enemyScore == 0 {
		return 0.5
	}
	return selfScore / (selfScore + enemyScore)
}
