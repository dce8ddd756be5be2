package searcher

import "github.com/arixlin/hearthstone-ai/game"

// TurnPath is the selection path of one main action and the player who took it.
type TurnPath struct {
	Player int
	Path   []TraversedNodeInfo
}

// Backup credits every committed choice of every main action with the reward of
// the player who made it. Each choice must have been picked by TreeNode.Select.
func Backup(turns []TurnPath, reward func(player int) float64) {
	for _, turn := range turns {
		credit := reward(turn.Player)
		for i := range turn.Path {
			info := &turn.Path[i]
			if !info.HasMadeChoice() {
				continue
			}
			info.GetNode().backup(info.GetChoice(), credit)
		}
	}
}

// releaseLosses undoes the virtual losses of an iteration that will not be
// backed up.
func releaseLosses(path []TraversedNodeInfo) {
	for i := range path {
		info := &path[i]
		if !info.HasMadeChoice() {
			continue
		}
		info.GetNode().releaseLoss(info.GetChoice())
	}
}

// resultRewarder credits a finished game.
func resultRewarder(result game.Result) func(player int) float64 {
	return func(player int) float64 {
		switch result.Winner() {
		case player:
			return WIN
		case 0:
			return DRAW
		default:
			return LOSS
		}
	}
}

// evaluationRewarder credits a game cut off before its end.
func evaluationRewarder(state game.State, evaluate game.Evaluate) func(player int) float64 {
	return func(player int) float64 {
		return evaluate(state, player)
	}
}
