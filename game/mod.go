package game

// The searcher package drives any game that implements the contract below. A
// State resolves one main action at a time and asks an ActionChooser for every
// sub-action it needs along the way.

// StateHash is a hash of a canonical board snapshot.
type StateHash uint64

// BoardView is what the acting player sees when asked for a sub-action. Equal
// decision contexts must produce equal digests.
type BoardView interface {
	Digest() uint64
}

// Snapshot is a canonical copy of the board taken between main actions, used
// to merge tree paths that reach the same state.
type Snapshot interface {
	Hash() StateHash
	Equal(other Snapshot) bool
}

// ActionChooser resolves a single sub-action and returns an index into choices.
type ActionChooser interface {
	ChooseAction(view BoardView, actionType ActionType, choices ActionChoices) (int, error)
}

// State should be treated as immutable by callers outside of PlayMainAction -
// use Clone before mutating a state that is shared.
type State interface {
	// Player returns the acting player (1 or 2)
	Player() int
	// PlayMainAction resolves a full main action, asking chooser for every sub-action
	PlayMainAction(chooser ActionChooser) (Result, error)
	Result() Result
	Snapshot() Snapshot
	Clone() State
}

// Evaluate scores a non-terminal state between 0 (certain loss) and 1 (certain
// win) from the given player's perspective.
type Evaluate func(state State, player int) float64

// Result of a game, ResultNotDetermined while the game is still running.
type Result int

const (
	ResultNotDetermined Result = iota
	ResultFirstPlayerWin
	ResultSecondPlayerWin
	ResultDraw
)

func (r Result) IsTerminal() bool {
	return r != ResultNotDetermined
}

// Winner returns the winning player, or 0 for a draw or an undetermined game.
func (r Result) Winner() int {
	switch r {
	case ResultFirstPlayerWin:
		return 1
	case ResultSecondPlayerWin:
		return 2
	default:
		return 0
	}
}

func (r Result) String() string {
	switch r {
	case ResultNotDetermined:
		return "not-determined"
	case ResultFirstPlayerWin:
		return "player1-win"
	case ResultSecondPlayerWin:
		return "player2-win"
	case ResultDraw:
		return "draw"
	default:
		return "invalid"
	}
}
