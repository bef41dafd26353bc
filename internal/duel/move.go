package duel

import "strings"

// Move is one of the three sealed picks a duelist can make.
type Move string

const (
	MoveStrike Move = "strike"
	MoveParry  Move = "parry"
	MoveFeint  Move = "feint"
)

// Moves lists every legal move. Used for random assignment on timeout.
var Moves = []Move{MoveStrike, MoveParry, MoveFeint}

// beats maps each move to the move it defeats. The relation is a clean
// 3-cycle: strike > feint, feint > parry, parry > strike.
var beats = map[Move]Move{
	MoveStrike: MoveFeint,
	MoveFeint:  MoveParry,
	MoveParry:  MoveStrike,
}

// Beats reports whether a defeats b. Equal moves never beat each other.
func Beats(a, b Move) bool {
	return beats[a] == b
}

// moveTokens maps accepted submission tokens to moves. Each move answers to
// the Persian word the dojo uses, the English word players reach for, and the
// canonical tag itself.
var moveTokens = map[string]Move{
	"سنگ":      MoveStrike,
	"stone":    MoveStrike,
	"strike":   MoveStrike,
	"کاغذ":     MoveParry,
	"paper":    MoveParry,
	"parry":    MoveParry,
	"قیچی":     MoveFeint,
	"scissors": MoveFeint,
	"feint":    MoveFeint,
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// ParseMove resolves a free-text token to a Move. Matching is
// case-insensitive and ignores surrounding whitespace. Unknown tokens return
// ErrInvalidMove so the caller can ask the player to retry.
func ParseMove(token string) (Move, error) {
	m, ok := moveTokens[normalize(token)]
	if !ok {
		return "", ErrInvalidMove
	}
	return m, nil
}
