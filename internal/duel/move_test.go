package duel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeatsCycle(t *testing.T) {
	assert.True(t, Beats(MoveStrike, MoveFeint))
	assert.True(t, Beats(MoveFeint, MoveParry))
	assert.True(t, Beats(MoveParry, MoveStrike))

	assert.False(t, Beats(MoveFeint, MoveStrike))
	assert.False(t, Beats(MoveParry, MoveFeint))
	assert.False(t, Beats(MoveStrike, MoveParry))
}

// Every ordered pair of distinct moves has exactly one winner.
func TestBeatsTotality(t *testing.T) {
	for _, a := range Moves {
		for _, b := range Moves {
			if a == b {
				assert.False(t, Beats(a, b), "%s must not beat itself", a)
				continue
			}
			assert.True(t, Beats(a, b) != Beats(b, a), "%s vs %s must have exactly one winner", a, b)
		}
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		token string
		want  Move
	}{
		{"strike", MoveStrike},
		{"stone", MoveStrike},
		{"سنگ", MoveStrike},
		{"parry", MoveParry},
		{"paper", MoveParry},
		{"کاغذ", MoveParry},
		{"feint", MoveFeint},
		{"scissors", MoveFeint},
		{"قیچی", MoveFeint},
		{"  Strike  ", MoveStrike},
		{"SCISSORS", MoveFeint},
	}
	for _, tt := range tests {
		got, err := ParseMove(tt.token)
		require.NoError(t, err, "token %q", tt.token)
		assert.Equal(t, tt.want, got, "token %q", tt.token)
	}
}

func TestParseMoveRejectsUnknown(t *testing.T) {
	for _, token := range []string{"", "rock", "katana", "str ike"} {
		_, err := ParseMove(token)
		assert.ErrorIs(t, err, ErrInvalidMove, "token %q", token)
	}
}

func TestParseClass(t *testing.T) {
	for token, want := range map[string]Class{
		"samurai": ClassSamurai,
		"Ninja":   ClassNinja,
		" monk ":  ClassMonk,
		"ronin":   ClassRonin,
		"none":    ClassNone,
		"":        ClassNone,
	} {
		got, ok := ParseClass(token)
		require.True(t, ok, "token %q", token)
		assert.Equal(t, want, got, "token %q", token)
	}

	_, ok := ParseClass("shogun")
	assert.False(t, ok)
}
