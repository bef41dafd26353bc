package duel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestResolveTie(t *testing.T) {
	a := Contestant{ID: "a", Move: MoveStrike}
	b := Contestant{ID: "b", Move: MoveStrike}

	res := Resolve(a, b, testRNG())
	assert.True(t, res.Tie)
	assert.NoError(t, res.Err)
}

func TestResolveBaseScoring(t *testing.T) {
	a := Contestant{ID: "a", Move: MoveStrike}
	b := Contestant{ID: "b", Move: MoveFeint}

	res := Resolve(a, b, testRNG())
	require.False(t, res.Tie)
	assert.Equal(t, "a", res.Winner.ID)
	assert.Equal(t, "b", res.Loser.ID)
	assert.Equal(t, 1.0, res.Gain)
	assert.Equal(t, 1.0, res.Loss)
	assert.False(t, res.LossWaived)
}

// The winner is a function of the moves alone, not argument order.
func TestResolveOrderIndependent(t *testing.T) {
	a := Contestant{ID: "a", Move: MoveParry}
	b := Contestant{ID: "b", Move: MoveStrike}

	res1 := Resolve(a, b, testRNG())
	res2 := Resolve(b, a, testRNG())
	require.False(t, res1.Tie)
	require.False(t, res2.Tie)
	assert.Equal(t, "a", res1.Winner.ID)
	assert.Equal(t, "a", res2.Winner.ID)
}

func TestResolveSamuraiBlades(t *testing.T) {
	t.Run("accumulates below batch", func(t *testing.T) {
		w := Contestant{ID: "w", Move: MoveStrike, Class: ClassSamurai, Blades: 0}
		l := Contestant{ID: "l", Move: MoveFeint}

		res := Resolve(w, l, testRNG())
		assert.Equal(t, 1.0, res.Gain)
		assert.Equal(t, 1, res.WinnerBlades)
	})

	t.Run("batch completes", func(t *testing.T) {
		w := Contestant{ID: "w", Move: MoveStrike, Class: ClassSamurai, Blades: 2}
		l := Contestant{ID: "l", Move: MoveFeint}

		res := Resolve(w, l, testRNG())
		assert.Equal(t, 2.0, res.Gain)
		assert.Equal(t, 0, res.WinnerBlades)
	})

	t.Run("batch with streak bonus", func(t *testing.T) {
		w := Contestant{ID: "w", Move: MoveStrike, Class: ClassSamurai, Blades: 2, Streak: 5}
		l := Contestant{ID: "l", Move: MoveFeint}

		res := Resolve(w, l, testRNG())
		assert.Equal(t, 3.5, res.Gain)
		assert.Equal(t, 0, res.WinnerBlades)
	})

	t.Run("streak alone does not trigger", func(t *testing.T) {
		w := Contestant{ID: "w", Move: MoveStrike, Class: ClassSamurai, Blades: 0, Streak: 9}
		l := Contestant{ID: "l", Move: MoveFeint}

		res := Resolve(w, l, testRNG())
		assert.Equal(t, 1.0, res.Gain)
	})
}

func TestResolveRoninAsymmetry(t *testing.T) {
	t.Run("loser well above winner", func(t *testing.T) {
		w := Contestant{ID: "w", Move: MoveStrike, Class: ClassRonin, Points: 3}
		l := Contestant{ID: "l", Move: MoveFeint, Points: 5}

		res := Resolve(w, l, testRNG())
		assert.Equal(t, 1.5, res.Gain)
	})

	t.Run("baseline", func(t *testing.T) {
		w := Contestant{ID: "w", Move: MoveStrike, Class: ClassRonin, Points: 5}
		l := Contestant{ID: "l", Move: MoveFeint, Points: 5}

		res := Resolve(w, l, testRNG())
		assert.Equal(t, 1.6, res.Gain)
	})
}

func TestResolveNinjaWinner(t *testing.T) {
	w := Contestant{ID: "w", Move: MoveStrike, Class: ClassNinja}
	l := Contestant{ID: "l", Move: MoveFeint}

	res := Resolve(w, l, testRNG())
	assert.Equal(t, 0.8, res.Gain)
}

// A ninja loser evades the loss roughly 30% of the time. The waiver only
// zeroes the point loss; the duel is still decided against them.
func TestResolveNinjaEvasionRate(t *testing.T) {
	rng := testRNG()
	w := Contestant{ID: "w", Move: MoveStrike}
	l := Contestant{ID: "l", Move: MoveFeint, Class: ClassNinja}

	const runs = 1000
	waived := 0
	for i := 0; i < runs; i++ {
		res := Resolve(w, l, rng)
		require.False(t, res.Tie)
		require.Equal(t, "l", res.Loser.ID)
		if res.LossWaived {
			assert.Equal(t, 0.0, res.Loss)
			waived++
		} else {
			assert.Equal(t, 1.0, res.Loss)
		}
	}

	rate := float64(waived) / runs
	assert.Greater(t, rate, 0.22)
	assert.Less(t, rate, 0.38)
}

func TestResolveMonkLoser(t *testing.T) {
	w := Contestant{ID: "w", Move: MoveStrike}
	l := Contestant{ID: "l", Move: MoveFeint, Class: ClassMonk}

	res := Resolve(w, l, testRNG())
	assert.Equal(t, 0.6, res.Loss)
	assert.False(t, res.LossWaived)
}
