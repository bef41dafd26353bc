package profile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arashv/shogun-dojo/internal/duel"
	"github.com/arashv/shogun-dojo/internal/store"
)

// memStore is an in-memory store.Store for profile tests. IDs added to
// failUpsert make writes for that profile fail.
type memStore struct {
	mu         sync.Mutex
	profiles   map[string]store.Profile
	failUpsert map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		profiles:   make(map[string]store.Profile),
		failUpsert: make(map[string]bool),
	}
}

func (m *memStore) GetProfile(_ context.Context, id string) (*store.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (m *memStore) UpsertProfile(_ context.Context, p *store.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert[p.ID] {
		return errors.New("disk full")
	}
	m.profiles[p.ID] = *p
	return nil
}

func (m *memStore) ListProfiles(_ context.Context) ([]store.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out, nil
}

func (m *memStore) RecordDuel(context.Context, *store.DuelRecord) error { return nil }
func (m *memStore) ListDuels(context.Context, int) ([]store.DuelRecord, error) {
	return nil, nil
}
func (m *memStore) SavePushSubscription(context.Context, *store.PushSubscription) error { return nil }
func (m *memStore) GetPushSubscriptions(context.Context, string) ([]store.PushSubscription, error) {
	return nil, nil
}
func (m *memStore) DeletePushSubscription(context.Context, string) error { return nil }
func (m *memStore) Close() error                                         { return nil }

func TestMutateCreatesProfileOnFirstSight(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	p, change, err := svc.Mutate(ctx, "p1", "Kenji", nil)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Kenji", p.DisplayName)
	assert.Equal(t, 0.0, p.Points)
	assert.NotEmpty(t, p.Rank)
	// A fresh profile lands on the bottom tier without a rank event.
	assert.Nil(t, change)
}

func TestMutateRefreshesDisplayName(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	_, _, err := svc.Mutate(ctx, "p1", "OldName", nil)
	require.NoError(t, err)

	p, _, err := svc.Mutate(ctx, "p1", "NewName", nil)
	require.NoError(t, err)
	assert.Equal(t, "NewName", p.DisplayName)

	// An empty name keeps the cached one.
	p, _, err = svc.Mutate(ctx, "p1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "NewName", p.DisplayName)
}

func TestGrantPenaltyClampsAtZero(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	p, _, err := svc.GrantPenalty(ctx, "p1", "Kenji", 5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Points)
}

func TestGrantHonorPromotes(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	_, change, err := svc.GrantHonor(ctx, "p1", "Kenji", 4)
	require.NoError(t, err)
	assert.Nil(t, change)

	p, change, err := svc.GrantHonor(ctx, "p1", "Kenji", 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, p.Points)
	require.NotNil(t, change)
	assert.True(t, change.Promoted)
	assert.Equal(t, p.Rank, change.To.Name)
}

func TestSetClass(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	p, err := svc.SetClass(ctx, "p1", "Kenji", duel.ClassNinja)
	require.NoError(t, err)
	assert.Equal(t, duel.ClassNinja, p.Class)

	p, err = svc.SetClass(ctx, "p1", "", duel.ClassNone)
	require.NoError(t, err)
	assert.Equal(t, duel.ClassNone, p.Class)
}

func TestBulkReward(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	_, _, err := svc.GrantHonor(ctx, "p1", "A", 4)
	require.NoError(t, err)
	_, _, err = svc.GrantHonor(ctx, "p2", "B", 1)
	require.NoError(t, err)

	count, changes, err := svc.BulkReward(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	// Only p1 crosses a threshold (4 -> 6).
	require.Len(t, changes, 1)
	assert.Equal(t, "p1", changes[0].PlayerID)
	assert.True(t, changes[0].Promoted)
}

func TestBulkRewardCountsOnlyWrittenProfiles(t *testing.T) {
	st := newMemStore()
	svc := NewService(st)
	ctx := context.Background()

	_, _, err := svc.GrantHonor(ctx, "p1", "A", 1)
	require.NoError(t, err)
	_, _, err = svc.GrantHonor(ctx, "p2", "B", 1)
	require.NoError(t, err)

	st.mu.Lock()
	st.failUpsert["p2"] = true
	st.mu.Unlock()

	count, _, err := svc.BulkReward(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The skipped profile keeps its pre-reward total.
	st.mu.Lock()
	st.failUpsert["p2"] = false
	st.mu.Unlock()
	p, err := svc.Get(ctx, "p2", "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Points)
}

func TestConcurrentMutationsSameIdentity(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, _, err := svc.GrantHonor(ctx, "p1", "Kenji", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := svc.Get(ctx, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, float64(writers), p.Points)
}

func TestApplyResult(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	_, _, err := svc.GrantHonor(ctx, "w", "Winner", 2)
	require.NoError(t, err)
	_, _, err = svc.GrantHonor(ctx, "l", "Loser", 0.5)
	require.NoError(t, err)

	res := duel.Result{
		Winner: duel.Contestant{ID: "w", Name: "Winner", Class: duel.ClassSamurai},
		Loser:  duel.Contestant{ID: "l", Name: "Loser"},
		Gain:   1.0,
		Loss:   1.0,
		// Samurai batch already ran in resolution; the store just records it.
		WinnerBlades: 1,
	}
	sum, err := svc.ApplyResult(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, 3.0, sum.WinnerPoints)
	// Loser had 0.5 and clamps at zero.
	assert.Equal(t, 0.0, sum.LoserPoints)

	w, err := svc.Get(ctx, "w", "")
	require.NoError(t, err)
	assert.Equal(t, 1, w.Wins)
	assert.Equal(t, 1, w.Streak)
	assert.Equal(t, 1, w.Blades)
	assert.Equal(t, 1, w.ClassXP)

	l, err := svc.Get(ctx, "l", "")
	require.NoError(t, err)
	assert.Equal(t, 1, l.Losses)
	assert.Equal(t, 0, l.Streak)
}

// A duel win carrying a player across a tier threshold surfaces exactly one
// promotion event in the summary.
func TestApplyResultPromotesWinner(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	_, _, err := svc.GrantHonor(ctx, "w", "Winner", 4)
	require.NoError(t, err)
	_, _, err = svc.GrantHonor(ctx, "l", "Loser", 1)
	require.NoError(t, err)

	res := duel.Result{
		Winner: duel.Contestant{ID: "w", Name: "Winner"},
		Loser:  duel.Contestant{ID: "l", Name: "Loser"},
		Gain:   2.0,
		Loss:   1.0,
	}
	sum, err := svc.ApplyResult(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, 6.0, sum.WinnerPoints)

	require.Len(t, sum.RankChanges, 1)
	change := sum.RankChanges[0]
	assert.Equal(t, "w", change.PlayerID)
	assert.True(t, change.Promoted)
	assert.Equal(t, 0, change.From.Threshold)
	assert.Equal(t, 5, change.To.Threshold)

	w, err := svc.Get(ctx, "w", "")
	require.NoError(t, err)
	assert.Equal(t, change.To.Name, w.Rank)
}
