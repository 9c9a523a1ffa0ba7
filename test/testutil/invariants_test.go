package testutil

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jointown/types"
)

func TestAssertSnapshotConsistent_Passes(t *testing.T) {
	snap := types.Snapshot{
		Step:     2,
		Persons:  2,
		Owners:   []types.PersonID{"", "a", "a", "b"},
		Capitals: map[types.PersonID]int{"a": 2, "b": 1},
		Tiers:    map[types.PersonID]types.Tier{"a": types.TierNormal, "b": types.TierLowprio},
	}
	domains := map[types.PersonID]types.Domain{
		"a": types.NewDomain(1, 2),
		"b": types.NewDomain(2, 3),
	}

	AssertSnapshotConsistent(t, snap, domains)
}

func TestCapitalSpread(t *testing.T) {
	snap := types.Snapshot{
		Capitals: map[types.PersonID]int{"a": 5, "b": 2, "c": 9},
		Tiers:    map[types.PersonID]types.Tier{"a": types.TierNormal, "b": types.TierNormal, "c": types.TierLowprio},
	}
	require.Equal(t, 3, CapitalSpread(snap, types.TierNormal))
	require.Equal(t, 0, CapitalSpread(snap, types.TierLowprio))
}

func TestRandomWindow(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for range 50 {
		d := RandomWindow(rng, 10, 4)
		require.Equal(t, 4, d.Len())
		hi, _ := d.Max()
		require.Less(t, hi, 10)
	}
	require.True(t, RandomWindow(rng, 0, 3).IsEmpty())
	require.Equal(t, 2, RandomWindow(rng, 2, 5).Len())
}

func TestRandomDomain(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	require.Equal(t, 8, RandomDomain(rng, 8, 1).Len())
	require.True(t, RandomDomain(rng, 8, 0).IsEmpty())
}

func TestWaitStep(t *testing.T) {
	ch := make(chan types.Snapshot, 3)
	ch <- types.Snapshot{Step: 1}
	ch <- types.Snapshot{Step: 2}

	snap, err := WaitStep(ch, 2, time.Second)
	require.NoError(t, err)
	require.Equal(t, 2, snap.Step)

	_, err = WaitStep(ch, 3, 20*time.Millisecond)
	require.Error(t, err)

	close(ch)
	_, err = WaitStep(ch, 3, time.Second)
	require.Error(t, err)
}
