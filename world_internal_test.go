package jointown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorld_StopsAfterFailedStep(t *testing.T) {
	w, err := New(4)
	require.NoError(t, err)
	_, err = w.AddPerson("L", NewDomain(0, 1), true)
	require.NoError(t, err)
	require.Equal(t, "LL--", w.Ownership())

	// hand object 0 to an owner no tier knows, so evicting it fails midway
	_, err = w.table.Release(0)
	require.NoError(t, err)
	require.NoError(t, w.table.Assign(0, "ghost"))

	_, err = w.AddPerson("N", NewDomain(0), false)
	require.ErrorIs(t, err, ErrUnknownMember)

	// the normal tier already holds N: counters follow the tiers
	require.Equal(t, 2, w.Persons())
	require.Equal(t, 2, w.Snapshot().Persons)
	require.Equal(t, 1, w.Step())
	tier, ok := w.TierOf("N")
	require.True(t, ok)
	require.Equal(t, TierNormal, tier)
	require.Equal(t, "gL--", w.Ownership())

	_, err = w.AddPerson("X", NewDomain(2), false)
	require.ErrorIs(t, err, ErrWorldStopped)
	require.ErrorIs(t, err, ErrUnknownMember)

	removed, err := w.RemovePerson("L")
	require.ErrorIs(t, err, ErrWorldStopped)
	require.False(t, removed)
	require.Equal(t, 2, w.Persons())
	require.Equal(t, 1, w.Step())
}
