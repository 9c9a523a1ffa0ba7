package ownership

import (
	"testing"

	"github.com/arloliu/jointown/types"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tbl := New(4)
	require.Equal(t, 4, tbl.Len())
	require.Equal(t, 4, tbl.FreeCount())
	require.Equal(t, "----", tbl.String())

	require.Equal(t, 0, New(-3).Len())
}

func TestTable_AssignRelease(t *testing.T) {
	tbl := New(5)

	require.NoError(t, tbl.Assign(1, "Vasia"))
	require.NoError(t, tbl.Assign(2, "Vasia"))
	require.NoError(t, tbl.Assign(4, "Pasha"))
	require.Equal(t, "-VV-P", tbl.String())
	require.Equal(t, 2, tbl.FreeCount())
	require.Equal(t, 2, tbl.Count("Vasia"))
	require.Equal(t, 0, tbl.Count(types.NoOwner))

	owner, ok := tbl.Owner(4)
	require.True(t, ok)
	require.Equal(t, types.PersonID("Pasha"), owner)
	require.True(t, tbl.IsFree(0))
	require.False(t, tbl.IsFree(1))

	prev, err := tbl.Release(1)
	require.NoError(t, err)
	require.Equal(t, types.PersonID("Vasia"), prev)
	require.Equal(t, "--V-P", tbl.String())
	require.Equal(t, 3, tbl.FreeCount())
}

func TestTable_Errors(t *testing.T) {
	tbl := New(3)
	require.NoError(t, tbl.Assign(0, "Vasia"))

	t.Run("robbing is rejected", func(t *testing.T) {
		err := tbl.Assign(0, "Pasha")
		require.ErrorIs(t, err, types.ErrOwnershipConflict)
		owner, _ := tbl.Owner(0)
		require.Equal(t, types.PersonID("Vasia"), owner)
	})

	t.Run("out of range", func(t *testing.T) {
		require.ErrorIs(t, tbl.Assign(3, "Pasha"), types.ErrObjectOutOfRange)
		require.ErrorIs(t, tbl.Assign(-1, "Pasha"), types.ErrObjectOutOfRange)
		_, err := tbl.Release(7)
		require.ErrorIs(t, err, types.ErrObjectOutOfRange)
		_, ok := tbl.Owner(7)
		require.False(t, ok)
		require.False(t, tbl.IsFree(7))
	})

	t.Run("release of free object", func(t *testing.T) {
		_, err := tbl.Release(1)
		require.ErrorIs(t, err, types.ErrObjectNotOwned)
	})

	t.Run("reserved owner", func(t *testing.T) {
		require.ErrorIs(t, tbl.Assign(2, types.NoOwner), types.ErrInvalidPersonID)
	})

	require.Equal(t, 2, tbl.FreeCount())
}

func TestTable_OwnersIsCopy(t *testing.T) {
	tbl := New(2)
	require.NoError(t, tbl.Assign(0, "a"))

	owners := tbl.Owners()
	owners[1] = "b"
	require.True(t, tbl.IsFree(1))
}
