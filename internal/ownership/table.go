// Package ownership provides the shared object ownership table.
//
// A single Table is created by the World and lent by pointer to both tiers,
// so every tier observes the same instance. The table is the single source of
// truth for who owns what; tiers keep capitals in step with it.
//
// Table is not safe for concurrent use. The World serializes all access.
package ownership

import (
	"fmt"
	"slices"

	"github.com/arloliu/jointown/types"
)

// Table maps every object id in [0, N) to its owner or to types.NoOwner.
type Table struct {
	owners []types.PersonID
	free   int
}

// New creates a table of n free objects.
//
// Parameters:
//   - n: Number of objects, fixed for the lifetime of the table
//
// Returns:
//   - *Table: Table with every object free
func New(n int) *Table {
	if n < 0 {
		n = 0
	}

	return &Table{
		owners: make([]types.PersonID, n),
		free:   n,
	}
}

// Len returns the number of objects.
func (t *Table) Len() int {
	return len(t.owners)
}

// InRange reports whether o is a valid object id.
func (t *Table) InRange(o int) bool {
	return o >= 0 && o < len(t.owners)
}

// Owner returns the owner of object o, or false if o is free or out of range.
func (t *Table) Owner(o int) (types.PersonID, bool) {
	if !t.InRange(o) || t.owners[o] == types.NoOwner {
		return types.NoOwner, false
	}

	return t.owners[o], true
}

// IsFree reports whether object o is in range and has no owner.
func (t *Table) IsFree(o int) bool {
	return t.InRange(o) && t.owners[o] == types.NoOwner
}

// Assign makes p the owner of the free object o.
//
// Returns:
//   - error: ErrObjectOutOfRange, ErrInvalidPersonID for NoOwner,
//     ErrOwnershipConflict if o is already owned
func (t *Table) Assign(o int, p types.PersonID) error {
	if !t.InRange(o) {
		return fmt.Errorf("%w: %d not in [0, %d)", types.ErrObjectOutOfRange, o, len(t.owners))
	}
	if p == types.NoOwner {
		return types.ErrInvalidPersonID
	}
	if cur := t.owners[o]; cur != types.NoOwner {
		return fmt.Errorf("%w: object %d owned by %q", types.ErrOwnershipConflict, o, cur)
	}

	t.owners[o] = p
	t.free--

	return nil
}

// Release frees object o and returns its previous owner.
//
// Returns:
//   - types.PersonID: Previous owner
//   - error: ErrObjectOutOfRange, or ErrObjectNotOwned if o is already free
func (t *Table) Release(o int) (types.PersonID, error) {
	if !t.InRange(o) {
		return types.NoOwner, fmt.Errorf("%w: %d not in [0, %d)", types.ErrObjectOutOfRange, o, len(t.owners))
	}

	prev := t.owners[o]
	if prev == types.NoOwner {
		return types.NoOwner, fmt.Errorf("%w: object %d", types.ErrObjectNotOwned, o)
	}

	t.owners[o] = types.NoOwner
	t.free++

	return prev, nil
}

// FreeCount returns the number of free objects.
func (t *Table) FreeCount() int {
	return t.free
}

// Count returns the number of objects owned by p.
func (t *Table) Count(p types.PersonID) int {
	if p == types.NoOwner {
		return 0
	}

	n := 0
	for _, owner := range t.owners {
		if owner == p {
			n++
		}
	}

	return n
}

// Owners returns a copy of the owner listing.
func (t *Table) Owners() []types.PersonID {
	return slices.Clone(t.owners)
}

// String returns the short ownership string, one initial per object.
func (t *Table) String() string {
	return types.OwnershipString(t.owners)
}
