package testutil

import (
	"testing"

	"github.com/arloliu/jointown/types"
)

// AssertSnapshotConsistent verifies the invariants every World step must keep.
//
// Checked invariants:
//   - every object has at most one owner and every owner is a known person
//   - capitals equal the number of owned objects, and their sum equals N minus free objects
//   - every owned object lies in its owner's domain
//   - no low-priority person owns an object of any normal person's domain
//   - no free object lies in any person's domain
//
// Parameters:
//   - t: testing handle
//   - snap: Snapshot taken after a step
//   - domains: Domain each person was added with
func AssertSnapshotConsistent(t *testing.T, snap types.Snapshot, domains map[types.PersonID]types.Domain) {
	t.Helper()

	counted := make(map[types.PersonID]int, len(snap.Capitals))
	normalUnion := types.Domain{}
	for p, tier := range snap.Tiers {
		if tier == types.TierNormal {
			normalUnion = normalUnion.Union(domains[p])
		}
	}

	for o, owner := range snap.Owners {
		if owner == types.NoOwner {
			for p, d := range domains {
				if d.Contains(o) {
					t.Fatalf("object %d is free but lies in the domain of %q", o, p)
				}
			}

			continue
		}

		tier, known := snap.Tiers[owner]
		if !known {
			t.Fatalf("object %d owned by unknown person %q", o, owner)
		}
		if !domains[owner].Contains(o) {
			t.Fatalf("object %d owned by %q outside its domain %s", o, owner, domains[owner])
		}
		if tier == types.TierLowprio && normalUnion.Contains(o) {
			t.Fatalf("object %d owned by lowprio %q but claimed by a normal person", o, owner)
		}
		counted[owner]++
	}

	sum := 0
	for p, c := range snap.Capitals {
		if counted[p] != c {
			t.Fatalf("capital of %q is %d, owns %d objects", p, c, counted[p])
		}
		sum += c
	}
	if sum != len(snap.Owners)-snap.FreeObjects() {
		t.Fatalf("sum of capitals (%d) does not equal owned objects (%d)", sum, len(snap.Owners)-snap.FreeObjects())
	}
	if len(snap.Tiers) != snap.Persons {
		t.Fatalf("snapshot lists %d persons, counter says %d", len(snap.Tiers), snap.Persons)
	}
}

// CapitalSpread returns max minus min capital among the persons of a tier.
// It returns 0 when the tier has fewer than two persons.
func CapitalSpread(snap types.Snapshot, tier types.Tier) int {
	lo, hi, n := 0, 0, 0
	for p, c := range snap.Capitals {
		if snap.Tiers[p] != tier {
			continue
		}
		if n == 0 || c < lo {
			lo = c
		}
		if n == 0 || c > hi {
			hi = c
		}
		n++
	}
	if n < 2 {
		return 0
	}

	return hi - lo
}
