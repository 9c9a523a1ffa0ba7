package types

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
)

// Snapshot is a read-only view of a World after a step.
//
// Snapshots are detached copies: holding one never blocks the World and
// mutating one never affects it.
type Snapshot struct {
	// Step is the number of completed add/remove operations.
	Step int `json:"step"`

	// Persons is the number of persons in both tiers.
	Persons int `json:"persons"`

	// Owners holds the owner of every object, NoOwner for free objects.
	Owners []PersonID `json:"owners"`

	// Capitals maps each person to the number of objects it owns.
	Capitals map[PersonID]int `json:"capitals"`

	// Tiers maps each person to its tier.
	Tiers map[PersonID]Tier `json:"tiers"`
}

// Ownership returns the short ownership string: the initial of the owner of
// each object, FreeMarker for free objects.
func (s Snapshot) Ownership() string {
	return OwnershipString(s.Owners)
}

// FreeObjects returns the number of objects without owner.
func (s Snapshot) FreeObjects() int {
	n := 0
	for _, p := range s.Owners {
		if p == NoOwner {
			n++
		}
	}

	return n
}

// OwnedBy returns the objects owned by the person in ascending order.
func (s Snapshot) OwnedBy(p PersonID) []int {
	var out []int
	for o, owner := range s.Owners {
		if owner == p && p != NoOwner {
			out = append(out, o)
		}
	}

	return out
}

// Members returns the persons of the given tier sorted by id.
func (s Snapshot) Members(tier Tier) []PersonID {
	out := make([]PersonID, 0, len(s.Tiers))
	for p, t := range s.Tiers {
		if t == tier {
			out = append(out, p)
		}
	}
	slices.Sort(out)

	return out
}

// Digest returns a 64-bit fingerprint of the ownership table.
//
// Two snapshots with equal digests hold the same owner for every object
// (barring hash collisions); step counters are not part of the digest.
func (s Snapshot) Digest() uint64 {
	var buf []byte
	var lenBuf [binary.MaxVarintLen64]byte
	for _, p := range s.Owners {
		n := binary.PutUvarint(lenBuf[:], uint64(len(p)))
		buf = append(buf, lenBuf[:n]...)
		buf = append(buf, p...)
	}

	return xxh3.Hash(buf)
}

// OwnershipString builds the short ownership string for an owner listing.
func OwnershipString(owners []PersonID) string {
	var b strings.Builder
	b.Grow(len(owners))
	for _, p := range owners {
		b.WriteRune(p.Initial())
	}

	return b.String()
}
