package types

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Domain is an immutable set of object ids.
//
// Ids are kept sorted and unique, so iteration is always in ascending order.
// Exchange-path search enumerates neighbors in this order, which makes the
// whole distribution reproducible for a given sequence of events.
//
// The zero value is the empty domain.
type Domain struct {
	ids []int
}

// NewDomain creates a domain from the given object ids.
//
// Duplicates are removed and the ids are sorted. The input slice is not retained.
//
// Parameters:
//   - ids: Object ids, in any order
//
// Returns:
//   - Domain: Immutable sorted set
//
// Example:
//
//	d := types.NewDomain(4, 2, 5, 2)
//	fmt.Println(d) // {2, 4, 5}
func NewDomain(ids ...int) Domain {
	if len(ids) == 0 {
		return Domain{}
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	return Domain{ids: slices.Compact(sorted)}
}

// DomainRange returns the domain of all ids in [from, to).
func DomainRange(from, to int) Domain {
	if to <= from {
		return Domain{}
	}

	ids := make([]int, 0, to-from)
	for o := from; o < to; o++ {
		ids = append(ids, o)
	}

	return Domain{ids: ids}
}

// Len returns the number of objects in the domain.
func (d Domain) Len() int {
	return len(d.ids)
}

// IsEmpty reports whether the domain has no objects.
func (d Domain) IsEmpty() bool {
	return len(d.ids) == 0
}

// Contains reports whether object o belongs to the domain.
func (d Domain) Contains(o int) bool {
	_, found := slices.BinarySearch(d.ids, o)
	return found
}

// All iterates over the object ids in ascending order.
func (d Domain) All() iter.Seq[int] {
	return slices.Values(d.ids)
}

// IDs returns a copy of the object ids in ascending order.
func (d Domain) IDs() []int {
	return slices.Clone(d.ids)
}

// Min returns the smallest id, or false when the domain is empty.
func (d Domain) Min() (int, bool) {
	if len(d.ids) == 0 {
		return 0, false
	}

	return d.ids[0], true
}

// Max returns the largest id, or false when the domain is empty.
func (d Domain) Max() (int, bool) {
	if len(d.ids) == 0 {
		return 0, false
	}

	return d.ids[len(d.ids)-1], true
}

// Union returns the set of ids present in d or other.
func (d Domain) Union(other Domain) Domain {
	switch {
	case len(other.ids) == 0:
		return d
	case len(d.ids) == 0:
		return other
	}

	out := make([]int, 0, len(d.ids)+len(other.ids))
	i, j := 0, 0
	for i < len(d.ids) && j < len(other.ids) {
		switch {
		case d.ids[i] < other.ids[j]:
			out = append(out, d.ids[i])
			i++
		case d.ids[i] > other.ids[j]:
			out = append(out, other.ids[j])
			j++
		default:
			out = append(out, d.ids[i])
			i++
			j++
		}
	}
	out = append(out, d.ids[i:]...)
	out = append(out, other.ids[j:]...)

	return Domain{ids: out}
}

// Minus returns the ids of d that are not in other.
func (d Domain) Minus(other Domain) Domain {
	if len(d.ids) == 0 || len(other.ids) == 0 {
		return d
	}

	out := make([]int, 0, len(d.ids))
	j := 0
	for _, o := range d.ids {
		for j < len(other.ids) && other.ids[j] < o {
			j++
		}
		if j < len(other.ids) && other.ids[j] == o {
			continue
		}
		out = append(out, o)
	}

	return Domain{ids: out}
}

// Intersect returns the ids present in both d and other.
func (d Domain) Intersect(other Domain) Domain {
	if len(d.ids) == 0 || len(other.ids) == 0 {
		return Domain{}
	}

	out := make([]int, 0, min(len(d.ids), len(other.ids)))
	i, j := 0, 0
	for i < len(d.ids) && j < len(other.ids) {
		switch {
		case d.ids[i] < other.ids[j]:
			i++
		case d.ids[i] > other.ids[j]:
			j++
		default:
			out = append(out, d.ids[i])
			i++
			j++
		}
	}

	return Domain{ids: out}
}

// Equal reports whether both domains hold the same ids.
func (d Domain) Equal(other Domain) bool {
	return slices.Equal(d.ids, other.ids)
}

// String formats the domain as "{1, 2, 3}".
func (d Domain) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, o := range d.ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(o))
	}
	b.WriteByte('}')

	return b.String()
}

// UnionAll returns the union of all given domains.
func UnionAll(domains ...Domain) Domain {
	var out Domain
	for _, d := range domains {
		out = out.Union(d)
	}

	return out
}
