package testutil

import (
	"math/rand/v2"

	"github.com/arloliu/jointown/types"
)

// RandomDomain returns a domain where each object of [0, objects) is included
// with probability density.
func RandomDomain(rng *rand.Rand, objects int, density float64) types.Domain {
	ids := make([]int, 0, int(float64(objects)*density)+1)
	for o := range objects {
		if rng.Float64() < density {
			ids = append(ids, o)
		}
	}

	return types.NewDomain(ids...)
}

// RandomWindow returns a contiguous domain of at most width objects inside
// [0, objects). Overlapping windows produce long exchange chains.
func RandomWindow(rng *rand.Rand, objects, width int) types.Domain {
	if objects <= 0 || width <= 0 {
		return types.Domain{}
	}
	width = min(width, objects)
	from := rng.IntN(objects - width + 1)

	return types.DomainRange(from, from+width)
}
