package core

import (
	"fmt"
	"math"
)

// ApplyDelta adds a signed delta to a grain count.
// A negative delta must not exceed the count and the result must fit in uint32;
// either violation panics with an InvariantError instead of wrapping.
func ApplyDelta(count uint32, delta int64) uint32 {
	if delta < 0 {
		sub := uint64(-delta)
		if sub > uint64(count) {
			panic(InvariantError{Msg: fmt.Sprintf("count %d cannot lose %d grains", count, sub)})
		}
		return count - uint32(sub)
	}
	sum := uint64(count) + uint64(delta)
	if sum > math.MaxUint32 {
		panic(InvariantError{Msg: fmt.Sprintf("count %d overflows adding %d grains", count, delta)})
	}
	return uint32(sum)
}
