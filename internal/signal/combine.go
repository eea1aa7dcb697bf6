package signal

import "cmp"

// Number is the constraint of Sum.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Sum adds emissions.
func Sum[V Number](a, b V) V {
	return a + b
}

// Max keeps the largest emission.
func Max[V cmp.Ordered](a, b V) V {
	return max(a, b)
}

// Min keeps the smallest emission.
func Min[V cmp.Ordered](a, b V) V {
	return min(a, b)
}

// Last keeps the latest emission. It is not commutative: on a parallel
// runtime the winner among same-instant emissions is unspecified.
func Last[V any](_, b V) V {
	return b
}
