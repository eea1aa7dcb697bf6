package arrow

// Unit is the empty value passed where an arrow has no meaningful input or output.
type Unit struct{}

// Pair is the input and output shape of Product and SeqProduct.
type Pair[A, B any] struct {
	First  A
	Second B
}

// MakePair builds a Pair.
func MakePair[A, B any](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}

// Either holds exactly one of a left or a right value. Fixpoint loops on
// Left and exits on Right.
type Either[L, R any] struct {
	left    L
	right   R
	isRight bool
}

// Left builds an Either holding l.
func Left[L, R any](l L) Either[L, R] {
	return Either[L, R]{left: l}
}

// Right builds an Either holding r.
func Right[L, R any](r R) Either[L, R] {
	return Either[L, R]{right: r, isRight: true}
}

// IsRight reports whether e holds a right value.
func (e Either[L, R]) IsRight() bool {
	return e.isRight
}

// LeftValue returns the left value and whether e holds one.
func (e Either[L, R]) LeftValue() (L, bool) {
	return e.left, !e.isRight
}

// RightValue returns the right value and whether e holds one.
func (e Either[L, R]) RightValue() (R, bool) {
	return e.right, e.isRight
}

// Cloner is implemented by values that need a deep copy when an arrow hands
// the same value to more than one consumer (Value, Fork, valued signals).
type Cloner[T any] interface {
	Clone() T
}

// Clone copies v, using its Clone method when it implements Cloner[T].
// Other values are copied by assignment.
func Clone[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
