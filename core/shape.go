// plateau/core/shape.go
package core

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Shape is the ordered list of dimension sizes of a variable or parameter.
// A nil or empty Shape denotes a scalar. Every dimension must be >= 1.
type Shape []int

// ScalarShape is the canonical shape of a scalar value.
var ScalarShape = Shape{}

func (s Shape) String() string {
	return "[" + strings.Join(gfn.Map(s, func(d int) string { return fmt.Sprintf("%d", d) }), ", ") + "]"
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// IsScalar tells whether the shape has no dimensions.
func (s Shape) IsScalar() bool { return len(s) == 0 }

// Size returns the total number of elements (product of all dims).
// A scalar has size 1.
func (s Shape) Size() int {
	out := 1
	for _, d := range s {
		out *= d
	}
	return out
}

func (s Shape) Equals(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i, d := range s {
		if d != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy. Shapes are shared freely between
// nodes and artifacts so mutating a shared instance is never safe.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Concat returns a new shape with other's dims appended after s's.
func (s Shape) Concat(other Shape) Shape {
	out := make(Shape, 0, len(s)+len(other))
	out = append(out, s...)
	out = append(out, other...)
	return out
}

// HasPrefix tells whether s begins with all of prefix's dims.
func (s Shape) HasPrefix(prefix Shape) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, d := range prefix {
		if s[i] != d {
			return false
		}
	}
	return true
}

// Validate ensures every dimension is positive.
func (s Shape) Validate() error {
	for i, d := range s {
		if d < 1 {
			return fmt.Errorf("shape %s has non-positive dimension %d at axis %d", s, d, i)
		}
	}
	return nil
}

// ShapeMismatchError reports shapes that cannot be combined, either by
// broadcasting or by an explicit-shape/scope conflict.
type ShapeMismatchError struct {
	Left, Right Shape
	Context     string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: %s vs %s (%s)", e.Left, e.Right, e.Context)
}

func ShapeMismatchf(left, right Shape, format string, args ...any) *ShapeMismatchError {
	return &ShapeMismatchError{Left: left.Clone(), Right: right.Clone(), Context: fmt.Sprintf(format, args...)}
}

// Broadcast combines two shapes by the standard trailing-dimension
// alignment rule: dims are compared right to left and are compatible
// when equal or when one of them is 1 (which stretches to the other).
// Returns a ShapeMismatchError when any pair is incompatible.
func Broadcast(a, b Shape) (Shape, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Shape, n)
	for i := 1; i <= n; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}
		switch {
		case da == db:
			out[n-i] = da
		case da == 1:
			out[n-i] = db
		case db == 1:
			out[n-i] = da
		default:
			return nil, ShapeMismatchf(a, b, "dims %d and %d are not broadcast-compatible", da, db)
		}
	}
	return out, nil
}

// BroadcastAll folds Broadcast over any number of shapes. With no
// arguments it returns the scalar shape.
func BroadcastAll(shapes ...Shape) (Shape, error) {
	out := ScalarShape
	for _, s := range shapes {
		next, err := Broadcast(out, s)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}
