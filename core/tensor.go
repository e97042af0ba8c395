// plateau/core/tensor.go
package core

import "fmt"

// Tensor is a dense row-major numeric array with an explicit shape.
// The core never does math on tensors; they only carry literal
// parameter values and backend results across the compile boundary.
type Tensor struct {
	Dims   Shape
	Values []float64
}

// NewTensor builds a tensor after checking the value count against the
// shape's size.
func NewTensor(dims Shape, values []float64) (*Tensor, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if len(values) != dims.Size() {
		return nil, fmt.Errorf("tensor shape %s needs %d values, got %d", dims, dims.Size(), len(values))
	}
	return &Tensor{Dims: dims.Clone(), Values: values}, nil
}

// Scalar wraps a single value as a rank-0 tensor.
func Scalar(v float64) *Tensor {
	return &Tensor{Dims: ScalarShape, Values: []float64{v}}
}

// Vector wraps values as a rank-1 tensor.
func Vector(values ...float64) *Tensor {
	return &Tensor{Dims: Shape{len(values)}, Values: values}
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%s", t.Dims)
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}
	vals := make([]float64, len(t.Values))
	copy(vals, t.Values)
	return &Tensor{Dims: t.Dims.Clone(), Values: vals}
}
