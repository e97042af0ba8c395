// plateau/decl/param.go
package decl

import (
	"fmt"

	"github.com/panyam/plateau/core"
)

// Param is one parameter expression of a random variable: a scalar
// literal, a numeric array, a reference to another variable's value,
// or an opaque externally-managed tensor known only by its declared
// output shape. The set of variants is closed.
type Param interface {
	fmt.Stringer
	isParam()
}

// Params maps parameter names (per the distribution's schema) to their
// expressions.
type Params map[string]Param

// ConstParam is a scalar literal.
type ConstParam struct {
	Value float64
}

func (p *ConstParam) isParam()       {}
func (p *ConstParam) String() string { return fmt.Sprintf("%g", p.Value) }

// ArrayParam is a literal numeric array with an explicit shape.
type ArrayParam struct {
	Tensor *core.Tensor
}

func (p *ArrayParam) isParam()       {}
func (p *ArrayParam) String() string { return p.Tensor.String() }

// RefParam references another variable's value. Target is resolved at
// construction when the producer already exists; a by-name reference
// (e.g. replayed from a config) leaves Target nil until the graph is
// built, where unresolved names surface as errors.
type RefParam struct {
	Name   string
	Target *RandomVariable
}

func (p *RefParam) isParam()       {}
func (p *RefParam) String() string { return "@" + p.Name }

// ExternalParam is an opaque parameter tensor managed outside the core
// (e.g. the output of a neural network). Only its declared output
// shape participates in shape resolution.
type ExternalParam struct {
	Name string
	Dims core.Shape
}

func (p *ExternalParam) isParam()       {}
func (p *ExternalParam) String() string { return fmt.Sprintf("extern(%s%s)", p.Name, p.Dims) }

// Const wraps a scalar literal.
func Const(v float64) Param { return &ConstParam{Value: v} }

// Vector wraps a 1-d literal array.
func Vector(values ...float64) Param {
	return &ArrayParam{Tensor: core.Vector(values...)}
}

// Array wraps a literal array of the given shape. Panics when the
// value count does not match the shape; literal parameters are always
// written inline so this is a programming error, not input.
func Array(dims core.Shape, values ...float64) Param {
	t, err := core.NewTensor(dims, values)
	if err != nil {
		panic(err)
	}
	return &ArrayParam{Tensor: t}
}

// Ref references an already-declared variable.
func Ref(v *RandomVariable) Param {
	return &RefParam{Name: v.Name(), Target: v}
}

// RefName references a variable by name, resolved later against the
// model's node set.
func RefName(name string) Param { return &RefParam{Name: name} }

// External declares an opaque parameter tensor with the given output
// shape.
func External(name string, dims core.Shape) Param {
	return &ExternalParam{Name: name, Dims: dims.Clone()}
}

// shapeOf returns the full (outer + event) shape a parameter
// contributes to shape inference, and whether it contributes one at
// all. Scalars contribute the scalar shape; unresolved references
// contribute nothing.
func shapeOf(p Param) (core.Shape, bool) {
	switch p := p.(type) {
	case *ConstParam:
		return core.ScalarShape, true
	case *ArrayParam:
		return p.Tensor.Dims, true
	case *ExternalParam:
		return p.Dims, true
	case *RefParam:
		if p.Target != nil {
			return p.Target.Shape(), true
		}
		return nil, false
	}
	return nil, false
}
