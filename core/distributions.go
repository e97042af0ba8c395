// plateau/core/distributions.go
package core

import (
	"fmt"
	"sort"
	"strings"
)

// DistKind identifies a distribution family in the closed catalog.
// New families are added by adding a variant here plus its kindSpec
// entry, never by open-ended dynamic dispatch.
type DistKind int

const (
	KindUnknown DistKind = iota
	KindNormal
	KindInverseGamma
	KindDirichlet
	KindMultinomial
	KindBernoulli
	KindBinomial
	KindBeta
	KindCategorical
	KindDelta
	KindDeterministic
	KindMultivariateNormal
)

// UnknownDistributionError reports a kind name outside the catalog.
type UnknownDistributionError struct {
	Name string
}

func (e *UnknownDistributionError) Error() string {
	return fmt.Sprintf("unknown distribution kind: %q (known: %s)", e.Name, strings.Join(KindNames(), ", "))
}

// ParamSpec describes one parameter a distribution family accepts.
type ParamSpec struct {
	Name     string
	Required bool

	// MinRank is the minimum event rank the parameter's value must have
	// (e.g. a Dirichlet concentration must be at least a vector).
	MinRank int
}

// kindSpec is the capability record behind each DistKind: its wire
// name, its parameter schema, and how its event shape derives from the
// event shapes of its parameters.
type kindSpec struct {
	name   string
	params []ParamSpec

	// eventShape computes the event shape of the distribution given the
	// (already scope-stripped) event shapes of its parameters. When nil,
	// the event shape is the broadcast of all parameter event shapes.
	eventShape func(paramShapes map[string]Shape) (Shape, error)
}

// lastDimOf returns the trailing dimension of the first present named
// parameter, for families whose support is indexed by a category or
// concentration vector.
func lastDimOf(paramShapes map[string]Shape, names ...string) (int, bool) {
	for _, name := range names {
		if s, ok := paramShapes[name]; ok && s.Rank() >= 1 {
			return s[s.Rank()-1], true
		}
	}
	return 0, false
}

var kindSpecs = map[DistKind]*kindSpec{
	KindNormal: {
		name: "Normal",
		params: []ParamSpec{
			{Name: "loc", Required: true},
			{Name: "scale", Required: true},
		},
	},
	KindInverseGamma: {
		name: "InverseGamma",
		params: []ParamSpec{
			{Name: "concentration", Required: true},
			{Name: "rate", Required: true},
		},
	},
	KindDirichlet: {
		name: "Dirichlet",
		params: []ParamSpec{
			{Name: "concentration", Required: true, MinRank: 1},
		},
		eventShape: func(ps map[string]Shape) (Shape, error) {
			if d, ok := lastDimOf(ps, "concentration"); ok {
				return Shape{d}, nil
			}
			return nil, fmt.Errorf("Dirichlet requires a vector concentration parameter")
		},
	},
	KindMultinomial: {
		name: "Multinomial",
		params: []ParamSpec{
			{Name: "total_count", Required: true},
			{Name: "probs", Required: false, MinRank: 1},
			{Name: "logits", Required: false, MinRank: 1},
		},
		eventShape: func(ps map[string]Shape) (Shape, error) {
			if d, ok := lastDimOf(ps, "probs", "logits"); ok {
				return Shape{d}, nil
			}
			return nil, fmt.Errorf("Multinomial requires a vector probs or logits parameter")
		},
	},
	KindBernoulli: {
		name: "Bernoulli",
		params: []ParamSpec{
			{Name: "probs", Required: false},
			{Name: "logits", Required: false},
		},
	},
	KindBinomial: {
		name: "Binomial",
		params: []ParamSpec{
			{Name: "total_count", Required: true},
			{Name: "probs", Required: false},
			{Name: "logits", Required: false},
		},
	},
	KindBeta: {
		name: "Beta",
		params: []ParamSpec{
			{Name: "concentration1", Required: true},
			{Name: "concentration0", Required: true},
		},
	},
	KindCategorical: {
		name: "Categorical",
		params: []ParamSpec{
			{Name: "probs", Required: false, MinRank: 1},
			{Name: "logits", Required: false, MinRank: 1},
		},
		// A categorical draw is a scalar index even though its
		// parameter is a category vector.
		eventShape: func(ps map[string]Shape) (Shape, error) {
			if _, ok := lastDimOf(ps, "probs", "logits"); ok {
				return ScalarShape, nil
			}
			return nil, fmt.Errorf("Categorical requires a vector probs or logits parameter")
		},
	},
	KindDelta: {
		name: "Delta",
		params: []ParamSpec{
			{Name: "point", Required: true},
		},
	},
	KindDeterministic: {
		name: "Deterministic",
		params: []ParamSpec{
			{Name: "value", Required: true},
		},
	},
	KindMultivariateNormal: {
		name: "MultivariateNormal",
		params: []ParamSpec{
			{Name: "loc", Required: true, MinRank: 1},
			{Name: "scale_diag", Required: false, MinRank: 1},
			{Name: "covariance", Required: false, MinRank: 2},
		},
		eventShape: func(ps map[string]Shape) (Shape, error) {
			if d, ok := lastDimOf(ps, "loc", "scale_diag"); ok {
				return Shape{d}, nil
			}
			return nil, fmt.Errorf("MultivariateNormal requires a vector loc parameter")
		},
	},
}

var kindsByName = func() map[string]DistKind {
	out := map[string]DistKind{}
	for k, spec := range kindSpecs {
		out[spec.name] = k
	}
	return out
}()

func (k DistKind) String() string {
	if spec, ok := kindSpecs[k]; ok {
		return spec.name
	}
	return fmt.Sprintf("DistKind(%d)", int(k))
}

// Known tells whether the kind is a member of the catalog.
func (k DistKind) Known() bool {
	_, ok := kindSpecs[k]
	return ok
}

// Params returns the parameter schema of the kind.
func (k DistKind) Params() []ParamSpec {
	if spec, ok := kindSpecs[k]; ok {
		return spec.params
	}
	return nil
}

// ParseKind resolves a wire/config name ("Normal", "Dirichlet", ...)
// into its catalog variant.
func ParseKind(name string) (DistKind, error) {
	if k, ok := kindsByName[name]; ok {
		return k, nil
	}
	return KindUnknown, &UnknownDistributionError{Name: name}
}

// KindNames lists catalog names in sorted order, for error messages
// and for the CLI.
func KindNames() []string {
	out := make([]string, 0, len(kindsByName))
	for name := range kindsByName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ValidateParams checks supplied parameter names against the kind's
// schema: every required parameter present, no parameter outside the
// schema, and any MinRank floor satisfied by the given event shape.
// A nil shape means the parameter is present but its shape is not yet
// known (an unresolved reference); rank checks are skipped for it.
func ValidateParams(kind DistKind, paramShapes map[string]Shape) error {
	spec, ok := kindSpecs[kind]
	if !ok {
		return &UnknownDistributionError{Name: kind.String()}
	}
	byName := map[string]*ParamSpec{}
	for i := range spec.params {
		byName[spec.params[i].Name] = &spec.params[i]
	}
	for name, shape := range paramShapes {
		ps, ok := byName[name]
		if !ok {
			return fmt.Errorf("%s does not accept parameter %q", spec.name, name)
		}
		if shape != nil && shape.Rank() < ps.MinRank {
			return fmt.Errorf("%s parameter %q requires rank >= %d, got shape %s", spec.name, name, ps.MinRank, shape)
		}
	}
	for _, ps := range spec.params {
		if ps.Required {
			if _, ok := paramShapes[ps.Name]; !ok {
				return fmt.Errorf("%s is missing required parameter %q", spec.name, ps.Name)
			}
		}
	}
	return nil
}

// EventShape computes the kind's event shape from its parameters'
// event shapes. For scalar families this is the broadcast of the
// parameter shapes; vector families override it (see kindSpecs).
func EventShape(kind DistKind, paramShapes map[string]Shape) (Shape, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, &UnknownDistributionError{Name: kind.String()}
	}
	if spec.eventShape != nil {
		return spec.eventShape(paramShapes)
	}
	shapes := make([]Shape, 0, len(paramShapes))
	for _, s := range paramShapes {
		shapes = append(shapes, s)
	}
	return BroadcastAll(shapes...)
}
