// plateau/decl/resolver.go
package decl

import (
	"fmt"
	"sort"

	"github.com/panyam/plateau/core"
)

// shapeHints carries the caller-supplied shape information of one
// variable declaration.
type shapeHints struct {
	explicit core.Shape // full shape, overrides everything else
	dim      int        // event shape [dim] when > 0
}

// paramEventShapes strips the scope-contributed outer dims from each
// parameter's full shape, leaving its event shape. A parameter whose
// shape does not start with the outer dims is taken to be event-only
// (a literal written without the replicated leading dims, the common
// case). Unresolved by-name references are present with a nil shape;
// they contribute nothing to inference but still count as supplied.
func paramEventShapes(outer core.Shape, params Params) map[string]core.Shape {
	out := map[string]core.Shape{}
	for name, p := range params {
		full, ok := shapeOf(p)
		if !ok {
			out[name] = nil
			continue
		}
		if !outer.IsScalar() && full.HasPrefix(outer) {
			out[name] = full[len(outer):]
		} else {
			out[name] = full
		}
	}
	return out
}

// ResolveShape computes a variable's final shape as outerDims +
// eventDims. outerDims is the concatenation of the sizes of all open
// scopes, outermost first (compound scopes contribute the sizes of
// their referenced scopes in listed order). eventDims is, in priority
// order: the explicit shape hint (which must agree with the open scope
// sizes in its leading dims, see below); [dim] when a dim hint is
// given; else the numpy-style broadcast of the parameters' event
// shapes combined through the distribution kind's own event rule.
//
// An explicit shape is used as-is, but its leading dims must equal the
// open scope sizes; any conflict is a ShapeMismatchError rather than a
// silent override.
func ResolveShape(path []*Scope, kind core.DistKind, params Params, hints shapeHints) (core.Shape, error) {
	outer := OuterDims(path)
	events := paramEventShapes(outer, params)

	// Parameters must be mutually broadcast-compatible regardless of
	// which hint wins.
	names := make([]string, 0, len(events))
	for name := range events {
		names = append(names, name)
	}
	sort.Strings(names)
	combined := core.ScalarShape
	for _, name := range names {
		next, err := core.Broadcast(combined, events[name])
		if err != nil {
			return nil, core.ShapeMismatchf(combined, events[name], "parameter %q of %s", name, kind)
		}
		combined = next
	}

	if hints.explicit != nil {
		if hints.dim > 0 {
			return nil, fmt.Errorf("cannot give both shape and dim hints")
		}
		if err := hints.explicit.Validate(); err != nil {
			return nil, err
		}
		if !hints.explicit.HasPrefix(outer) {
			return nil, core.ShapeMismatchf(hints.explicit, outer,
				"explicit shape's leading dims must match the open scope sizes")
		}
		return hints.explicit.Clone(), nil
	}

	var event core.Shape
	if hints.dim > 0 {
		event = core.Shape{hints.dim}
	} else {
		var err error
		event, err = core.EventShape(kind, events)
		if err != nil {
			return nil, err
		}
	}
	return outer.Concat(event), nil
}
