// plateau/decl/variable.go
package decl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/panyam/plateau/core"
)

// RandomVariable is one declared node of the model: its identity,
// distribution kind, raw parameter expressions, observed flag, the
// shape resolved at declaration time, and the scope path that was open
// when it was declared. A variable is immutable once constructed;
// there is no reshaping after the fact.
type RandomVariable struct {
	name     string
	kind     core.DistKind
	params   Params
	observed bool
	shape    core.Shape
	path     []*Scope

	// hints as given by the caller, kept for the config round trip
	explicitShape core.Shape
	dim           int

	// session-wide declaration order
	seq int
}

func (v *RandomVariable) Name() string        { return v.name }
func (v *RandomVariable) Kind() core.DistKind { return v.kind }
func (v *RandomVariable) Observed() bool      { return v.observed }
func (v *RandomVariable) Shape() core.Shape   { return v.shape.Clone() }

// Seq returns the variable's declaration order within its session.
// Topological ordering uses it to break ties deterministically.
func (v *RandomVariable) Seq() int { return v.seq }

// ScopePath returns the scopes that were open at declaration time,
// outermost first.
func (v *RandomVariable) ScopePath() []*Scope {
	out := make([]*Scope, len(v.path))
	copy(out, v.path)
	return out
}

// Replicated tells whether the variable was declared inside at least
// one replication scope.
func (v *RandomVariable) Replicated() bool { return len(v.path) > 0 }

// Params returns the parameter expressions keyed by schema name. The
// returned map is a copy; the expressions themselves are shared and
// must not be mutated.
func (v *RandomVariable) Params() Params {
	out := Params{}
	for name, p := range v.params {
		out[name] = p
	}
	return out
}

// ShapeHint returns the raw shape/dim hints given at declaration, for
// serialization. Either may be unset (nil / 0).
func (v *RandomVariable) ShapeHint() (core.Shape, int) {
	return v.explicitShape.Clone(), v.dim
}

// Refs returns the distinct names this variable's parameters
// reference, in sorted order.
func (v *RandomVariable) Refs() []string {
	seen := map[string]bool{}
	for _, p := range v.params {
		if ref, ok := p.(*RefParam); ok && !seen[ref.Name] {
			seen[ref.Name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (v *RandomVariable) String() string {
	parts := make([]string, 0, len(v.params))
	for _, name := range sortedParamNames(v.params) {
		parts = append(parts, fmt.Sprintf("%s=%s", name, v.params[name]))
	}
	suffix := ""
	if v.observed {
		suffix = ", observed"
	}
	return fmt.Sprintf("%s ~ %s(%s) %s%s", v.name, v.kind, strings.Join(parts, ", "), v.shape, suffix)
}

func sortedParamNames(params Params) []string {
	out := make([]string, 0, len(params))
	for name := range params {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// VarOption configures a variable under construction.
type VarOption func(*varConfig)

type varConfig struct {
	name     string
	observed bool
	shape    core.Shape
	dim      int
}

// WithName assigns an explicit name instead of the generated
// randvar_N one.
func WithName(name string) VarOption {
	return func(c *varConfig) { c.name = name }
}

// Observed marks the variable as fixed to data; it contributes to the
// likelihood instead of being a latent inference target.
func Observed() VarOption {
	return func(c *varConfig) { c.observed = true }
}

// WithShape gives the full shape explicitly. Its leading dims must
// match any open scope sizes.
func WithShape(dims ...int) VarOption {
	return func(c *varConfig) { c.shape = core.Shape(dims) }
}

// WithDim gives the event shape as a single trailing dimension.
func WithDim(dim int) VarOption {
	return func(c *varConfig) { c.dim = dim }
}

// New declares a random variable against the session: validates the
// distribution kind and its parameters, resolves the shape from the
// currently open scopes and the hints, and registers the variable
// (failing with DuplicateNameError on a name collision). The observed
// flag defaults to false.
func New(sess *Session, kind core.DistKind, params Params, opts ...VarOption) (*RandomVariable, error) {
	if !kind.Known() {
		return nil, &core.UnknownDistributionError{Name: kind.String()}
	}
	var cfg varConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.dim < 0 {
		return nil, fmt.Errorf("dim hint must be positive, got %d", cfg.dim)
	}
	if params == nil {
		params = Params{}
	}

	path := sess.Path()
	outer := OuterDims(path)
	if err := core.ValidateParams(kind, paramEventShapes(outer, params)); err != nil {
		return nil, err
	}
	shape, err := ResolveShape(path, kind, params, shapeHints{explicit: cfg.shape, dim: cfg.dim})
	if err != nil {
		return nil, err
	}

	name := cfg.name
	if name == "" {
		name = sess.nextName()
	}
	v := &RandomVariable{
		name:          name,
		kind:          kind,
		params:        params,
		observed:      cfg.observed,
		shape:         shape,
		path:          path,
		explicitShape: cfg.shape.Clone(),
		dim:           cfg.dim,
	}
	if err := sess.register(v); err != nil {
		return nil, err
	}
	return v, nil
}
