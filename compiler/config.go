// plateau/compiler/config.go
package compiler

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/panyam/plateau/core"
	"github.com/panyam/plateau/decl"
)

// Config is the serializable form of an (uncompiled) model: the scope
// tree, the variables with their raw parameter expressions and shape
// hints, the inference configuration, and the Q bindings. It holds
// enough to reconstruct an equivalent model with FromConfig.
type Config struct {
	Scopes    []*ScopeConfig      `yaml:"scopes,omitempty"`
	Variables []*VarConfig        `yaml:"variables"`
	Inference *InferenceConfig    `yaml:"inference,omitempty"`
	Q         map[string]*QConfig `yaml:"q,omitempty"`
}

// ScopeConfig is one replication scope. Seq preserves the original
// entry order so construction can be replayed faithfully.
type ScopeConfig struct {
	Label    string         `yaml:"label"`
	Name     string         `yaml:"name,omitempty"`
	Size     int            `yaml:"size,omitempty"`
	Batch    int            `yaml:"batch,omitempty"`
	Compound []string       `yaml:"compound,omitempty,flow"`
	Seq      int            `yaml:"seq"`
	Children []*ScopeConfig `yaml:"children,omitempty"`
}

// VarConfig is one variable with raw (unresolved) parameters and the
// caller's original shape hints; the resolved shape is recomputed on
// load.
type VarConfig struct {
	Name     string                  `yaml:"name"`
	Kind     string                  `yaml:"kind"`
	Observed bool                    `yaml:"observed,omitempty"`
	Shape    []int                   `yaml:"shape,omitempty,flow"`
	Dim      int                     `yaml:"dim,omitempty"`
	Params   map[string]*ParamConfig `yaml:"params,omitempty"`
	Scope    string                  `yaml:"scope,omitempty"` // label of the innermost enclosing scope
	Seq      int                     `yaml:"seq"`
}

// ParamConfig is one raw parameter expression; exactly one variant is
// set.
type ParamConfig struct {
	Scalar       *float64  `yaml:"scalar,omitempty"`
	Values       []float64 `yaml:"values,omitempty,flow"`
	ValuesShape  []int     `yaml:"values_shape,omitempty,flow"`
	Ref          string    `yaml:"ref,omitempty"`
	External     string    `yaml:"external,omitempty"`
	ExternalDims []int     `yaml:"external_shape,omitempty,flow"`
}

// InferenceConfig names the algorithm and carries its free-form
// options (optimizer, learning rate, epochs, batch size, ...).
type InferenceConfig struct {
	Algorithm string         `yaml:"algorithm"`
	Options   map[string]any `yaml:"options,omitempty"`
}

// QConfig is the serialized approximating-family binding for one
// latent.
type QConfig struct {
	Kind   string                  `yaml:"kind"`
	Init   string                  `yaml:"init,omitempty"`
	Params map[string]*ParamConfig `yaml:"params,omitempty"`
}

// YAML serializes the config.
func (c *Config) YAML() ([]byte, error) { return yaml.Marshal(c) }

// ParseConfig deserializes a config produced by YAML().
func ParseConfig(data []byte) (*Config, error) {
	var out Config
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("cannot parse model config: %w", err)
	}
	return &out, nil
}

// Config captures the model's construction state. Together with
// FromConfig it satisfies the structural round-trip law: the rebuilt
// model has an identical node set, scope structure, and inference
// configuration.
func (m *ProbModel) Config() *Config {
	out := &Config{}
	for _, root := range m.session.Roots() {
		out.Scopes = append(out.Scopes, scopeConfig(root))
	}
	for _, v := range m.nodeSet() {
		out.Variables = append(out.Variables, varConfig(v))
	}
	if m.cfg != nil {
		out.Inference = &InferenceConfig{Algorithm: m.cfg.Algorithm, Options: m.cfg.Options}
		if len(m.cfg.Q) > 0 {
			out.Q = map[string]*QConfig{}
			for name, b := range m.cfg.Q {
				out.Q[name] = qConfig(b)
			}
		}
	}
	return out
}

func scopeConfig(s *decl.Scope) *ScopeConfig {
	out := &ScopeConfig{
		Label: s.Label(),
		Name:  s.Name(),
		Seq:   s.Seq(),
	}
	if s.IsCompound() {
		for _, ref := range s.Compound() {
			out.Compound = append(out.Compound, ref.Name())
		}
	} else {
		out.Size = s.Size()
		out.Batch = s.BatchSize()
	}
	for _, child := range s.Children() {
		out.Children = append(out.Children, scopeConfig(child))
	}
	return out
}

func varConfig(v *decl.RandomVariable) *VarConfig {
	shape, dim := v.ShapeHint()
	out := &VarConfig{
		Name:     v.Name(),
		Kind:     v.Kind().String(),
		Observed: v.Observed(),
		Shape:    shape,
		Dim:      dim,
		Seq:      v.Seq(),
	}
	if path := v.ScopePath(); len(path) > 0 {
		out.Scope = path[len(path)-1].Label()
	}
	params := v.Params()
	if len(params) > 0 {
		out.Params = map[string]*ParamConfig{}
		for name, p := range params {
			out.Params[name] = paramConfig(p)
		}
	}
	return out
}

func paramConfig(p decl.Param) *ParamConfig {
	switch p := p.(type) {
	case *decl.ConstParam:
		v := p.Value
		return &ParamConfig{Scalar: &v}
	case *decl.ArrayParam:
		return &ParamConfig{Values: p.Tensor.Values, ValuesShape: p.Tensor.Dims}
	case *decl.RefParam:
		return &ParamConfig{Ref: p.Name}
	case *decl.ExternalParam:
		return &ParamConfig{External: p.Name, ExternalDims: p.Dims}
	}
	return nil
}

func qConfig(b QBinding) *QConfig {
	out := &QConfig{Kind: b.Kind.String(), Init: b.Init}
	if len(b.Params) > 0 {
		out.Params = map[string]*ParamConfig{}
		for name, t := range b.Params {
			out.Params[name] = &ParamConfig{Values: t.Values, ValuesShape: t.Dims}
		}
	}
	return out
}

// --- loading ---

// replayEvent is one step of the original construction: a scope entry
// or a variable declaration, in global sequence order.
type replayEvent struct {
	seq   int
	scope *ScopeConfig
	// for scope events: label of the parent scope ("" for top level)
	parent string
	v      *VarConfig
}

// FromConfig reconstructs an equivalent uncompiled model in a fresh
// session by replaying the recorded construction order: scopes are
// re-entered (and exited, inferred from LIFO nesting) and variables
// re-declared exactly as they originally were.
func FromConfig(cfg *Config) (*ProbModel, error) {
	var events []replayEvent
	var collect func(sc *ScopeConfig, parent string) error
	collect = func(sc *ScopeConfig, parent string) error {
		events = append(events, replayEvent{seq: sc.Seq, scope: sc, parent: parent})
		for _, child := range sc.Children {
			if err := collect(child, sc.Label); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range cfg.Scopes {
		if err := collect(root, ""); err != nil {
			return nil, err
		}
	}
	for _, vc := range cfg.Variables {
		events = append(events, replayEvent{seq: vc.Seq, v: vc})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].seq < events[j].seq })

	sess := decl.NewSession()
	var guards []*decl.ScopeGuard

	// exitTo pops open scopes until the innermost one has the wanted
	// label ("" pops everything). The recorded construction was LIFO, so
	// the wanted scope is always on the stack.
	exitTo := func(label string) error {
		for len(guards) > 0 {
			top := guards[len(guards)-1]
			if label != "" && top.Scope().Label() == label {
				return nil
			}
			if err := top.Exit(); err != nil {
				return err
			}
			guards = guards[:len(guards)-1]
		}
		if label != "" {
			return fmt.Errorf("config references scope %q outside its nesting", label)
		}
		return nil
	}

	for _, ev := range events {
		if ev.scope != nil {
			if err := exitTo(ev.parent); err != nil {
				return nil, err
			}
			var guard *decl.ScopeGuard
			var err error
			if len(ev.scope.Compound) > 0 {
				guard, err = sess.EnterCompound(ev.scope.Compound...)
			} else {
				var opts []decl.ScopeOption
				if ev.scope.Name != "" {
					opts = append(opts, decl.Named(ev.scope.Name))
				}
				if ev.scope.Batch > 0 {
					opts = append(opts, decl.Batched(ev.scope.Batch))
				}
				guard, err = sess.Enter(ev.scope.Size, opts...)
			}
			if err != nil {
				return nil, fmt.Errorf("replaying scope %q: %w", ev.scope.Label, err)
			}
			guards = append(guards, guard)
			continue
		}

		if err := exitTo(ev.v.Scope); err != nil {
			return nil, err
		}
		if err := replayVar(sess, ev.v); err != nil {
			return nil, err
		}
	}
	if err := exitTo(""); err != nil {
		return nil, err
	}

	model := New(sess)
	if cfg.Inference != nil {
		compileCfg := &CompileConfig{Algorithm: cfg.Inference.Algorithm, Options: cfg.Inference.Options}
		if len(cfg.Q) > 0 {
			compileCfg.Q = map[string]QBinding{}
			for name, qc := range cfg.Q {
				binding, err := qBinding(qc)
				if err != nil {
					return nil, fmt.Errorf("Q binding for %q: %w", name, err)
				}
				compileCfg.Q[name] = binding
			}
		}
		model.cfg = compileCfg
	}
	return model, nil
}

func replayVar(sess *decl.Session, vc *VarConfig) error {
	kind, err := core.ParseKind(vc.Kind)
	if err != nil {
		return err
	}
	params := decl.Params{}
	for name, pc := range vc.Params {
		p, err := replayParam(sess, pc)
		if err != nil {
			return fmt.Errorf("variable %q parameter %q: %w", vc.Name, name, err)
		}
		params[name] = p
	}
	opts := []decl.VarOption{decl.WithName(vc.Name)}
	if vc.Observed {
		opts = append(opts, decl.Observed())
	}
	if len(vc.Shape) > 0 {
		opts = append(opts, decl.WithShape(vc.Shape...))
	}
	if vc.Dim > 0 {
		opts = append(opts, decl.WithDim(vc.Dim))
	}
	_, err = decl.New(sess, kind, params, opts...)
	if err != nil {
		return fmt.Errorf("replaying variable %q: %w", vc.Name, err)
	}
	return nil
}

func replayParam(sess *decl.Session, pc *ParamConfig) (decl.Param, error) {
	switch {
	case pc.Scalar != nil:
		return decl.Const(*pc.Scalar), nil
	case pc.Values != nil:
		dims := core.Shape(pc.ValuesShape)
		if dims == nil {
			dims = core.Shape{len(pc.Values)}
		}
		t, err := core.NewTensor(dims, pc.Values)
		if err != nil {
			return nil, err
		}
		return &decl.ArrayParam{Tensor: t}, nil
	case pc.Ref != "":
		if target, ok := sess.Lookup(pc.Ref); ok {
			return decl.Ref(target), nil
		}
		return decl.RefName(pc.Ref), nil
	case pc.External != "":
		return decl.External(pc.External, core.Shape(pc.ExternalDims)), nil
	}
	return nil, fmt.Errorf("empty parameter expression")
}

func qBinding(qc *QConfig) (QBinding, error) {
	kind, err := core.ParseKind(qc.Kind)
	if err != nil {
		return QBinding{}, err
	}
	out := QBinding{Kind: kind, Init: qc.Init}
	if len(qc.Params) > 0 {
		out.Params = map[string]*core.Tensor{}
		for name, pc := range qc.Params {
			switch {
			case pc.Scalar != nil:
				out.Params[name] = core.Scalar(*pc.Scalar)
			case pc.Values != nil:
				dims := core.Shape(pc.ValuesShape)
				if dims == nil {
					dims = core.Shape{len(pc.Values)}
				}
				t, err := core.NewTensor(dims, pc.Values)
				if err != nil {
					return QBinding{}, err
				}
				out.Params[name] = t
			default:
				return QBinding{}, fmt.Errorf("Q parameter %q must be a literal", name)
			}
		}
	}
	return out, nil
}
