// plateau/compiler/compile.go
package compiler

import (
	"github.com/panyam/plateau/core"
	"github.com/panyam/plateau/decl"
	"github.com/panyam/plateau/graph"
	"github.com/panyam/plateau/runtime"
)

// Compile validates the model's node set and builds the compile
// artifact:
//
//  1. resolve the node set (explicit list or session snapshot),
//  2. build and validate the dependency graph (references, cycles),
//  3. topologically order the nodes and assemble the joint
//     log-probability composition,
//  4. attach Q bindings (explicit plus same-family defaults) and the
//     inference configuration,
//  5. bind the backend, if any, and swap the compiled handle in.
//
// Any failure aborts before step 5, so a previously compiled handle
// stays untouched and usable; callers never observe a partial
// artifact. Passing nil reuses the configuration of the previous
// Compile (or of the config the model was loaded from), defaulting to
// plain variational inference.
func (m *ProbModel) Compile(cfg *CompileConfig) error {
	if cfg == nil {
		cfg = m.cfg
	}
	if cfg == nil {
		cfg = &CompileConfig{Algorithm: "vi"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = m.logger
	}

	if !runtime.KnownAlgorithm(cfg.Algorithm) {
		return &runtime.UnknownAlgorithmError{Name: cfg.Algorithm}
	}

	nodes := m.nodeSet()
	g, err := graph.Build(nodes)
	if err != nil {
		return err
	}
	order := g.TopoOrder()

	if err := validateQ(cfg.Q, nodes); err != nil {
		return err
	}

	art := &runtime.Artifact{
		Q:         map[string]runtime.QSpec{},
		Algorithm: cfg.Algorithm,
		Options:   cloneOptions(cfg.Options),
	}
	for _, n := range order {
		art.Nodes = append(art.Nodes, nodeSpec(n))
		art.Joint = append(art.Joint, runtime.JointTerm{
			Node:      n.Name(),
			DependsOn: producerNames(g, n),
		})
	}
	for _, n := range order {
		if n.Observed() {
			continue
		}
		if b, ok := cfg.Q[n.Name()]; ok {
			art.Q[n.Name()] = runtime.QSpec{Node: n.Name(), Kind: b.Kind, Params: cloneQParams(b.Params), Init: b.Init}
		} else {
			// default approximation: same family as the latent itself
			art.Q[n.Name()] = runtime.QSpec{Node: n.Name(), Kind: n.Kind(), Init: "default"}
		}
	}

	var program runtime.Program
	if cfg.Backend != nil {
		program, err = cfg.Backend.Bind(art)
		if err != nil {
			return err
		}
	}

	logger.Debug("compiled %d nodes (%d edges) with algorithm %q", len(art.Nodes), len(g.Edges()), cfg.Algorithm)
	m.cfg = cfg
	m.logger = logger
	m.compiled = runtime.NewCompiledModel(art, program, logger)
	return nil
}

// The artifact is immutable once handed out, so the caller's config
// maps are copied rather than aliased into it.

func cloneOptions(opts map[string]any) map[string]any {
	if opts == nil {
		return nil
	}
	out := make(map[string]any, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	return out
}

func cloneQParams(params map[string]*core.Tensor) map[string]*core.Tensor {
	if params == nil {
		return nil
	}
	out := make(map[string]*core.Tensor, len(params))
	for k, t := range params {
		out[k] = t.Clone()
	}
	return out
}

// validateQ rejects bindings whose target is missing from the node
// set, observed, or of an unknown family.
func validateQ(q map[string]QBinding, nodes []*decl.RandomVariable) error {
	if len(q) == 0 {
		return nil
	}
	byName := map[string]*decl.RandomVariable{}
	for _, n := range nodes {
		byName[n.Name()] = n
	}
	for name, b := range q {
		n, ok := byName[name]
		if !ok {
			return &QBindingError{Node: name, Reason: "no such node in the model"}
		}
		if n.Observed() {
			return &QBindingError{Node: name, Reason: "node is observed, not latent"}
		}
		if !b.Kind.Known() {
			return &QBindingError{Node: name, Reason: (&core.UnknownDistributionError{Name: b.Kind.String()}).Error()}
		}
	}
	return nil
}

// nodeSpec projects one declared variable into the backend contract:
// resolved shape, plates from the scope path, and parameter
// expressions with references resolved to producer names.
func nodeSpec(n *decl.RandomVariable) runtime.NodeSpec {
	spec := runtime.NodeSpec{
		Name:     n.Name(),
		Kind:     n.Kind(),
		Shape:    n.Shape(),
		Observed: n.Observed(),
		Params:   map[string]runtime.ParamDesc{},
	}
	for _, scope := range n.ScopePath() {
		if scope.IsCompound() {
			for _, ref := range scope.Compound() {
				spec.Plates = append(spec.Plates, runtime.PlateSpec{Label: ref.Name(), Size: ref.Size(), Batch: ref.BatchSize()})
			}
		} else {
			spec.Plates = append(spec.Plates, runtime.PlateSpec{Label: scope.Label(), Size: scope.Size(), Batch: scope.BatchSize()})
		}
	}
	for name, p := range n.Params() {
		spec.Params[name] = paramDesc(p)
	}
	return spec
}

func paramDesc(p decl.Param) runtime.ParamDesc {
	switch p := p.(type) {
	case *decl.ConstParam:
		return runtime.ParamDesc{Kind: runtime.ParamScalar, Scalar: p.Value}
	case *decl.ArrayParam:
		return runtime.ParamDesc{Kind: runtime.ParamArray, Array: p.Tensor}
	case *decl.RefParam:
		return runtime.ParamDesc{Kind: runtime.ParamRef, Ref: p.Name}
	case *decl.ExternalParam:
		return runtime.ParamDesc{Kind: runtime.ParamExternal, External: p.Name, Dims: p.Dims}
	}
	return runtime.ParamDesc{}
}

func producerNames(g *graph.Graph, n *decl.RandomVariable) []string {
	var out []string
	for _, producer := range g.DependenciesOf(n.Name()) {
		out = append(out, producer.Name())
	}
	return out
}
