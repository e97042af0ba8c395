// plateau/runtime/artifact.go
package runtime

import (
	"sort"
	"sync"

	"github.com/panyam/plateau/core"
)

// The compile artifact is the whole contract handed to an external
// inference backend: an ordered, shape-resolved node list, the
// joint-probability composition, the approximating-family bindings,
// and the chosen algorithm with its free-form options. It is built in
// one shot by the compiler and treated as immutable afterwards.

// ParamKind tags the variant held by a ParamDesc.
type ParamKind int

const (
	ParamScalar ParamKind = iota
	ParamArray
	ParamRef
	ParamExternal
)

// ParamDesc is one parameter expression with node references already
// resolved to producer identities.
type ParamDesc struct {
	Kind ParamKind

	Scalar   float64      // ParamScalar
	Array    *core.Tensor // ParamArray
	Ref      string       // ParamRef: producer node name
	External string       // ParamExternal: external tensor name
	Dims     core.Shape   // ParamExternal: declared output shape
}

// PlateSpec describes one replication level a node sits under.
type PlateSpec struct {
	Label string
	Size  int
	Batch int // 0 when the plate is not mini-batched
}

// NodeSpec is one variable as the backend sees it.
type NodeSpec struct {
	Name     string
	Kind     core.DistKind
	Shape    core.Shape
	Observed bool
	Params   map[string]ParamDesc
	Plates   []PlateSpec
}

// Replicated tells whether the node sits under at least one plate.
func (n *NodeSpec) Replicated() bool { return len(n.Plates) > 0 }

// JointTerm is one factor of the joint log-probability: the named
// node's own log-probability conditioned on its already-evaluated
// producers. Terms are listed in topological order, producers first.
type JointTerm struct {
	Node      string
	DependsOn []string
}

// QSpec is the approximating-family binding for one latent node.
type QSpec struct {
	Node   string
	Kind   core.DistKind
	Params map[string]*core.Tensor
	Init   string
}

// Artifact is the immutable output of a successful compilation.
type Artifact struct {
	Nodes []NodeSpec
	Joint []JointTerm
	Q     map[string]QSpec

	Algorithm string
	Options   map[string]any
}

// Node finds a node spec by name.
func (a *Artifact) Node(name string) (*NodeSpec, bool) {
	for i := range a.Nodes {
		if a.Nodes[i].Name == name {
			return &a.Nodes[i], true
		}
	}
	return nil, false
}

// Latents returns the names of all unobserved nodes in artifact
// order.
func (a *Artifact) Latents() []string {
	var out []string
	for i := range a.Nodes {
		if !a.Nodes[i].Observed {
			out = append(out, a.Nodes[i].Name)
		}
	}
	return out
}

// ObservedNodes returns the names of all observed nodes in artifact
// order.
func (a *Artifact) ObservedNodes() []string {
	var out []string
	for i := range a.Nodes {
		if a.Nodes[i].Observed {
			out = append(out, a.Nodes[i].Name)
		}
	}
	return out
}

// --- Inference algorithm registry ---

var (
	algoMu sync.RWMutex
	algos  = map[string]bool{
		"vi":   true, // variational inference
		"svi":  true, // stochastic (mini-batched) variational inference
		"mcmc": true, // markov chain monte carlo
	}
)

// RegisterAlgorithm makes an identifier acceptable to compilation.
// Backends register the algorithms they actually implement.
func RegisterAlgorithm(name string) {
	algoMu.Lock()
	defer algoMu.Unlock()
	algos[name] = true
}

// KnownAlgorithm tells whether the identifier has been registered.
func KnownAlgorithm(name string) bool {
	algoMu.RLock()
	defer algoMu.RUnlock()
	return algos[name]
}

// AlgorithmNames lists the registered identifiers in sorted order.
func AlgorithmNames() []string {
	algoMu.RLock()
	defer algoMu.RUnlock()
	out := make([]string, 0, len(algos))
	for name := range algos {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
