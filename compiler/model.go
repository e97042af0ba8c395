// plateau/compiler/model.go
package compiler

import (
	"sort"

	"github.com/panyam/plateau/core"
	"github.com/panyam/plateau/decl"
	"github.com/panyam/plateau/runtime"
)

// QBinding is a caller-specified approximating distribution for one
// latent variable. Latents without a binding default to their own
// family.
type QBinding struct {
	Kind   core.DistKind
	Params map[string]*core.Tensor
	Init   string
}

// CompileConfig selects the inference algorithm, its free-form
// options, the optional Q bindings, and the backend to hand the
// artifact to. A nil Backend still compiles and validates; the numeric
// surface then fails with runtime.ErrNoBackend until recompiled with
// one.
type CompileConfig struct {
	Algorithm string
	Options   map[string]any
	Q         map[string]QBinding
	Backend   runtime.InferenceBackend
	Logger    runtime.Logger
}

// ProbModel is an ordered, name-unique set of random variables plus,
// once compiled, the artifact and backend program for them. The node
// set is either an explicit list or the "all variables declared in the
// session" sentinel; in the latter case variables keep joining until
// compilation snapshots them.
//
// The state machine is uncompiled -> compiled. A failed compile leaves
// the previous compiled state (if any) untouched and usable.
type ProbModel struct {
	session  *decl.Session
	explicit []*decl.RandomVariable // nil means all-in-session

	// last config given to Compile (or loaded from a saved config),
	// reused when Compile is called with nil
	cfg *CompileConfig

	compiled *runtime.CompiledModel
	logger   runtime.Logger
}

// New creates a model over every variable declared (now or later)
// against the session, snapshotted at compile time.
func New(sess *decl.Session) *ProbModel {
	return &ProbModel{session: sess, logger: runtime.DefaultLoggerInstance()}
}

// NewWithVars creates a model over an explicit variable list. The
// session is still needed for the scope tree (config round trip,
// summaries).
func NewWithVars(sess *decl.Session, vars ...*decl.RandomVariable) *ProbModel {
	return &ProbModel{session: sess, explicit: vars, logger: runtime.DefaultLoggerInstance()}
}

// Session returns the construction session the model draws from.
func (m *ProbModel) Session() *decl.Session { return m.session }

// Compiled tells whether the model has compiled successfully at least
// once.
func (m *ProbModel) IsCompiled() bool { return m.compiled != nil }

// Compiled returns the handle of the last successful compilation.
func (m *ProbModel) Compiled() (*runtime.CompiledModel, error) {
	if m.compiled == nil {
		return nil, &UncompiledModelError{Op: "use the compiled model"}
	}
	return m.compiled, nil
}

// nodeSet resolves the model's node set in declaration order.
func (m *ProbModel) nodeSet() []*decl.RandomVariable {
	var out []*decl.RandomVariable
	if m.explicit != nil {
		out = append(out, m.explicit...)
	} else {
		out = m.session.Variables()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq() < out[j].Seq() })
	return out
}

// Variables returns the model's current node set in declaration
// order. Before compilation of an all-in-session model this tracks the
// session; after compilation the artifact holds the frozen snapshot.
func (m *ProbModel) Variables() []*decl.RandomVariable { return m.nodeSet() }

// --- numeric surface, delegating to the compiled handle ---

// Sample draws size joint samples for every node.
func (m *ProbModel) Sample(size int) (runtime.Dataset, error) {
	if m.compiled == nil {
		return nil, &UncompiledModelError{Op: "sample"}
	}
	return m.compiled.Sample(size)
}

// LogProb evaluates the joint log-probability of the data.
func (m *ProbModel) LogProb(data runtime.Dataset) (*core.Tensor, error) {
	if m.compiled == nil {
		return nil, &UncompiledModelError{Op: "evaluate log_prob"}
	}
	return m.compiled.LogProb(data)
}

// Fit runs the bound inference algorithm on the observations.
func (m *ProbModel) Fit(data runtime.Dataset, epochs int) (*runtime.FitSummary, error) {
	if m.compiled == nil {
		return nil, &UncompiledModelError{Op: "fit"}
	}
	return m.compiled.Fit(data, epochs)
}

// Update refreshes the posterior incrementally with new data.
func (m *ProbModel) Update(data runtime.Dataset) error {
	if m.compiled == nil {
		return &UncompiledModelError{Op: "update"}
	}
	return m.compiled.Update(data)
}

// Posterior reports approximating distributions for the named latents
// (all non-replicated latents when none are named).
func (m *ProbModel) Posterior(nodes ...string) (map[string]*runtime.Posterior, error) {
	if m.compiled == nil {
		return nil, &UncompiledModelError{Op: "query the posterior"}
	}
	return m.compiled.Posterior(nodes...)
}

// Evaluate computes metrics from the posterior predictive of target.
func (m *ProbModel) Evaluate(data runtime.Dataset, target string, metrics ...runtime.Metric) (map[string]float64, error) {
	if m.compiled == nil {
		return nil, &UncompiledModelError{Op: "evaluate"}
	}
	return m.compiled.Evaluate(data, target, metrics...)
}

// Predict returns the posterior-predictive point estimate of target.
func (m *ProbModel) Predict(data runtime.Dataset, target string) (*core.Tensor, error) {
	if m.compiled == nil {
		return nil, &UncompiledModelError{Op: "predict"}
	}
	return m.compiled.Predict(data, target)
}
