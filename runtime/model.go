// plateau/runtime/model.go
package runtime

import (
	"fmt"

	"github.com/panyam/plateau/core"
)

// CompiledModel is the handle a successful compilation returns. It
// owns the immutable artifact and the backend program bound to it,
// and exposes the numeric surface (fit, sample, posterior, ...) by
// delegating one logical request per call.
type CompiledModel struct {
	artifact *Artifact
	program  Program
	logger   Logger
}

// NewCompiledModel wraps an artifact and its bound program. program
// may be nil when the model was compiled without a backend, in which
// case every numeric call fails with ErrNoBackend.
func NewCompiledModel(art *Artifact, program Program, logger Logger) *CompiledModel {
	if logger == nil {
		logger = DefaultLoggerInstance()
	}
	return &CompiledModel{artifact: art, program: program, logger: logger}
}

// Artifact returns the compile artifact. Callers must treat it as
// read-only.
func (m *CompiledModel) Artifact() *Artifact { return m.artifact }

func (m *CompiledModel) ensureProgram() error {
	if m.program == nil {
		return ErrNoBackend
	}
	return nil
}

// Sample draws size joint samples for every node.
func (m *CompiledModel) Sample(size int) (Dataset, error) {
	if err := m.ensureProgram(); err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, fmt.Errorf("sample size must be positive, got %d", size)
	}
	return m.program.Sample(size)
}

// LogProb evaluates the joint log-probability of the supplied data.
func (m *CompiledModel) LogProb(data Dataset) (*core.Tensor, error) {
	if err := m.ensureProgram(); err != nil {
		return nil, err
	}
	return m.program.LogProb(data)
}

// Fit runs the bound inference algorithm for the given number of
// epochs. Backend failures propagate unchanged.
func (m *CompiledModel) Fit(data Dataset, epochs int) (*FitSummary, error) {
	if err := m.ensureProgram(); err != nil {
		return nil, err
	}
	m.logger.Info("fitting %d nodes with %q for %d epochs", len(m.artifact.Nodes), m.artifact.Algorithm, epochs)
	return m.program.Fit(data, epochs)
}

// Update refreshes the posterior incrementally with new data.
func (m *CompiledModel) Update(data Dataset) error {
	if err := m.ensureProgram(); err != nil {
		return err
	}
	return m.program.Update(data)
}

// Posterior reports approximating distributions for the named latent
// nodes. With no names it defaults to every non-replicated latent, the
// variables a caller usually means by "the parameters".
func (m *CompiledModel) Posterior(nodes ...string) (map[string]*Posterior, error) {
	if err := m.ensureProgram(); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		for i := range m.artifact.Nodes {
			n := &m.artifact.Nodes[i]
			if !n.Observed && !n.Replicated() {
				nodes = append(nodes, n.Name)
			}
		}
	} else {
		for _, name := range nodes {
			spec, ok := m.artifact.Node(name)
			if !ok {
				return nil, fmt.Errorf("posterior requested for unknown node %q", name)
			}
			if spec.Observed {
				return nil, fmt.Errorf("posterior requested for observed node %q", name)
			}
		}
	}
	return m.program.Posterior(nodes)
}

// Predict returns the posterior-predictive point estimate of target
// given new observations.
func (m *CompiledModel) Predict(data Dataset, target string) (*core.Tensor, error) {
	if err := m.ensureProgram(); err != nil {
		return nil, err
	}
	if _, ok := m.artifact.Node(target); !ok {
		return nil, fmt.Errorf("predict target %q is not a node of this model", target)
	}
	return m.program.Predict(data, target)
}

// Evaluate computes the named metrics on the posterior predictive of
// target. With an empty target it uses the model's single observed
// node, failing with ErrNoTarget when that is ambiguous. Metric names
// outside the builtin set must carry their own function or the call
// fails with UnsupportedMetricError.
func (m *CompiledModel) Evaluate(data Dataset, target string, metrics ...Metric) (map[string]float64, error) {
	if err := m.ensureProgram(); err != nil {
		return nil, err
	}
	if target == "" {
		observed := m.artifact.ObservedNodes()
		if len(observed) != 1 {
			return nil, ErrNoTarget
		}
		target = observed[0]
	}
	// Resolve every metric before any numeric work so an unknown name
	// fails fast.
	funcs := make([]MetricFunc, len(metrics))
	for i, metric := range metrics {
		f, err := resolveMetric(metric)
		if err != nil {
			return nil, err
		}
		funcs[i] = f
	}

	predicted, err := m.program.Predict(data, target)
	if err != nil {
		return nil, err
	}
	observed, ok := data[target]
	if !ok {
		return nil, fmt.Errorf("evaluation data has no observations for %q", target)
	}

	out := map[string]float64{}
	for i, metric := range metrics {
		v, err := funcs[i](predicted, observed, nil)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", metric.Name, err)
		}
		out[metric.Name] = v
	}
	return out, nil
}
