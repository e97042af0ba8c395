// plateau/runtime/backend.go
package runtime

import (
	"fmt"

	"github.com/panyam/plateau/core"
)

// Dataset maps node names to concrete value tensors: samples coming
// out of a backend, or observations going in.
type Dataset map[string]*core.Tensor

// Posterior is the approximating distribution a backend reports for
// one latent node after fitting.
type Posterior struct {
	Node   string
	Kind   core.DistKind
	Shape  core.Shape
	Params map[string]*core.Tensor
}

// Mean returns the posterior's point estimate when the backend
// supplies one under a conventional parameter name.
func (p *Posterior) Mean() (*core.Tensor, bool) {
	for _, name := range []string{"mean", "loc", "probs", "point"} {
		if t, ok := p.Params[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (p *Posterior) String() string {
	return fmt.Sprintf("%s ~ %s%s", p.Node, p.Kind, p.Shape)
}

// FitSummary is the convergence report of one Fit run.
type FitSummary struct {
	Epochs    int
	FinalLoss float64
	Converged bool
}

// InferenceBackend is the external numeric engine. The core never
// samples, differentiates or optimizes; it hands the backend a
// compiled artifact and delegates every numeric call to the program
// the backend returns.
type InferenceBackend interface {
	// Bind prepares the backend for one compiled artifact. It is called
	// once per successful (re)compilation; a failure aborts compilation.
	Bind(art *Artifact) (Program, error)
}

// Program is a backend's handle for one bound artifact. Each method is
// one synchronous logical request; errors propagate to the caller
// unchanged.
type Program interface {
	// Fit runs the bound inference algorithm on the observations.
	Fit(data Dataset, epochs int) (*FitSummary, error)

	// Update incrementally refreshes the posterior with new data,
	// starting from previously fit state.
	Update(data Dataset) error

	// Sample draws size joint samples; the result holds a tensor per
	// node whose shape is the node's resolved shape with a leading
	// sample dimension.
	Sample(size int) (Dataset, error)

	// LogProb evaluates the joint log-probability of the data: a scalar
	// tensor, or one value per replicate.
	LogProb(data Dataset) (*core.Tensor, error)

	// Posterior reports approximating distributions for the named
	// latent nodes.
	Posterior(nodes []string) (map[string]*Posterior, error)

	// Predict returns the posterior-predictive point estimate of the
	// target node given new observations.
	Predict(data Dataset, target string) (*core.Tensor, error)
}
