package runtime

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panyam/plateau/core"
)

// fakeProgram is a scripted backend program that records what it was
// asked for and serves canned answers.
type fakeProgram struct {
	posteriorNodes []string
	predictCalls   int
	predicted      *core.Tensor
	predictErr     error
}

func (p *fakeProgram) Fit(data Dataset, epochs int) (*FitSummary, error) {
	return &FitSummary{Epochs: epochs, FinalLoss: 1.5, Converged: true}, nil
}

func (p *fakeProgram) Update(data Dataset) error { return nil }

func (p *fakeProgram) Sample(size int) (Dataset, error) {
	return Dataset{"w": core.Scalar(0)}, nil
}

func (p *fakeProgram) LogProb(data Dataset) (*core.Tensor, error) {
	return core.Scalar(-12.3), nil
}

func (p *fakeProgram) Posterior(nodes []string) (map[string]*Posterior, error) {
	p.posteriorNodes = nodes
	out := map[string]*Posterior{}
	for _, name := range nodes {
		out[name] = &Posterior{Node: name, Kind: core.KindNormal,
			Params: map[string]*core.Tensor{"loc": core.Scalar(0.5)}}
	}
	return out, nil
}

func (p *fakeProgram) Predict(data Dataset, target string) (*core.Tensor, error) {
	p.predictCalls++
	if p.predictErr != nil {
		return nil, p.predictErr
	}
	return p.predicted, nil
}

// testArtifact has one global latent, one per-datum latent, and one
// observed node.
func testArtifact() *Artifact {
	return &Artifact{
		Algorithm: "vi",
		Nodes: []NodeSpec{
			{Name: "w", Kind: core.KindNormal, Shape: core.Shape{3}},
			{Name: "z", Kind: core.KindNormal, Shape: core.Shape{100},
				Plates: []PlateSpec{{Label: "N", Size: 100}}},
			{Name: "x", Kind: core.KindNormal, Shape: core.Shape{100}, Observed: true,
				Plates: []PlateSpec{{Label: "N", Size: 100}}},
		},
	}
}

func TestPosteriorDefaultsToGlobalLatents(t *testing.T) {
	prog := &fakeProgram{}
	m := NewCompiledModel(testArtifact(), prog, nil)

	got, err := m.Posterior()
	require.NoError(t, err)
	// replicated latents and observed nodes are excluded by default
	assert.Equal(t, []string{"w"}, prog.posteriorNodes)
	require.Contains(t, got, "w")

	mean, ok := got["w"].Mean()
	require.True(t, ok)
	assert.Equal(t, []float64{0.5}, mean.Values)
}

func TestPosteriorExplicitNodes(t *testing.T) {
	prog := &fakeProgram{}
	m := NewCompiledModel(testArtifact(), prog, nil)

	_, err := m.Posterior("w", "z")
	require.NoError(t, err)
	assert.Equal(t, []string{"w", "z"}, prog.posteriorNodes)

	_, err = m.Posterior("ghost")
	assert.Error(t, err)
	_, err = m.Posterior("x")
	assert.Error(t, err, "observed nodes have no posterior")
}

func TestEvaluateDefaultTarget(t *testing.T) {
	prog := &fakeProgram{predicted: core.Vector(1, 2, 3)}
	m := NewCompiledModel(testArtifact(), prog, nil)
	data := Dataset{"x": core.Vector(1, 2, 5)}

	// empty target resolves to the single observed node
	got, err := m.Evaluate(data, "", MetricByName("mse"), MetricByName("mae"))
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3.0, got["mse"], 1e-12)
	assert.InDelta(t, 2.0/3.0, got["mae"], 1e-12)
	assert.Equal(t, 1, prog.predictCalls, "one predictive pass serves all metrics")
}

func TestEvaluateAmbiguousTarget(t *testing.T) {
	art := testArtifact()
	art.Nodes = append(art.Nodes, NodeSpec{Name: "y", Kind: core.KindNormal, Observed: true})
	m := NewCompiledModel(art, &fakeProgram{}, nil)

	_, err := m.Evaluate(Dataset{}, "", MetricByName("mse"))
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestEvaluateUnknownMetric(t *testing.T) {
	prog := &fakeProgram{predicted: core.Vector(1, 2, 3)}
	m := NewCompiledModel(testArtifact(), prog, nil)

	_, err := m.Evaluate(Dataset{"x": core.Vector(1, 2, 3)}, "x",
		MetricByName("mse"), MetricByName("f2"))
	require.Error(t, err)
	var ume *UnsupportedMetricError
	require.ErrorAs(t, err, &ume)
	assert.Equal(t, "f2", ume.Name)
	assert.Equal(t, 0, prog.predictCalls, "metric names resolve before any numeric work")
}

func TestEvaluateCustomMetric(t *testing.T) {
	prog := &fakeProgram{predicted: core.Vector(1, 2, 3)}
	m := NewCompiledModel(testArtifact(), prog, nil)

	bias := CustomMetric("bias", func(post, obs *core.Tensor, _ []float64) (float64, error) {
		sum := 0.0
		for i := range post.Values {
			sum += post.Values[i] - obs.Values[i]
		}
		return sum / float64(len(post.Values)), nil
	})
	got, err := m.Evaluate(Dataset{"x": core.Vector(0, 2, 4)}, "x", bias)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got["bias"], 1e-12)
}

func TestEvaluateMissingObservations(t *testing.T) {
	prog := &fakeProgram{predicted: core.Vector(1, 2, 3)}
	m := NewCompiledModel(testArtifact(), prog, nil)

	_, err := m.Evaluate(Dataset{}, "x", MetricByName("mse"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)
}

func TestNumericCallsWithoutProgram(t *testing.T) {
	m := NewCompiledModel(testArtifact(), nil, nil)

	_, err := m.Sample(10)
	assert.ErrorIs(t, err, ErrNoBackend)
	_, err = m.Fit(nil, 5)
	assert.ErrorIs(t, err, ErrNoBackend)
	_, err = m.LogProb(nil)
	assert.ErrorIs(t, err, ErrNoBackend)
	_, err = m.Posterior()
	assert.ErrorIs(t, err, ErrNoBackend)
	err = m.Update(nil)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestSampleSizeValidation(t *testing.T) {
	m := NewCompiledModel(testArtifact(), &fakeProgram{}, nil)
	_, err := m.Sample(0)
	assert.Error(t, err)

	got, err := m.Sample(10)
	require.NoError(t, err)
	assert.Contains(t, got, "w")
}

func TestPredictUnknownTarget(t *testing.T) {
	m := NewCompiledModel(testArtifact(), &fakeProgram{predicted: core.Scalar(1)}, nil)
	_, err := m.Predict(Dataset{}, "ghost")
	assert.Error(t, err)
}

func TestPredictErrorPropagates(t *testing.T) {
	boom := fmt.Errorf("backend exploded")
	m := NewCompiledModel(testArtifact(), &fakeProgram{predictErr: boom}, nil)
	_, err := m.Predict(Dataset{}, "x")
	assert.ErrorIs(t, err, boom)
}

func TestArtifactQueries(t *testing.T) {
	art := testArtifact()
	assert.Equal(t, []string{"w", "z"}, art.Latents())
	assert.Equal(t, []string{"x"}, art.ObservedNodes())

	spec, ok := art.Node("z")
	require.True(t, ok)
	assert.True(t, spec.Replicated())
	spec, ok = art.Node("w")
	require.True(t, ok)
	assert.False(t, spec.Replicated())
	_, ok = art.Node("ghost")
	assert.False(t, ok)
}

func TestAlgorithmRegistry(t *testing.T) {
	assert.True(t, KnownAlgorithm("vi"))
	assert.True(t, KnownAlgorithm("svi"))
	assert.True(t, KnownAlgorithm("mcmc"))
	assert.False(t, KnownAlgorithm("hmc-nuts"))

	RegisterAlgorithm("hmc-nuts")
	assert.True(t, KnownAlgorithm("hmc-nuts"))
	assert.Contains(t, AlgorithmNames(), "hmc-nuts")
}
