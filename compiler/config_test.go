package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panyam/plateau/core"
	"github.com/panyam/plateau/decl"
)

// buildMixture declares a small Gaussian-mixture style model that
// touches every config feature: named and batched scopes, a compound
// scope, literal and referential parameters, shape hints, and an
// observed node.
func buildMixture(t *testing.T) *ProbModel {
	t.Helper()
	sess := decl.NewSession()

	k, err := sess.Enter(3, decl.Named("K"))
	require.NoError(t, err)
	mu, err := decl.New(sess, core.KindNormal,
		decl.Params{"loc": decl.Const(0), "scale": decl.Const(10)},
		decl.WithName("mu"), decl.WithDim(2))
	require.NoError(t, err)
	require.NoError(t, k.Exit())

	pi, err := decl.New(sess, core.KindDirichlet,
		decl.Params{"concentration": decl.Vector(1, 1, 1)}, decl.WithName("pi"))
	require.NoError(t, err)

	n, err := sess.Enter(100, decl.Named("N"), decl.Batched(20))
	require.NoError(t, err)
	_, err = decl.New(sess, core.KindCategorical,
		decl.Params{"probs": decl.Ref(pi)}, decl.WithName("z"))
	require.NoError(t, err)
	_, err = decl.New(sess, core.KindNormal,
		decl.Params{"loc": decl.Ref(mu), "scale": decl.Const(1)},
		decl.WithName("x"), decl.Observed(), decl.WithShape(100, 2))
	require.NoError(t, err)
	require.NoError(t, n.Exit())

	return New(sess)
}

func TestConfigRoundTrip(t *testing.T) {
	m := buildMixture(t)
	require.NoError(t, m.Compile(&CompileConfig{
		Algorithm: "svi",
		Options:   map[string]any{"lr": 0.01, "epochs": 200},
		Q:         map[string]QBinding{"mu": {Kind: core.KindNormal, Init: "zeros"}},
	}))

	cfg := m.Config()
	data, err := cfg.YAML()
	require.NoError(t, err)

	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	rebuilt, err := FromConfig(parsed)
	require.NoError(t, err)

	// the structural law: the rebuilt model serializes identically
	if diff := cmp.Diff(cfg, rebuilt.Config()); diff != "" {
		t.Errorf("config mismatch after round trip (-want +got):\n%s", diff)
	}

	// and resolves to the same shapes
	want := map[string]core.Shape{}
	for _, v := range m.Variables() {
		want[v.Name()] = v.Shape()
	}
	for _, v := range rebuilt.Variables() {
		assert.Equal(t, want[v.Name()], v.Shape(), "shape of %q", v.Name())
	}

	// the loaded inference config is replayed by Compile(nil)
	require.NoError(t, rebuilt.Compile(nil))
	cm, err := rebuilt.Compiled()
	require.NoError(t, err)
	assert.Equal(t, "svi", cm.Artifact().Algorithm)
	assert.Equal(t, "zeros", cm.Artifact().Q["mu"].Init)
}

func TestConfigRoundTripCompoundScope(t *testing.T) {
	sess := decl.NewSession()
	a, err := sess.Enter(5, decl.Named("A"))
	require.NoError(t, err)
	require.NoError(t, a.Exit())
	b, err := sess.Enter(7, decl.Named("B"))
	require.NoError(t, err)
	require.NoError(t, b.Exit())
	g, err := sess.EnterCompound("A", "B")
	require.NoError(t, err)
	_, err = decl.New(sess, core.KindNormal,
		decl.Params{"loc": decl.Const(0), "scale": decl.Const(1)}, decl.WithName("w"))
	require.NoError(t, err)
	require.NoError(t, g.Exit())

	m := New(sess)
	data, err := m.Config().YAML()
	require.NoError(t, err)
	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	rebuilt, err := FromConfig(parsed)
	require.NoError(t, err)

	vars := rebuilt.Variables()
	require.Len(t, vars, 1)
	assert.Equal(t, core.Shape{5, 7}, vars[0].Shape())
	if diff := cmp.Diff(m.Config(), rebuilt.Config()); diff != "" {
		t.Errorf("config mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestConfigAutoNamesSurvive(t *testing.T) {
	sess := decl.NewSession()
	_, err := decl.New(sess, core.KindNormal,
		decl.Params{"loc": decl.Const(0), "scale": decl.Const(1)})
	require.NoError(t, err)
	_, err = decl.New(sess, core.KindNormal,
		decl.Params{"loc": decl.Const(0), "scale": decl.Const(1)})
	require.NoError(t, err)

	m := New(sess)
	data, err := m.Config().YAML()
	require.NoError(t, err)
	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	rebuilt, err := FromConfig(parsed)
	require.NoError(t, err)

	vars := rebuilt.Variables()
	require.Len(t, vars, 2)
	assert.Equal(t, "randvar_0", vars[0].Name())
	assert.Equal(t, "randvar_1", vars[1].Name())
}

func TestConfigBadInput(t *testing.T) {
	_, err := ParseConfig([]byte("variables: {not: [a, list"))
	assert.Error(t, err)

	// an unknown kind in an otherwise well-formed config fails on replay
	parsed, err := ParseConfig([]byte("variables:\n  - name: x\n    kind: Cauchy\n    seq: 0\n"))
	require.NoError(t, err)
	_, err = FromConfig(parsed)
	require.Error(t, err)
	var ude *core.UnknownDistributionError
	assert.ErrorAs(t, err, &ude)
}
