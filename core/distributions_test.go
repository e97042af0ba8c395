package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Normal")
	require.NoError(t, err)
	assert.Equal(t, KindNormal, k)
	assert.Equal(t, "Normal", k.String())
	assert.True(t, k.Known())

	_, err = ParseKind("Cauchy")
	require.Error(t, err)
	var ude *UnknownDistributionError
	require.ErrorAs(t, err, &ude)
	assert.Equal(t, "Cauchy", ude.Name)
}

func TestKindNamesCoverCatalog(t *testing.T) {
	names := KindNames()
	assert.Contains(t, names, "Normal")
	assert.Contains(t, names, "Dirichlet")
	assert.Contains(t, names, "MultivariateNormal")
	// every name parses back to a known kind
	for _, name := range names {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.True(t, k.Known())
	}
}

func TestEventShapeScalarFamilies(t *testing.T) {
	// scalar families broadcast their parameter event shapes
	got, err := EventShape(KindNormal, map[string]Shape{"loc": {3}, "scale": {}})
	require.NoError(t, err)
	assert.Equal(t, Shape{3}, got)

	got, err = EventShape(KindBeta, map[string]Shape{"concentration1": {}, "concentration0": {}})
	require.NoError(t, err)
	assert.True(t, got.IsScalar())
}

func TestEventShapeVectorFamilies(t *testing.T) {
	got, err := EventShape(KindDirichlet, map[string]Shape{"concentration": {5}})
	require.NoError(t, err)
	assert.Equal(t, Shape{5}, got)

	got, err = EventShape(KindMultinomial, map[string]Shape{"total_count": {}, "probs": {4}})
	require.NoError(t, err)
	assert.Equal(t, Shape{4}, got)

	got, err = EventShape(KindMultivariateNormal, map[string]Shape{"loc": {3}})
	require.NoError(t, err)
	assert.Equal(t, Shape{3}, got)

	// a categorical draw is a scalar index
	got, err = EventShape(KindCategorical, map[string]Shape{"probs": {4}})
	require.NoError(t, err)
	assert.True(t, got.IsScalar())

	// vector family without its vector parameter cannot resolve
	_, err = EventShape(KindDirichlet, map[string]Shape{})
	assert.Error(t, err)
}

func TestValidateParams(t *testing.T) {
	// happy path
	assert.NoError(t, ValidateParams(KindNormal, map[string]Shape{"loc": {}, "scale": {}}))

	// missing required parameter
	err := ValidateParams(KindNormal, map[string]Shape{"loc": {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scale")

	// parameter outside the schema
	err = ValidateParams(KindNormal, map[string]Shape{"loc": {}, "scale": {}, "rate": {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate")

	// rank floor
	err = ValidateParams(KindDirichlet, map[string]Shape{"concentration": {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank")

	// nil shape: present but unknown, rank check skipped
	assert.NoError(t, ValidateParams(KindDirichlet, map[string]Shape{"concentration": nil}))

	// unknown kind
	assert.Error(t, ValidateParams(KindUnknown, nil))
}

func TestTensor(t *testing.T) {
	tensor, err := NewTensor(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, tensor.Dims)

	_, err = NewTensor(Shape{2, 3}, []float64{1, 2})
	assert.Error(t, err, "value count must match the shape")

	s := Scalar(4.5)
	assert.True(t, s.Dims.IsScalar())
	assert.Equal(t, []float64{4.5}, s.Values)

	v := Vector(1, 2, 3)
	assert.Equal(t, Shape{3}, v.Dims)

	c := v.Clone()
	c.Values[0] = 99
	assert.Equal(t, 1.0, v.Values[0], "clone must not alias")
}
