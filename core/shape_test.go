package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeBasics(t *testing.T) {
	s := Shape{10, 3}
	assert.Equal(t, 2, s.Rank())
	assert.Equal(t, 30, s.Size())
	assert.False(t, s.IsScalar())
	assert.Equal(t, "[10, 3]", s.String())

	assert.True(t, ScalarShape.IsScalar())
	assert.Equal(t, 1, ScalarShape.Size())

	assert.True(t, s.Equals(Shape{10, 3}))
	assert.False(t, s.Equals(Shape{10}))
	assert.False(t, s.Equals(Shape{3, 10}))
}

func TestShapeConcatAndPrefix(t *testing.T) {
	outer := Shape{50, 200}
	event := Shape{3}
	full := outer.Concat(event)
	assert.Equal(t, Shape{50, 200, 3}, full)

	assert.True(t, full.HasPrefix(outer))
	assert.True(t, full.HasPrefix(Shape{}))
	assert.False(t, full.HasPrefix(Shape{200, 50}))
	assert.False(t, outer.HasPrefix(full), "longer prefix can never match")
}

func TestShapeClone(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	c[0] = 99
	assert.Equal(t, Shape{2, 3}, s, "clone must not alias the original")
	assert.Nil(t, Shape(nil).Clone())
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{1, 2, 3}.Validate())
	assert.NoError(t, ScalarShape.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
}

func TestBroadcast(t *testing.T) {
	cases := []struct {
		a, b, want Shape
	}{
		{Shape{2, 3}, Shape{3}, Shape{2, 3}},
		{Shape{3}, Shape{2, 3}, Shape{2, 3}},
		{Shape{5, 1, 3}, Shape{4, 3}, Shape{5, 4, 3}},
		{Shape{}, Shape{7}, Shape{7}},
		{Shape{}, Shape{}, Shape{}},
		{Shape{1}, Shape{8}, Shape{8}},
		{Shape{6, 1}, Shape{1, 9}, Shape{6, 9}},
	}
	for _, tc := range cases {
		got, err := Broadcast(tc.a, tc.b)
		require.NoError(t, err, "Broadcast(%s, %s)", tc.a, tc.b)
		assert.Equal(t, tc.want, got, "Broadcast(%s, %s)", tc.a, tc.b)
	}
}

func TestBroadcastMismatch(t *testing.T) {
	_, err := Broadcast(Shape{2}, Shape{3})
	require.Error(t, err)
	var sme *ShapeMismatchError
	require.ErrorAs(t, err, &sme)
	assert.Equal(t, Shape{2}, sme.Left)
	assert.Equal(t, Shape{3}, sme.Right)
}

func TestBroadcastAll(t *testing.T) {
	got, err := BroadcastAll(Shape{3}, Shape{}, Shape{5, 1})
	require.NoError(t, err)
	assert.Equal(t, Shape{5, 3}, got)

	got, err = BroadcastAll()
	require.NoError(t, err)
	assert.True(t, got.IsScalar())

	_, err = BroadcastAll(Shape{2}, Shape{2}, Shape{4})
	assert.Error(t, err)
}
