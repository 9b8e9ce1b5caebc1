package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableIndexedAccess(t *testing.T) {
	s := NewStore()
	v, err := s.Declare("q", KindFlux, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Len())
	assert.Equal(t, []int{2, 2}, v.Shape())

	require.NoError(t, v.SetAt(3, 7))
	got, err := v.At(3)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)

	_, err = v.At(4)
	var shapeErr *ShapeError
	assert.ErrorAs(t, err, &shapeErr)
	assert.ErrorAs(t, v.SetAt(-1, 0), &shapeErr)

	v.Fill(2.5)
	assert.Equal(t, []float64{2.5, 2.5, 2.5, 2.5}, v.Values())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "input", KindInput.String())
	assert.Equal(t, "link", KindLink.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
