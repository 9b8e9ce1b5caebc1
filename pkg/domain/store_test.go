package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareAndRead(t *testing.T) {
	s := NewStore()

	v, err := s.Declare("volume", KindState)
	require.NoError(t, err)
	assert.Equal(t, "volume", v.Name())
	assert.Equal(t, KindState, v.Kind())
	assert.Equal(t, 1, v.Len())
	assert.Empty(t, v.Shape())

	_, err = s.Declare("discharge", KindFlux, 3)
	require.NoError(t, err)

	require.NoError(t, s.Write("discharge", 1, 2, 3))
	got, err := s.Read("discharge")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got)

	// Read copies; mutating the copy must not touch the variable.
	got[0] = 99
	again, err := s.Read("discharge")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, again)
}

func TestDeclareRejectsDuplicatesAndBadShapes(t *testing.T) {
	s := NewStore()

	_, err := s.Declare("q", KindFlux)
	require.NoError(t, err)

	_, err = s.Declare("q", KindFlux)
	assert.ErrorIs(t, err, ErrDuplicateVariable)

	_, err = s.Declare("bad", KindFlux, 0)
	var shapeErr *ShapeError
	assert.ErrorAs(t, err, &shapeErr)

	_, err = s.Declare("", KindFlux)
	assert.Error(t, err)
}

func TestWriteChecksShape(t *testing.T) {
	s := NewStore()
	_, err := s.Declare("q", KindFlux, 2)
	require.NoError(t, err)

	err = s.Write("q", 1, 2, 3)
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "q", shapeErr.Variable)

	err = s.Write("missing", 1)
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestMustGetPanicsOnUnknown(t *testing.T) {
	s := NewStore()
	assert.Panics(t, func() { s.MustGet("missing") })
}

func TestAliasSharesBackingStorage(t *testing.T) {
	producer := NewStore()
	consumer := NewStore()

	out, err := producer.Declare("outlet", KindLink)
	require.NoError(t, err)
	_, err = consumer.Declare("inlet", KindLink)
	require.NoError(t, err)

	require.NoError(t, consumer.Alias("inlet", out))

	out.SetValue(4.5)
	assert.Equal(t, 4.5, consumer.MustGet("inlet").Value())
	assert.True(t, consumer.MustGet("inlet").Aliased())
	assert.False(t, out.Aliased())

	// Writes are visible in both directions; the storage is one slice.
	consumer.MustGet("inlet").SetValue(-1)
	assert.Equal(t, -1.0, out.Value())
}

func TestAliasRejectsRebindingAndKindMismatch(t *testing.T) {
	producer := NewStore()
	consumer := NewStore()

	out, err := producer.Declare("outlet", KindLink)
	require.NoError(t, err)
	_, err = consumer.Declare("inlet", KindLink)
	require.NoError(t, err)
	_, err = consumer.Declare("volume", KindState)
	require.NoError(t, err)

	require.NoError(t, consumer.Alias("inlet", out))
	assert.Error(t, consumer.Alias("inlet", out), "second alias must be rejected")

	assert.Error(t, consumer.Alias("volume", out), "state variables cannot be shared")
}

func TestAliasChecksShape(t *testing.T) {
	producer := NewStore()
	consumer := NewStore()

	out, err := producer.Declare("outlet", KindLink, 3)
	require.NoError(t, err)
	_, err = consumer.Declare("inlet", KindLink, 2)
	require.NoError(t, err)

	err = consumer.Alias("inlet", out)
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []int{3}, shapeErr.Want)
	assert.Equal(t, []int{2}, shapeErr.Got)
}

func TestNamesAndByKindKeepDeclarationOrder(t *testing.T) {
	s := NewStore()
	for _, d := range []struct {
		name string
		kind Kind
	}{
		{"inlet", KindLink},
		{"qin", KindFlux},
		{"volume", KindState},
		{"qout", KindFlux},
	} {
		_, err := s.Declare(d.name, d.kind)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"inlet", "qin", "volume", "qout"}, s.Names())

	fluxes := s.ByKind(KindFlux)
	require.Len(t, fluxes, 2)
	assert.Equal(t, "qin", fluxes[0].Name())
	assert.Equal(t, "qout", fluxes[1].Name())
}
