package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydpy-dev/hydronet/pkg/domain"
	"github.com/hydpy-dev/hydronet/pkg/registry"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, Register(r))
	return r
}

func TestRegisterProvidesAllVariants(t *testing.T) {
	r := newRegistry(t)
	assert.Equal(t, []string{TypeGauged, TypeLinear, TypeThreshold}, r.Types())
}

func TestFactoryAppliesParamsAndDefaults(t *testing.T) {
	r := newRegistry(t)

	m, err := r.NewModel(TypeLinear, "b", map[string]any{"k": 0.25, "initial": 4})
	require.NoError(t, err)
	assert.Equal(t, 0.25, m.Param("k", 0))
	assert.Equal(t, 4.0, m.Vars.MustGet("volume").Value())

	// Defaults apply with no params at all.
	m, err = r.NewModel(TypeLinear, "d", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Param("k", 0))
	assert.Equal(t, 0.0, m.Vars.MustGet("volume").Value())
}

func TestFactoryRejectsBadParams(t *testing.T) {
	r := newRegistry(t)

	_, err := r.NewModel(TypeLinear, "b", map[string]any{"k": 0})
	assert.ErrorContains(t, err, "k must be positive")

	_, err = r.NewModel(TypeThreshold, "b", map[string]any{"smooth": -1})
	assert.ErrorContains(t, err, "smooth must not be negative")

	_, err = r.NewModel(TypeLinear, "b", map[string]any{"unknown": 1})
	assert.Error(t, err)
}

func TestModelTypesPassValidation(t *testing.T) {
	r := newRegistry(t)
	findings, err := r.ValidateAll()
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestLinearOutflowFollowsVolume(t *testing.T) {
	r := newRegistry(t)
	m, err := r.NewModel(TypeLinear, "b", map[string]any{"k": 0.5, "initial": 6})
	require.NoError(t, err)

	require.NoError(t, calcOutflowLinear.Fn(m))
	assert.Equal(t, 3.0, m.Vars.MustGet("qout").Value())
}

func TestThresholdOutflowStopsAtDeadStorage(t *testing.T) {
	r := newRegistry(t)
	m, err := r.NewModel(TypeThreshold, "b", map[string]any{"k": 2, "vmin": 5})
	require.NoError(t, err)
	vol := m.Vars.MustGet("volume")
	qout := m.Vars.MustGet("qout")

	// With smooth=0 the relation is exactly kinked.
	vol.SetValue(3)
	require.NoError(t, calcOutflowThreshold.Fn(m))
	assert.Equal(t, 0.0, qout.Value())

	vol.SetValue(7)
	require.NoError(t, calcOutflowThreshold.Fn(m))
	assert.Equal(t, 4.0, qout.Value())
}

func TestThresholdSmoothingRoundsTheKink(t *testing.T) {
	r := newRegistry(t)
	m, err := r.NewModel(TypeThreshold, "b", map[string]any{"k": 1, "vmin": 5, "smooth": 0.5})
	require.NoError(t, err)
	vol := m.Vars.MustGet("volume")
	qout := m.Vars.MustGet("qout")

	// Exactly at the threshold the smoothed release is already positive.
	vol.SetValue(5)
	require.NoError(t, calcOutflowThreshold.Fn(m))
	assert.Greater(t, qout.Value(), 0.0)

	// Far from the kink the smoothing is negligible.
	vol.SetValue(10)
	require.NoError(t, calcOutflowThreshold.Fn(m))
	assert.InDelta(t, 5.0, qout.Value(), 1e-6)
}

func TestInflowSumsLinkAndLateral(t *testing.T) {
	r := newRegistry(t)
	m, err := r.NewModel(TypeLinear, "b", nil)
	require.NoError(t, err)

	m.Vars.MustGet("inlet").SetValue(2)
	m.Vars.MustGet("lateral").SetValue(0.5)
	require.NoError(t, pickInflow.Fn(m))
	assert.Equal(t, 2.5, m.Vars.MustGet("qin").Value())
}

func TestVolumeUpdateUsesCurrentSubStep(t *testing.T) {
	r := newRegistry(t)
	m, err := r.NewModel(TypeLinear, "b", map[string]any{"initial": 1})
	require.NoError(t, err)

	m.Vars.MustGet("qin").SetValue(3)
	m.Vars.MustGet("qout").SetValue(1)
	m.DT = 0.25
	require.NoError(t, updateVolume.Fn(m))
	assert.InDelta(t, 1.5, m.Vars.MustGet("volume").Value(), 1e-12)
}

func TestGaugedPublishesDischarge(t *testing.T) {
	r := newRegistry(t)
	m, err := r.NewModel(TypeGauged, "g", nil)
	require.NoError(t, err)

	m.Vars.MustGet("qout").SetValue(1.25)
	require.NoError(t, passOutflow.Fn(m))
	require.NoError(t, publishDischarge.Fn(m))
	assert.Equal(t, 1.25, m.Vars.MustGet("outlet").Value())
	assert.Equal(t, 1.25, m.Vars.MustGet("signal").Value())

	// The plain variants do not carry the signal slot.
	plain, err := r.NewModel(TypeLinear, "p", nil)
	require.NoError(t, err)
	_, ok := plain.Vars.Get("signal")
	assert.False(t, ok)
}

func TestODEBindingsResolve(t *testing.T) {
	for _, typ := range []*domain.ModelType{linearType, thresholdType, gaugedType} {
		assert.Equal(t, []string{"volume"}, typ.ODEStates, typ.Name)
		assert.Equal(t, []string{"qout"}, typ.ODEFluxes, typ.Name)
	}
}
