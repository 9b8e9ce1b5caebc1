package dam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydpy-dev/hydronet/pkg/domain"
	"github.com/hydpy-dev/hydronet/pkg/registry"
)

func buildReservoir(t *testing.T, params map[string]any) *domain.Model {
	t.Helper()
	r := registry.New()
	require.NoError(t, Register(r))
	m, err := r.NewModel(TypeReservoir, "dam", params)
	require.NoError(t, err)
	return m
}

func TestFactoryAppliesParamsAndDefaults(t *testing.T) {
	r := registry.New()
	require.NoError(t, Register(r))

	m, err := r.NewModel(TypeReservoir, "dam", map[string]any{
		"target": 2, "base": 0.5, "kmax": 0.8, "initial": 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, m.Param("target", 0))
	assert.Equal(t, 20.0, m.Vars.MustGet("volume").Value())

	_, err = r.NewModel(TypeReservoir, "dam2", map[string]any{"kmax": 0})
	assert.ErrorContains(t, err, "kmax must be positive")
}

func TestReservoirPassesValidation(t *testing.T) {
	r := registry.New()
	require.NoError(t, Register(r))
	warnings, err := r.Validate(TypeReservoir)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestDemandRisesWithShortfall(t *testing.T) {
	m := buildReservoir(t, map[string]any{"target": 2})

	// Remote discharge above target: no demand.
	m.Vars.MustGet("remote").SetValue(3)
	require.NoError(t, calcDemand.Fn(m))
	assert.Equal(t, 0.0, m.Vars.MustGet("demand").Value())

	// Half a unit below target: demand matches the shortfall exactly with
	// zero smoothing.
	m.Vars.MustGet("remote").SetValue(1.5)
	require.NoError(t, calcDemand.Fn(m))
	assert.Equal(t, 0.5, m.Vars.MustGet("demand").Value())
}

func TestReleaseIsCappedByDrainableVolume(t *testing.T) {
	m := buildReservoir(t, map[string]any{"base": 0.5, "kmax": 0.1})
	m.Vars.MustGet("demand").SetValue(2)

	// Plenty of water: release serves base + demand.
	m.Vars.MustGet("volume").SetValue(100)
	require.NoError(t, calcRelease.Fn(m))
	assert.Equal(t, 2.5, m.Vars.MustGet("release").Value())

	// Nearly empty: release is capped at kmax * V.
	m.Vars.MustGet("volume").SetValue(1)
	require.NoError(t, calcRelease.Fn(m))
	assert.InDelta(t, 0.1, m.Vars.MustGet("release").Value(), 1e-12)
}

func TestVolumeBalancesInflowAndRelease(t *testing.T) {
	m := buildReservoir(t, map[string]any{"initial": 10})
	m.Vars.MustGet("qin").SetValue(1)
	m.Vars.MustGet("release").SetValue(3)
	m.DT = 0.5
	require.NoError(t, updateVolume.Fn(m))
	assert.InDelta(t, 9.0, m.Vars.MustGet("volume").Value(), 1e-12)
}

func TestOutletAndSignalCarryTheRelease(t *testing.T) {
	m := buildReservoir(t, nil)
	m.Vars.MustGet("release").SetValue(1.75)
	require.NoError(t, passRelease.Fn(m))
	require.NoError(t, publishRelease.Fn(m))
	assert.Equal(t, 1.75, m.Vars.MustGet("outlet").Value())
	assert.Equal(t, 1.75, m.Vars.MustGet("signal").Value())
}
