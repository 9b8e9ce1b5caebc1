package smoothing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydpy-dev/hydronet/pkg/smoothing"
)

func TestThresholdExactWithoutTolerance(t *testing.T) {
	for _, x := range []float64{-10, -1, -1e-12, 0, 1e-12, 0.5, 3} {
		assert.Equal(t, math.Max(x, 0), smoothing.Threshold(x, 0), "x=%v", x)
	}
}

func TestThresholdConvergesToKink(t *testing.T) {
	// Shrinking the tolerance must shrink the deviation from max(x, 0),
	// and the deviation must vanish in the limit.
	x := 0.2
	last := math.Inf(1)
	for _, tol := range []float64{1.0, 0.3, 0.1, 0.03} {
		dev := math.Abs(smoothing.Threshold(x, tol) - math.Max(x, 0))
		require.Less(t, dev, last, "tol=%v", tol)
		last = dev
	}
	assert.Less(t, last, 1e-4)
}

func TestLogisticTolerancePointMeaning(t *testing.T) {
	// The shared transform pins the logistic transition to 1 % of its
	// height at a distance of one tolerance from the kink.
	tol := 0.3
	assert.InDelta(t, 0.01, smoothing.Logistic(-tol, tol), 1e-12)
	assert.InDelta(t, 0.99, smoothing.Logistic(tol, tol), 1e-12)
	assert.InDelta(t, 0.5, smoothing.Logistic(0, tol), 1e-12)
}

func TestThresholdFarFromKink(t *testing.T) {
	tol := 0.1
	assert.Equal(t, 0.0, smoothing.Threshold(-100, tol))
	assert.Equal(t, 100.0, smoothing.Threshold(100, tol))
}

func TestThresholdDerivMatchesFiniteDifference(t *testing.T) {
	tol := 0.25
	h := 1e-7
	for _, x := range []float64{-0.5, -0.1, 0, 0.1, 0.5} {
		fd := (smoothing.Threshold(x+h, tol) - smoothing.Threshold(x-h, tol)) / (2 * h)
		assert.InDelta(t, fd, smoothing.ThresholdDeriv(x, tol), 1e-6, "x=%v", x)
	}
}

func TestMinExactWithoutTolerance(t *testing.T) {
	assert.Equal(t, 1.0, smoothing.Min(1, 2, 0))
	assert.Equal(t, -3.0, smoothing.Min(5, -3, 0))
	assert.Equal(t, 4.0, smoothing.Min(4, 4, 0))
}

func TestMinNeverExceedsExactMinimum(t *testing.T) {
	tol := 0.2
	for _, pair := range [][2]float64{{1, 2}, {2, 1}, {0, 0}, {-1, 3}, {10, 10.01}} {
		got := smoothing.Min(pair[0], pair[1], tol)
		assert.LessOrEqual(t, got, math.Min(pair[0], pair[1]), "pair=%v", pair)
	}
}

func TestMinConverges(t *testing.T) {
	a, b := 1.0, 1.3
	last := math.Inf(1)
	for _, tol := range []float64{1.0, 0.1, 0.01} {
		dev := math.Min(a, b) - smoothing.Min(a, b, tol)
		require.GreaterOrEqual(t, dev, 0.0)
		require.Less(t, dev, last)
		last = dev
	}
	assert.Less(t, last, 1e-3)
}

func TestMinGradPartitionOfUnity(t *testing.T) {
	da, db := smoothing.MinGrad(1, 1.5, 0.4)
	assert.InDelta(t, 1.0, da+db, 1e-12)
	assert.Greater(t, da, db, "the smaller argument dominates the gradient")
}

func TestMinIsSymmetric(t *testing.T) {
	tol := 0.3
	assert.InDelta(t, smoothing.Min(2, 5, tol), smoothing.Min(5, 2, tol), 1e-12)
}

func TestScaleZeroForNonPositiveTolerance(t *testing.T) {
	assert.Zero(t, smoothing.Scale(0))
	assert.Zero(t, smoothing.Scale(-1))
	assert.Greater(t, smoothing.Scale(1), 0.0)
}
