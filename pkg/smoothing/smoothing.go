/*
Package smoothing provides continuously differentiable approximations of the
kinked relationships that appear in storage-release equations: threshold
releases (max-style kinks) and capacity clamps (min-style kinks).

All functions take a tolerance instead of a raw scale constant. The shared
transform is

	scale = tol / ln(99)

so that "tolerance" keeps one physical meaning across both families: at a
distance tol from the kink, the logistic transition has covered all but 1 %
of its height. A tolerance of zero disables smoothing entirely and returns
the exact, kinked relationship.
*/
package smoothing

import "math"

// logGain is ln(99); see the package comment for the derivation.
const logGain = 4.59511985013459

// cutoff bounds the argument of exp to keep intermediate values finite.
const cutoff = 35.0

// Scale converts a tolerance into the internal scale constant of the
// logistic family. A non-positive tolerance yields zero, meaning "exact".
func Scale(tol float64) float64 {
	if tol <= 0 {
		return 0
	}
	return tol / logGain
}

// Logistic is a smooth approximation of the unit step indicator x > 0.
// With tol = 0 it returns the exact step (0.5 at the kink itself).
func Logistic(x, tol float64) float64 {
	c := Scale(tol)
	if c == 0 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return 0
		}
		return 0.5
	}
	z := x / c
	switch {
	case z > cutoff:
		return 1
	case z < -cutoff:
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}

// LogisticDeriv is the derivative of Logistic with respect to x. For
// tol = 0 it is zero everywhere except at the kink, where it is undefined;
// zero is returned there as well.
func LogisticDeriv(x, tol float64) float64 {
	c := Scale(tol)
	if c == 0 {
		return 0
	}
	f := Logistic(x, tol)
	return f * (1 - f) / c
}

// Threshold is a smooth approximation of max(x, 0), the canonical form of
// a threshold release: zero below the kink, linear above it. With tol = 0
// it returns max(x, 0) exactly.
func Threshold(x, tol float64) float64 {
	c := Scale(tol)
	if c == 0 {
		return math.Max(x, 0)
	}
	z := x / c
	switch {
	case z > cutoff:
		return x
	case z < -cutoff:
		return 0
	}
	// softplus, evaluated in the numerically stable branch
	if z > 0 {
		return x + c*math.Log1p(math.Exp(-z))
	}
	return c * math.Log1p(math.Exp(z))
}

// ThresholdDeriv is the derivative of Threshold with respect to x, which
// is the logistic transition itself.
func ThresholdDeriv(x, tol float64) float64 {
	c := Scale(tol)
	if c == 0 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return 0
		}
		return 0.5
	}
	return Logistic(x, tol)
}

// Min is a smooth approximation of min(a, b), used to clamp a demand
// against an available capacity. With tol = 0 it returns min(a, b)
// exactly. The smooth value never exceeds the exact minimum.
func Min(a, b, tol float64) float64 {
	c := Scale(tol)
	if c == 0 {
		return math.Min(a, b)
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	d := (hi - lo) / c
	if d > cutoff {
		return lo
	}
	return lo - c*math.Log1p(math.Exp(-d))
}

// MinGrad returns the partial derivatives of Min with respect to a and b.
// They form a logistic partition of unity between the two arguments.
func MinGrad(a, b, tol float64) (da, db float64) {
	c := Scale(tol)
	if c == 0 {
		switch {
		case a < b:
			return 1, 0
		case a > b:
			return 0, 1
		}
		return 0.5, 0.5
	}
	da = Logistic(b-a, tol)
	return da, 1 - da
}
