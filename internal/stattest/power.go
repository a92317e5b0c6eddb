package stattest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"goab/domain/core"
)

// StatisticalPower estimates the probability that a two-proportion z-test at
// alpha detects the difference between the two observed rates. The null SE
// pools the rates weighted by group size; the alternative SE uses the rates
// as observed.
func StatisticalPower(p1, p2 float64, n1, n2 int, alpha float64) (float64, error) {
	if err := validateProportion("p1", p1); err != nil {
		return 0, err
	}
	if err := validateProportion("p2", p2); err != nil {
		return 0, err
	}
	if n1 <= 0 {
		return 0, core.NewInvalidInputError("n1", fmt.Sprintf("must be positive, got %d", n1))
	}
	if n2 <= 0 {
		return 0, core.NewInvalidInputError("n2", fmt.Sprintf("must be positive, got %d", n2))
	}
	if err := validateAlpha(alpha); err != nil {
		return 0, err
	}

	fn1, fn2 := float64(n1), float64(n2)
	pooled := (p1*fn1 + p2*fn2) / (fn1 + fn2)
	sePooled := math.Sqrt(pooled * (1 - pooled) * (1/fn1 + 1/fn2))
	seAlt := math.Sqrt(p1*(1-p1)/fn1 + p2*(1-p2)/fn2)

	// Both rates pinned at an extreme: the normal approximation collapses.
	if seAlt == 0 {
		if p1 == p2 {
			return 0, nil
		}
		return 1, nil
	}

	zAlpha := distuv.UnitNormal.Quantile(1 - alpha/2)
	zBeta := (math.Abs(p2-p1) - zAlpha*sePooled) / seAlt

	return distuv.UnitNormal.CDF(zBeta), nil
}

// RequiredSampleSize returns the minimum per-group sample size for detecting
// a relative effect of mde over baselineRate with the desired power at alpha.
// mde is relative: the planned treatment rate is baselineRate*(1+mde).
func RequiredSampleSize(baselineRate, mde, alpha, power float64) (int, error) {
	if baselineRate <= 0 || baselineRate >= 1 {
		return 0, core.NewInvalidInputError("baseline rate", fmt.Sprintf("must be in (0, 1), got %f", baselineRate))
	}
	if mde == 0 {
		return 0, core.ErrZeroEffect
	}
	if err := validateAlpha(alpha); err != nil {
		return 0, err
	}
	if power <= 0 || power >= 1 {
		return 0, fmt.Errorf("%w, got %f", core.ErrInvalidPower, power)
	}

	p1 := baselineRate
	p2 := baselineRate * (1 + mde)
	if p2 <= 0 || p2 >= 1 {
		return 0, core.NewInvalidInputError("mde", fmt.Sprintf("pushes treatment rate to %f, outside (0, 1)", p2))
	}

	zAlpha := distuv.UnitNormal.Quantile(1 - alpha/2)
	zPower := distuv.UnitNormal.Quantile(power)

	pooled := (p1 + p2) / 2
	numerator := zAlpha*math.Sqrt(2*pooled*(1-pooled)) + zPower*math.Sqrt(p1*(1-p1)+p2*(1-p2))
	n := numerator * numerator / ((p2 - p1) * (p2 - p1))

	return int(math.Ceil(n)), nil
}
