// Package stattest provides the pure statistical primitives for two-arm
// binary-outcome experiments: frequentist tests on group counts, interval
// estimation, effect sizes, power analysis and Bayesian posterior comparison.
// All functions are stateless and safe for concurrent use.
package stattest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"goab/domain/core"
	"goab/domain/stats"
)

// validateGroup checks a (conversions, size) pair before any rate is formed.
func validateGroup(name string, conversions, size int) error {
	if size <= 0 {
		return core.NewInvalidInputError(name+" size", fmt.Sprintf("must be positive, got %d", size))
	}
	if conversions < 0 || conversions > size {
		return core.NewConversionBoundsError(conversions, size)
	}
	return nil
}

func validateAlpha(alpha float64) error {
	if alpha <= 0 || alpha >= 1 {
		return fmt.Errorf("%w, got %f", core.ErrInvalidAlpha, alpha)
	}
	return nil
}

func validateProportion(name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%w: %s %f", core.ErrInvalidProportion, name, p)
	}
	return nil
}

// TwoProportionZTest compares two conversion rates with a pooled two-tailed
// z-test. A zero pooled variance (both observed rates degenerate at the same
// extreme) yields z = 0 and p = 1 by policy rather than an error.
func TwoProportionZTest(convA, sizeA, convB, sizeB int) (zScore, pValue float64, err error) {
	if err := validateGroup("control", convA, sizeA); err != nil {
		return 0, 0, err
	}
	if err := validateGroup("treatment", convB, sizeB); err != nil {
		return 0, 0, err
	}

	pA := float64(convA) / float64(sizeA)
	pB := float64(convB) / float64(sizeB)

	// Pooled proportion under the null
	pooled := float64(convA+convB) / float64(sizeA+sizeB)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(sizeA) + 1/float64(sizeB)))

	if se == 0 {
		return 0, 1, nil
	}

	zScore = (pB - pA) / se
	pValue = 2 * (1 - distuv.UnitNormal.CDF(math.Abs(zScore)))
	return zScore, pValue, nil
}

// ChiSquareTest runs Pearson's chi-square test of independence on the 2x2
// contingency table [[convA, sizeA-convA], [convB, sizeB-convB]] with one
// degree of freedom. A zero column margin leaves the expected cells undefined
// and returns ErrZeroMargin; row margins are positive once sizes validate.
func ChiSquareTest(convA, sizeA, convB, sizeB int) (chiSquare, pValue float64, err error) {
	if err := validateGroup("control", convA, sizeA); err != nil {
		return 0, 0, err
	}
	if err := validateGroup("treatment", convB, sizeB); err != nil {
		return 0, 0, err
	}

	observed := [2][2]float64{
		{float64(convA), float64(sizeA - convA)},
		{float64(convB), float64(sizeB - convB)},
	}

	rowTotals := [2]float64{observed[0][0] + observed[0][1], observed[1][0] + observed[1][1]}
	colTotals := [2]float64{observed[0][0] + observed[1][0], observed[0][1] + observed[1][1]}
	grandTotal := rowTotals[0] + rowTotals[1]

	if colTotals[0] == 0 || colTotals[1] == 0 {
		return 0, 0, fmt.Errorf("%w: conversion columns %v", core.ErrZeroMargin, colTotals)
	}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			expected := rowTotals[i] * colTotals[j] / grandTotal
			diff := observed[i][j] - expected
			chiSquare += diff * diff / expected
		}
	}

	chiDist := distuv.ChiSquared{K: 1}
	pValue = 1 - chiDist.CDF(chiSquare)
	return chiSquare, pValue, nil
}

// ConfidenceInterval computes the two-sided Wald interval for a proportion,
// clamped to [0, 1]. The observed rate always lies inside the interval.
func ConfidenceInterval(conversions, size int, alpha float64) (stats.Interval, error) {
	if err := validateGroup("group", conversions, size); err != nil {
		return stats.Interval{}, err
	}
	if err := validateAlpha(alpha); err != nil {
		return stats.Interval{}, err
	}

	p := float64(conversions) / float64(size)
	z := distuv.UnitNormal.Quantile(1 - alpha/2)
	se := math.Sqrt(p * (1 - p) / float64(size))

	return stats.Interval{
		Lower: math.Max(0, p-z*se),
		Upper: math.Min(1, p+z*se),
	}, nil
}

// CohensH computes the arcsine-transformed effect size between two
// proportions. Positive h means p2 is larger.
func CohensH(p1, p2 float64) (float64, error) {
	if err := validateProportion("p1", p1); err != nil {
		return 0, err
	}
	if err := validateProportion("p2", p2); err != nil {
		return 0, err
	}

	phi1 := 2 * math.Asin(math.Sqrt(p1))
	phi2 := 2 * math.Asin(math.Sqrt(p2))
	return phi2 - phi1, nil
}
