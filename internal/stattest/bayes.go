package stattest

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"goab/domain/core"
	"goab/domain/stats"
)

// BayesianABTest draws paired Monte-Carlo samples from the two conversion
// rate posteriors and estimates the probability that treatment beats control,
// plus the expected loss of committing to either arm. Posteriors are
// Beta(1+conversions, 1+size-conversions): a uniform prior updated with the
// observed counts.
//
// The caller supplies the random source. Identical source state and inputs
// produce bit-identical results.
func BayesianABTest(convA, sizeA, convB, sizeB, sims int, src rand.Source) (*stats.BayesianResult, error) {
	if err := validateGroup("control", convA, sizeA); err != nil {
		return nil, err
	}
	if err := validateGroup("treatment", convB, sizeB); err != nil {
		return nil, err
	}
	if sims <= 0 {
		return nil, core.NewInvalidInputError("simulations", fmt.Sprintf("must be positive, got %d", sims))
	}
	if src == nil {
		return nil, core.NewInvalidInputError("random source", "must not be nil")
	}

	posteriorA := distuv.Beta{Alpha: float64(1 + convA), Beta: float64(1 + sizeA - convA), Src: src}
	posteriorB := distuv.Beta{Alpha: float64(1 + convB), Beta: float64(1 + sizeB - convB), Src: src}

	var bWins int
	var lossA, lossB float64
	for i := 0; i < sims; i++ {
		a := posteriorA.Rand()
		b := posteriorB.Rand()
		if b > a {
			bWins++
			lossA += b - a
		} else if a > b {
			lossB += a - b
		}
	}

	probB := float64(bWins) / float64(sims)
	return &stats.BayesianResult{
		ProbABetter:    1 - probB,
		ProbBBetter:    probB,
		ExpectedLossA:  lossA / float64(sims),
		ExpectedLossB:  lossB / float64(sims),
		PosteriorMeanA: posteriorA.Mean(),
		PosteriorMeanB: posteriorB.Mean(),
		Simulations:    sims,
	}, nil
}
