package internal

import (
	"fmt"
	"math"
	"sort"

	"stocktrader/internal/domain"

	"github.com/montanaflynn/stats"
)

// flat haircut taken off every return share. it biases the allocation
// toward the top performers and zeroes out the weakest ones
const WeightHaircut = 0.02

/**

weight(i) = TotalReturn(i) / sum(TotalReturn) - 0.02, clipped at 0

the raw weights don't need to add to 1, and after the haircut they never
do. the windowed strategy multiplies the weight by whatever capital is
left at the time of the trade, so a weight is "fraction of what's left",
not "fraction of the start".

*/

// ComputeInvestmentWeights turns a performance table into one weight per
// instrument, in the same order as the input
func ComputeInvestmentWeights(performances []domain.PerformanceRecord) ([]domain.InvestmentWeight, error) {
	if len(performances) == 0 {
		return nil, fmt.Errorf("%w: cannot compute weights of empty performance table", domain.ErrInvalidInput)
	}

	returns := make([]float64, 0, len(performances))
	for _, p := range performances {
		if math.IsNaN(p.TotalReturn) || math.IsInf(p.TotalReturn, 0) {
			return nil, fmt.Errorf("%w: invalid total return %f for %s", domain.ErrInvalidInput, p.TotalReturn, p.InstrumentID)
		}
		returns = append(returns, p.TotalReturn)
	}

	returnSum, err := stats.Sum(returns)
	if err != nil {
		return nil, fmt.Errorf("failed to sum total returns: %w", err)
	}
	if returnSum <= 0 {
		return nil, fmt.Errorf("%w: %w (got %f)", domain.ErrInvalidInput, domain.ErrZeroReturnSum, returnSum)
	}

	weights := make([]domain.InvestmentWeight, 0, len(performances))
	for _, p := range performances {
		w := p.TotalReturn/returnSum - WeightHaircut
		weights = append(weights, domain.InvestmentWeight{
			InstrumentID: p.InstrumentID,
			Weight:       math.Max(w, 0),
		})
	}

	return weights, nil
}

// RankPerformances sorts by total return, best first. ties keep input order
func RankPerformances(performances []domain.PerformanceRecord) []domain.PerformanceRecord {
	out := make([]domain.PerformanceRecord, len(performances))
	copy(out, performances)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalReturn > out[j].TotalReturn
	})
	return out
}
