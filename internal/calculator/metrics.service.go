package calculator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"stocktrader/internal/domain"
	"stocktrader/internal/util"

	"github.com/montanaflynn/stats"
)

type CalculateMetricsResult struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	// sample stdev of the balance change between consecutive rows
	StepStdev   float64 `json:"stepStdev"`
	MaxDrawdown float64 `json:"maxDrawdown"`
}

type valuationStep struct {
	date            time.Time
	cost            float64
	costAtClose     float64
	proceeds        float64
	proceedsAtClose float64
}

// ComputeValuation interleaves the buy and sell tables by date and tracks
// the account after every row that moved units. buys stay ahead of sells
// on the same day
func ComputeValuation(initialCapital float64, buyTable []domain.BuyRow, sellTable []domain.SellRow) []domain.ValuationPoint {
	steps := make([]valuationStep, 0, len(buyTable)+len(sellTable))
	for _, r := range buyTable {
		if r.UnitsBought == 0 {
			continue
		}
		steps = append(steps, valuationStep{
			date:        r.Bar.Date,
			cost:        r.Cost,
			costAtClose: r.CostAtClose,
		})
	}
	for _, r := range sellTable {
		if r.UnitsSold == 0 {
			continue
		}
		steps = append(steps, valuationStep{
			date:            r.Bar.Date,
			proceeds:        r.Proceeds,
			proceedsAtClose: r.ProceedsAtClose,
		})
	}
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].date.Before(steps[j].date)
	})

	out := make([]domain.ValuationPoint, 0, len(steps))
	var cumCost, cumCostAtClose, cumProceeds, cumProceedsAtClose float64
	for _, s := range steps {
		cumCost += s.cost
		cumCostAtClose += s.costAtClose
		cumProceeds += s.proceeds
		cumProceedsAtClose += s.proceedsAtClose
		out = append(out, domain.ValuationPoint{
			Date:      s.date,
			Balance:   initialCapital + cumProceeds - cumCost,
			Portfolio: initialCapital + cumProceedsAtClose + cumCostAtClose,
		})
	}

	return out
}

// CalculateMetrics summarizes a valuation series. returns are measured on
// Balance, relative to the starting capital
func CalculateMetrics(initialCapital float64, points []domain.ValuationPoint) (*CalculateMetricsResult, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("cannot calculate metrics on < 2 valuation points")
	}
	if initialCapital <= 0 {
		return nil, fmt.Errorf("%w: initial capital must be positive, got %f", domain.ErrInvalidInput, initialCapital)
	}

	balances := make([]float64, 0, len(points)+1)
	balances = append(balances, initialCapital)
	for _, p := range points {
		balances = append(balances, p.Balance)
	}

	endValue := balances[len(balances)-1]
	totalReturn := endValue/initialCapital - 1

	numYears := util.YearsBetween(points[0].Date, points[len(points)-1].Date)
	annualizedReturn := totalReturn
	if numYears > 0 && endValue > 0 {
		annualizedReturn = math.Pow(endValue/initialCapital, 1/numYears) - 1
	}

	changes := make([]float64, 0, len(points))
	for i := 1; i < len(balances); i++ {
		changes = append(changes, balances[i]-balances[i-1])
	}
	stdev, err := stats.StandardDeviationSample(changes)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stdev: %w", err)
	}

	return &CalculateMetricsResult{
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualizedReturn,
		StepStdev:        stdev,
		MaxDrawdown:      maxDrawdown(balances),
	}, nil
}

// largest fall from a running peak, as a fraction of that peak
func maxDrawdown(values []float64) float64 {
	peak := values[0]
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			worst = math.Max(worst, (peak-v)/peak)
		}
	}
	return worst
}
