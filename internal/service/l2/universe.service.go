package l2_service

import (
	"context"
	"fmt"
	"math"
	"time"

	"stocktrader/internal"
	"stocktrader/internal/domain"
	"stocktrader/internal/logger"
	"stocktrader/internal/util"

	"github.com/montanaflynn/stats"
)

// UniverseService decides which instruments a simulation trades and shapes
// their price history into strategy input
type UniverseService interface {
	AnalyzePerformance(series []domain.InstrumentSeries, start, end time.Time) []domain.PerformanceRecord
	PrepareWindowedPeriod(ctx context.Context, series []domain.InstrumentSeries, filter PeriodFilter) (*PreparedPeriod, error)
	PrepareIntraday(series []domain.InstrumentSeries) []domain.PriceBar
}

// PeriodFilter selects the instruments traded in one period. an instrument
// has to be listed for at least MinYears and return at least MinReturn
// between its first and last bar in [Start, End]
type PeriodFilter struct {
	Start     time.Time
	End       time.Time
	MinReturn float64
	MinYears  float64
}

// PreparedPeriod keeps only the first (buy window) and last (sell window)
// bar of every kept instrument, both ordered by date
type PreparedPeriod struct {
	BuyWindow    []domain.PriceBar
	SellWindow   []domain.PriceBar
	Performances []domain.PerformanceRecord
	Weights      []domain.InvestmentWeight
}

func (p PreparedPeriod) Bars() []domain.PriceBar {
	bars := make([]domain.PriceBar, 0, len(p.BuyWindow)+len(p.SellWindow))
	bars = append(bars, p.BuyWindow...)
	bars = append(bars, p.SellWindow...)
	domain.SortBarsByDate(bars)
	return bars
}

type universeServiceHandler struct{}

func NewUniverseService() UniverseService {
	return universeServiceHandler{}
}

// AnalyzePerformance computes the total return of every instrument over
// [start, end] as (last high - first low) / first low. instruments with
// fewer than two bars, or a non-positive or infinite return, are left out.
// the result is best first
func (h universeServiceHandler) AnalyzePerformance(series []domain.InstrumentSeries, start, end time.Time) []domain.PerformanceRecord {
	out := []domain.PerformanceRecord{}
	for _, s := range series {
		bars := s.Between(start, end)
		if len(bars) < 2 {
			continue
		}
		first := bars[0]
		last := bars[len(bars)-1]

		totalReturn := (last.High - first.Low) / first.Low
		if math.IsNaN(totalReturn) || math.IsInf(totalReturn, 0) || totalReturn <= 0 {
			continue
		}

		out = append(out, domain.PerformanceRecord{
			InstrumentID: s.InstrumentID,
			TotalReturn:  totalReturn,
			TotalYears:   util.YearsBetween(first.Date, last.Date),
			StartDate:    first.Date,
			EndDate:      last.Date,
		})
	}

	return internal.RankPerformances(out)
}

func (h universeServiceHandler) PrepareWindowedPeriod(ctx context.Context, series []domain.InstrumentSeries, filter PeriodFilter) (*PreparedPeriod, error) {
	lg := logger.FromContext(ctx)

	if !filter.End.IsZero() && filter.End.Before(filter.Start) {
		return nil, fmt.Errorf("%w: period end %s is before start %s", domain.ErrInvalidInput, filter.End.Format(time.DateOnly), filter.Start.Format(time.DateOnly))
	}

	performances := h.AnalyzePerformance(series, filter.Start, filter.End)

	kept := []domain.PerformanceRecord{}
	for _, p := range performances {
		if p.TotalYears >= filter.MinYears && p.TotalReturn >= filter.MinReturn {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf(
			"%w: no instrument in %s - %s returned %.2f over %.1f years",
			domain.ErrInvalidInput,
			filter.Start.Format(time.DateOnly),
			filter.End.Format(time.DateOnly),
			filter.MinReturn,
			filter.MinYears,
		)
	}

	keptIDs := map[string]bool{}
	for _, p := range kept {
		keptIDs[p.InstrumentID] = true
	}

	buyWindow := []domain.PriceBar{}
	sellWindow := []domain.PriceBar{}
	for _, s := range series {
		if !keptIDs[s.InstrumentID] {
			continue
		}
		inPeriod := s.Between(filter.Start, filter.End)
		buyWindow = append(buyWindow, inPeriod[0])
		sellWindow = append(sellWindow, inPeriod[len(inPeriod)-1])
	}
	domain.SortBarsByDate(buyWindow)
	domain.SortBarsByDate(sellWindow)

	weights, err := internal.ComputeInvestmentWeights(kept)
	if err != nil {
		return nil, fmt.Errorf("failed to compute investment weights: %w", err)
	}

	returns := make([]float64, 0, len(kept))
	for _, p := range kept {
		returns = append(returns, p.TotalReturn)
	}
	medianReturn, err := stats.Median(returns)
	if err != nil {
		return nil, fmt.Errorf("failed to compute median return: %w", err)
	}
	lg.Infow(
		"prepared windowed period",
		"start", filter.Start.Format(time.DateOnly),
		"end", filter.End.Format(time.DateOnly),
		"analyzed", len(performances),
		"kept", len(kept),
		"medianReturn", medianReturn,
	)

	return &PreparedPeriod{
		BuyWindow:    buyWindow,
		SellWindow:   sellWindow,
		Performances: kept,
		Weights:      weights,
	}, nil
}

// PrepareIntraday concatenates every series into one stream ordered by
// date, then instrument
func (h universeServiceHandler) PrepareIntraday(series []domain.InstrumentSeries) []domain.PriceBar {
	size := 0
	for _, s := range series {
		size += len(s.Bars)
	}
	bars := make([]domain.PriceBar, 0, size)
	for _, s := range series {
		bars = append(bars, s.Bars...)
	}
	domain.SortBarsByDateAndInstrument(bars)
	return bars
}
