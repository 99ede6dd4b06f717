package l3_service

import (
	"context"
	"fmt"
	"math"
	"time"

	"stocktrader/internal/domain"
	"stocktrader/internal/logger"
	l1_service "stocktrader/internal/service/l1"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

/**

windowed strategy

one period of history is split in two windows: the bars we can buy on and,
years later, the bars we sell on. capital is spent in rounds over the buy
window, each bar getting weight * (capital left) until capital falls under
the floor or a whole pass buys nothing. every position is then closed on
the matching sell-window bar.

a run only counts if it ends with more than it started with. the caller
chains periods by passing FinalCapital into the next run.

*/

type WindowedStrategyService interface {
	Run(ctx context.Context, in WindowedRunInput) (*WindowedRunResult, error)
}

type WindowedStrategyConfig struct {
	FeeRate           float64
	FloorFraction     float64
	MaxVolumeFraction float64
	// aggregated transaction count at which a run is rejected
	MaxTransactions int
	// minimum distance between consecutive bars that marks the period
	// boundary, when no explicit boundary is given
	BoundaryGap time.Duration
}

func DefaultWindowedStrategyConfig() WindowedStrategyConfig {
	return WindowedStrategyConfig{
		FeeRate:           l1_service.DefaultFeeRate,
		FloorFraction:     0.1,
		MaxVolumeFraction: 0.1,
		MaxTransactions:   1000,
		BoundaryGap:       6 * 365 * 24 * time.Hour,
	}
}

type WindowedRunInput struct {
	// bars of every instrument in the period, buy and sell window together
	Bars           []domain.PriceBar
	Weights        domain.WeightTable
	InitialCapital float64
	// bars before the boundary form the buy window. when nil the boundary
	// is the first gap longer than BoundaryGap
	PeriodBoundary *time.Time
	// explicit windows take precedence over Bars and PeriodBoundary
	Windows *PeriodWindows
}

type PeriodWindows struct {
	Buy  []domain.PriceBar
	Sell []domain.PriceBar
}

type WindowedRunResult struct {
	RunID          uuid.UUID
	Transactions   []domain.TransactionRecord
	InitialCapital float64
	FinalCapital   float64
	BuyTable       []domain.BuyRow
	SellTable      []domain.SellRow
	Rounds         int
}

type windowedStrategyHandler struct {
	Config WindowedStrategyConfig
}

func NewWindowedStrategyService(cfg WindowedStrategyConfig) WindowedStrategyService {
	return windowedStrategyHandler{
		Config: cfg,
	}
}

func (h windowedStrategyHandler) Run(ctx context.Context, in WindowedRunInput) (*WindowedRunResult, error) {
	lg := logger.FromContext(ctx)
	cfg := h.Config

	ledger, err := l1_service.NewCapitalLedger(in.InitialCapital, cfg.FloorFraction)
	if err != nil {
		return nil, err
	}

	buyBars, sellBars, err := resolveWindows(in, cfg.BoundaryGap)
	if err != nil {
		return nil, err
	}

	buyTable := make([]domain.BuyRow, len(buyBars))
	for i, bar := range buyBars {
		buyTable[i] = domain.BuyRow{
			Bar:    bar,
			Weight: in.Weights.Get(bar.InstrumentID),
		}
	}
	sellIndex := pairSellBars(buyBars, sellBars)

	txLog := l1_service.NewTransactionLog(2 * len(buyBars))

	rounds := 0
	for ledger.CanBuy() {
		rounds++
		executed := 0
		for i := range buyTable {
			row := &buyTable[i]
			size, ok := sizeBuy(row.Bar, row.Weight, ledger.Available(), cfg)
			if !ok {
				continue
			}

			if err := ledger.Debit(size.cost); err != nil {
				return nil, fmt.Errorf("failed to buy %s on %s: %w", row.Bar.InstrumentID, row.Bar.Date.Format(time.DateOnly), err)
			}
			row.UnitsBought += size.units
			row.Cost += size.cost
			row.CostAtClose += float64(size.units) * row.Bar.Close

			txLog.Append(domain.TransactionRecord{
				Date:         row.Bar.Date,
				Action:       domain.NewAction(domain.Side_Buy, size.quote.Type),
				InstrumentID: row.Bar.InstrumentID,
				Units:        size.units,
			})
			executed++

			if !ledger.CanBuy() {
				break
			}
		}
		lg.Debugw("buy round finished", "round", rounds, "executed", executed, "available", ledger.Available())

		// a pass that buys nothing will never buy anything, capital
		// only changes through trades
		if executed == 0 {
			break
		}
	}

	sellTable := make([]domain.SellRow, 0, len(buyTable))
	for i, row := range buyTable {
		j := sellIndex[i]
		if j < 0 {
			if row.UnitsBought > 0 {
				return nil, fmt.Errorf("%w: no sell window bar for %s bought on %s", domain.ErrInvalidInput, row.Bar.InstrumentID, row.Bar.Date.Format(time.DateOnly))
			}
			continue
		}
		bar := sellBars[j]

		sellRow := domain.SellRow{Bar: bar}
		if row.UnitsBought > 0 {
			quote, ok := l1_service.ResolveSellPrice(bar, cfg.FeeRate)
			if !ok {
				return nil, fmt.Errorf("%w: cannot price sell of %s on %s", domain.ErrInvalidInput, bar.InstrumentID, bar.Date.Format(time.DateOnly))
			}
			proceeds := float64(row.UnitsBought) * quote.Price
			if err := ledger.Credit(proceeds); err != nil {
				return nil, fmt.Errorf("failed to sell %s on %s: %w", bar.InstrumentID, bar.Date.Format(time.DateOnly), err)
			}
			sellRow.UnitsSold = row.UnitsBought
			sellRow.Proceeds = proceeds
			sellRow.ProceedsAtClose = float64(row.UnitsBought) * bar.Close

			txLog.Append(domain.TransactionRecord{
				Date:         bar.Date,
				Action:       domain.NewAction(domain.Side_Sell, quote.Type),
				InstrumentID: bar.InstrumentID,
				Units:        row.UnitsBought,
			})
		}
		sellTable = append(sellTable, sellRow)
	}

	transactions := txLog.Aggregated()

	err = validateRun(ledger.TotalCost(), ledger.TotalProceeds(), decimal.NewFromFloat(in.InitialCapital), ledger.AvailableDecimal(), len(transactions), cfg.MaxTransactions)
	if err != nil {
		return nil, err
	}

	result := &WindowedRunResult{
		RunID:          uuid.New(),
		Transactions:   transactions,
		InitialCapital: in.InitialCapital,
		FinalCapital:   ledger.Available(),
		BuyTable:       buyTable,
		SellTable:      sellTable,
		Rounds:         rounds,
	}
	lg.Infow(
		"windowed run finished",
		"runID", result.RunID,
		"rounds", rounds,
		"transactions", len(transactions),
		"initialCapital", result.InitialCapital,
		"finalCapital", result.FinalCapital,
	)

	return result, nil
}

type buySize struct {
	quote l1_service.Quote
	units int64
	cost  float64
}

// sizeBuy returns the trade for one bar of a buy round. the bar is skipped
// when nothing is affordable or when the affordable size is above the
// volume cap
func sizeBuy(bar domain.PriceBar, weight, available float64, cfg WindowedStrategyConfig) (buySize, bool) {
	quote, ok := l1_service.ResolveBuyPrice(bar, cfg.FeeRate)
	if !ok || quote.Price <= 0 || weight <= 0 {
		return buySize{}, false
	}

	maxByVolume := math.Floor(cfg.MaxVolumeFraction * bar.Volume)
	investable := weight * available
	maxByCapital := math.Floor(investable / quote.Price)
	cost := maxByCapital * quote.Price

	if cost == 0 || maxByCapital > maxByVolume {
		return buySize{}, false
	}

	return buySize{
		quote: quote,
		units: int64(maxByCapital),
		cost:  cost,
	}, true
}

// validateRun checks the ledger balances and that the run made money with
// fewer than maxTransactions trades
func validateRun(totalCost, totalProceeds, initial, final decimal.Decimal, numTransactions, maxTransactions int) error {
	expected := initial.Sub(totalCost).Add(totalProceeds)
	if !expected.Equal(final) {
		return fmt.Errorf("ledger out of balance: expected %s, got %s", expected.String(), final.String())
	}
	if !final.GreaterThan(initial) {
		return fmt.Errorf("%w: final capital %s does not exceed initial capital %s", domain.ErrUnprofitableRun, final.String(), initial.String())
	}
	if numTransactions >= maxTransactions {
		return fmt.Errorf("%w: %d transactions, limit is %d", domain.ErrUnprofitableRun, numTransactions, maxTransactions)
	}
	return nil
}

func resolveWindows(in WindowedRunInput, gap time.Duration) (buy []domain.PriceBar, sell []domain.PriceBar, err error) {
	if in.Windows == nil {
		return SplitWindows(in.Bars, in.PeriodBoundary, gap)
	}
	if len(in.Windows.Buy) == 0 || len(in.Windows.Sell) == 0 {
		return nil, nil, fmt.Errorf("%w: buy and sell windows must not be empty", domain.ErrInvalidInput)
	}
	buy = make([]domain.PriceBar, len(in.Windows.Buy))
	copy(buy, in.Windows.Buy)
	domain.SortBarsByDate(buy)
	sell = make([]domain.PriceBar, len(in.Windows.Sell))
	copy(sell, in.Windows.Sell)
	domain.SortBarsByDate(sell)
	return buy, sell, nil
}

// SplitWindows divides a period's bars into the buy window and the sell
// window. with a boundary, bars strictly before it are the buy window.
// without one, the split is at the first gap between consecutive bars
// (by date) longer than gap
func SplitWindows(bars []domain.PriceBar, boundary *time.Time, gap time.Duration) (buy []domain.PriceBar, sell []domain.PriceBar, err error) {
	if len(bars) == 0 {
		return nil, nil, fmt.Errorf("%w: no bars in period", domain.ErrInvalidInput)
	}

	sorted := make([]domain.PriceBar, len(bars))
	copy(sorted, bars)
	domain.SortBarsByDate(sorted)

	splitAt := -1
	if boundary != nil {
		for i, b := range sorted {
			if !b.Date.Before(*boundary) {
				splitAt = i
				break
			}
		}
	} else {
		for i := 1; i < len(sorted); i++ {
			if sorted[i].Date.Sub(sorted[i-1].Date) > gap {
				splitAt = i
				break
			}
		}
	}

	if splitAt <= 0 {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, domain.ErrNoPeriodBoundary)
	}

	return sorted[:splitAt], sorted[splitAt:], nil
}

// pairSellBars maps every buy-window bar to the sell-window bar of the
// same instrument at the same position within that instrument's bars,
// or -1 when there is none
func pairSellBars(buyBars, sellBars []domain.PriceBar) []int {
	sellByInstrument := map[string][]int{}
	for j, b := range sellBars {
		sellByInstrument[b.InstrumentID] = append(sellByInstrument[b.InstrumentID], j)
	}

	seen := map[string]int{}
	out := make([]int, len(buyBars))
	for i, b := range buyBars {
		offset := seen[b.InstrumentID]
		seen[b.InstrumentID]++

		candidates := sellByInstrument[b.InstrumentID]
		if offset < len(candidates) {
			out[i] = candidates[offset]
		} else {
			out[i] = -1
		}
	}
	return out
}
