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
)

type IntradayStrategyService interface {
	Run(ctx context.Context, in IntradayRunInput) (*IntradayRunResult, error)
}

type IntradayStrategyConfig struct {
	// the run stops once this many transactions are logged. a round trip
	// logs two
	MaxTransactions   int
	MaxVolumeFraction float64
}

func DefaultIntradayStrategyConfig() IntradayStrategyConfig {
	return IntradayStrategyConfig{
		MaxTransactions:   1_000_000,
		MaxVolumeFraction: 0.1,
	}
}

type IntradayRunInput struct {
	Bars           []domain.PriceBar
	InitialCapital float64
}

// IntradayRunResult has one buy row and one sell row per processed bar,
// zero-unit rows included. no profitability check is made, a losing run is
// still a result
type IntradayRunResult struct {
	RunID          uuid.UUID
	Transactions   []domain.TransactionRecord
	InitialCapital float64
	FinalCapital   float64
	BuyTable       []domain.BuyRow
	SellTable      []domain.SellRow
	BarsProcessed  int
}

type intradayStrategyHandler struct {
	Config IntradayStrategyConfig
}

func NewIntradayStrategyService(cfg IntradayStrategyConfig) IntradayStrategyService {
	return intradayStrategyHandler{
		Config: cfg,
	}
}

// Run buys and sells on every bar, in (date, instrument) order, as much as
// capital and the volume cap allow
func (h intradayStrategyHandler) Run(ctx context.Context, in IntradayRunInput) (*IntradayRunResult, error) {
	lg := logger.FromContext(ctx)
	cfg := h.Config

	if len(in.Bars) == 0 {
		return nil, fmt.Errorf("%w: no bars to trade", domain.ErrInvalidInput)
	}
	if cfg.MaxTransactions <= 0 {
		return nil, fmt.Errorf("%w: max transactions must be positive, got %d", domain.ErrInvalidInput, cfg.MaxTransactions)
	}

	ledger, err := l1_service.NewCapitalLedger(in.InitialCapital, 0)
	if err != nil {
		return nil, err
	}

	bars := make([]domain.PriceBar, len(in.Bars))
	copy(bars, in.Bars)
	domain.SortBarsByDateAndInstrument(bars)

	capacity := min(len(bars), cfg.MaxTransactions)
	txLog := l1_service.NewTransactionLog(capacity)
	buyTable := make([]domain.BuyRow, 0, capacity)
	sellTable := make([]domain.SellRow, 0, capacity)

	processed := 0
	for _, bar := range bars {
		if txLog.Len() >= cfg.MaxTransactions {
			break
		}
		processed++

		buy, sell := l1_service.IntradayQuotes(bar)
		units := roundTripSize(bar, buy.Price, ledger.Available(), cfg.MaxVolumeFraction)
		if units < 1 {
			buyTable = append(buyTable, domain.BuyRow{Bar: bar})
			sellTable = append(sellTable, domain.SellRow{Bar: bar})
			continue
		}

		cost := float64(units) * buy.Price
		if err := ledger.Debit(cost); err != nil {
			return nil, fmt.Errorf("failed to buy %s on %s: %w", bar.InstrumentID, bar.Date.Format(time.DateOnly), err)
		}
		profit := float64(units) * sell.Price
		if err := ledger.Credit(profit); err != nil {
			return nil, fmt.Errorf("failed to sell %s on %s: %w", bar.InstrumentID, bar.Date.Format(time.DateOnly), err)
		}

		txLog.Append(domain.TransactionRecord{
			Date:         bar.Date,
			Action:       domain.NewAction(domain.Side_Buy, buy.Type),
			InstrumentID: bar.InstrumentID,
			Units:        units,
		})
		txLog.Append(domain.TransactionRecord{
			Date:         bar.Date,
			Action:       domain.NewAction(domain.Side_Sell, sell.Type),
			InstrumentID: bar.InstrumentID,
			Units:        units,
		})
		buyTable = append(buyTable, domain.BuyRow{
			Bar:         bar,
			UnitsBought: units,
			Cost:        cost,
			CostAtClose: float64(units) * bar.Close,
		})
		sellTable = append(sellTable, domain.SellRow{
			Bar:             bar,
			UnitsSold:       units,
			Proceeds:        profit,
			ProceedsAtClose: float64(units) * bar.Close,
		})
	}

	result := &IntradayRunResult{
		RunID:          uuid.New(),
		Transactions:   txLog.Aggregated(),
		InitialCapital: in.InitialCapital,
		FinalCapital:   ledger.Available(),
		BuyTable:       buyTable,
		SellTable:      sellTable,
		BarsProcessed:  processed,
	}
	lg.Infow(
		"intraday run finished",
		"runID", result.RunID,
		"barsProcessed", processed,
		"transactions", len(result.Transactions),
		"initialCapital", result.InitialCapital,
		"finalCapital", result.FinalCapital,
	)

	return result, nil
}

// roundTripSize is floor(min(fraction * volume, capital / price)). bars
// with a non-positive price can't be sized and return 0
func roundTripSize(bar domain.PriceBar, price, available, maxVolumeFraction float64) int64 {
	if !(price > 0) {
		return 0
	}
	size := math.Floor(math.Min(maxVolumeFraction*bar.Volume, available/price))
	if !(size >= 1) {
		return 0
	}
	return int64(size)
}
