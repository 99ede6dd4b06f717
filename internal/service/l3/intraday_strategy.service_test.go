package l3_service

import (
	"testing"

	"stocktrader/internal/domain"
	"stocktrader/internal/util"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestIntradayStrategy_Run(t *testing.T) {
	d1 := util.NewDate(2005, 3, 1)
	d2 := util.NewDate(2005, 3, 2)

	t.Run("single round trip", func(t *testing.T) {
		svc := NewIntradayStrategyService(DefaultIntradayStrategyConfig())
		result, err := svc.Run(testCtx(), IntradayRunInput{
			Bars: []domain.PriceBar{
				bar("X", d1, 10, 15, 8, 12, 100),
			},
			InitialCapital: 50,
		})
		require.NoError(t, err)

		require.Equal(t, 92.0, result.FinalCapital)
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.TransactionRecord{
					{Date: d1, Action: "buy-low", InstrumentID: "X", Units: 6},
					{Date: d1, Action: "sell-high", InstrumentID: "X", Units: 6},
				},
				result.Transactions,
			),
		)
		require.Equal(t, 48.0, result.BuyTable[0].Cost)
		require.Equal(t, 90.0, result.SellTable[0].Proceeds)
	})

	t.Run("bars are traded in date then instrument order", func(t *testing.T) {
		svc := NewIntradayStrategyService(DefaultIntradayStrategyConfig())
		result, err := svc.Run(testCtx(), IntradayRunInput{
			Bars: []domain.PriceBar{
				bar("B", d2, 1, 2, 1, 2, 1000),
				bar("B", d1, 1, 2, 1, 2, 1000),
				bar("A", d1, 1, 2, 1, 2, 1000),
			},
			InitialCapital: 10,
		})
		require.NoError(t, err)

		ids := []string{}
		for _, r := range result.BuyTable {
			ids = append(ids, r.Bar.InstrumentID+r.Bar.Date.Format("02"))
		}
		require.Equal(t, []string{"A01", "B01", "B02"}, ids)

		// capital doubles on every round trip
		require.Equal(t, 80.0, result.FinalCapital)
	})

	t.Run("unaffordable bars log zero rows and no transactions", func(t *testing.T) {
		svc := NewIntradayStrategyService(DefaultIntradayStrategyConfig())
		result, err := svc.Run(testCtx(), IntradayRunInput{
			Bars: []domain.PriceBar{
				bar("X", d1, 100, 150, 80, 120, 100),
				bar("Y", d1, 1, 2, 1, 2, 5),
			},
			InitialCapital: 50,
		})
		require.NoError(t, err)

		require.Len(t, result.BuyTable, 2)
		require.Len(t, result.SellTable, 2)
		require.Equal(t, int64(0), result.BuyTable[0].UnitsBought)
		require.Equal(t, int64(0), result.SellTable[0].UnitsSold)
		// Y: volume cap floor(0.5) = 0
		require.Equal(t, int64(0), result.BuyTable[1].UnitsBought)
		require.Empty(t, result.Transactions)
		require.Equal(t, 50.0, result.FinalCapital)
	})

	t.Run("losing run is still a result", func(t *testing.T) {
		svc := NewIntradayStrategyService(DefaultIntradayStrategyConfig())
		result, err := svc.Run(testCtx(), IntradayRunInput{
			// high below low, so the round trip loses half
			Bars:           []domain.PriceBar{bar("X", d1, 10, 5, 10, 5, 100)},
			InitialCapital: 50,
		})
		require.NoError(t, err)
		require.Equal(t, 25.0, result.FinalCapital)
	})

	t.Run("zero priced bar is a no-op", func(t *testing.T) {
		svc := NewIntradayStrategyService(DefaultIntradayStrategyConfig())
		result, err := svc.Run(testCtx(), IntradayRunInput{
			Bars:           []domain.PriceBar{bar("X", d1, 0, 0, 0, 0, 100)},
			InitialCapital: 5,
		})
		require.NoError(t, err)
		require.Equal(t, 5.0, result.FinalCapital)
		require.Empty(t, result.Transactions)
	})

	t.Run("stops at the transaction cap", func(t *testing.T) {
		cfg := DefaultIntradayStrategyConfig()
		cfg.MaxTransactions = 4
		svc := NewIntradayStrategyService(cfg)
		result, err := svc.Run(testCtx(), IntradayRunInput{
			Bars: []domain.PriceBar{
				bar("A", d1, 1, 2, 1, 2, 1000),
				bar("B", d1, 1, 2, 1, 2, 1000),
				bar("C", d1, 1, 2, 1, 2, 1000),
			},
			InitialCapital: 10,
		})
		require.NoError(t, err)

		require.Len(t, result.Transactions, 4)
		require.Equal(t, 2, result.BarsProcessed)
		require.Equal(t, 40.0, result.FinalCapital)
	})

	t.Run("empty input", func(t *testing.T) {
		svc := NewIntradayStrategyService(DefaultIntradayStrategyConfig())
		_, err := svc.Run(testCtx(), IntradayRunInput{InitialCapital: 1})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func Test_roundTripSize(t *testing.T) {
	t.Run("volume bound", func(t *testing.T) {
		require.Equal(t, int64(10), roundTripSize(domain.PriceBar{Volume: 100}, 1, 1_000, 0.1))
	})
	t.Run("capital bound", func(t *testing.T) {
		require.Equal(t, int64(6), roundTripSize(domain.PriceBar{Volume: 100}, 8, 50, 0.1))
	})
	t.Run("zero price", func(t *testing.T) {
		require.Equal(t, int64(0), roundTripSize(domain.PriceBar{Volume: 100}, 0, 50, 0.1))
	})
}
