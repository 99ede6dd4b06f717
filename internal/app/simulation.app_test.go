package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"stocktrader/internal/domain"
	"stocktrader/internal/logger"
	mock_repository "stocktrader/internal/repository/mocks"
	l2_service "stocktrader/internal/service/l2"
	l3_service "stocktrader/internal/service/l3"
	"stocktrader/internal/util"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func testCtx() context.Context {
	return logger.WithLogger(context.Background(), zap.NewNop().Sugar())
}

func series(t *testing.T, id string, bars ...domain.PriceBar) domain.InstrumentSeries {
	for i := range bars {
		bars[i].InstrumentID = id
	}
	s, err := domain.NewInstrumentSeries(id, bars)
	require.NoError(t, err)
	return *s
}

func ohlcv(date time.Time, open, high, low, close, volume float64) domain.PriceBar {
	return domain.PriceBar{Date: date, Open: open, High: high, Low: low, Close: close, Volume: volume}
}

func newTestApp(ctrl *gomock.Controller) (SimulationApp, *mock_repository.MockPriceRepository) {
	priceRepository := mock_repository.NewMockPriceRepository(ctrl)
	return SimulationApp{
		PriceRepository:           priceRepository,
		TransactionFileRepository: mock_repository.NewMockTransactionFileRepository(ctrl),
		ValuationFileRepository:   mock_repository.NewMockValuationFileRepository(ctrl),
		UniverseService:           l2_service.NewUniverseService(),
		WindowedStrategy:          l3_service.NewWindowedStrategyService(l3_service.DefaultWindowedStrategyConfig()),
		IntradayStrategy:          l3_service.NewIntradayStrategyService(l3_service.DefaultIntradayStrategyConfig()),
	}, priceRepository
}

func twoPeriodUniverse(t *testing.T) []domain.InstrumentSeries {
	return []domain.InstrumentSeries{
		series(t, "AAA",
			ohlcv(util.NewDate(1962, 1, 2), 1, 1, 1, 1, 10000),
			ohlcv(util.NewDate(1979, 12, 31), 4, 5, 4, 4.5, 10000),
		),
		series(t, "BBB",
			ohlcv(util.NewDate(1980, 1, 2), 2, 2, 2, 2, 10000),
			ohlcv(util.NewDate(1999, 12, 31), 8, 10, 8, 9, 10000),
		),
	}
}

func twoPeriods() []l2_service.PeriodFilter {
	return []l2_service.PeriodFilter{
		{Start: util.NewDate(1962, 1, 1), End: util.NewDate(1980, 1, 1), MinReturn: 2, MinYears: 5},
		{Start: util.NewDate(1980, 1, 1), End: util.NewDate(2000, 1, 1), MinReturn: 3, MinYears: 5},
	}
}

func TestSimulationApp_RunWindowed(t *testing.T) {
	t.Run("capital is chained between periods", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		app, priceRepository := newTestApp(ctrl)
		priceRepository.EXPECT().ListAll().Return(twoPeriodUniverse(t), nil)

		result, err := app.RunWindowed(testCtx(), RunWindowedInput{
			InitialCapital: 100,
			Periods:        twoPeriods(),
		})
		require.NoError(t, err)

		require.Len(t, result.Periods, 2)
		require.InDelta(t, 482.18, result.Periods[0].FinalCapital, 1e-9)
		require.Equal(t, result.Periods[0].FinalCapital, result.Periods[1].InitialCapital)
		require.InDelta(t, 2318.22, result.FinalCapital, 1e-9)
		require.Equal(t, 100.0, result.InitialCapital)

		expectedTransactions := []domain.TransactionRecord{
			{Date: util.NewDate(1962, 1, 2), Action: "buy-close", InstrumentID: "AAA", Units: 97},
			{Date: util.NewDate(1979, 12, 31), Action: "sell-high", InstrumentID: "AAA", Units: 97},
			{Date: util.NewDate(1980, 1, 2), Action: "buy-close", InstrumentID: "BBB", Units: 233},
			{Date: util.NewDate(1999, 12, 31), Action: "sell-high", InstrumentID: "BBB", Units: 233},
		}
		require.Equal(t, "", cmp.Diff(expectedTransactions, result.Transactions))

		require.Len(t, result.Valuation, 4)
		require.InDelta(t, result.FinalCapital, result.Valuation[3].Balance, 1e-9)
		require.NotNil(t, result.Metrics)
		require.Greater(t, result.Metrics.TotalReturn, 0.0)
	})

	t.Run("failing period stops the chain", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		app, priceRepository := newTestApp(ctrl)
		priceRepository.EXPECT().ListAll().Return(twoPeriodUniverse(t), nil)

		periods := twoPeriods()
		periods[1].MinReturn = 1000

		result, err := app.RunWindowed(testCtx(), RunWindowedInput{
			InitialCapital: 100,
			Periods:        periods,
		})
		require.Nil(t, result)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		require.ErrorContains(t, err, "period 1 (1980-01-01 - 2000-01-01)")
	})

	t.Run("price loading error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		app, priceRepository := newTestApp(ctrl)
		priceRepository.EXPECT().ListAll().Return(nil, errors.New("disk on fire"))

		_, err := app.RunWindowed(testCtx(), RunWindowedInput{
			InitialCapital: 100,
			Periods:        twoPeriods(),
		})
		require.ErrorContains(t, err, "disk on fire")
	})

	t.Run("no periods", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		app, _ := newTestApp(ctrl)

		_, err := app.RunWindowed(testCtx(), RunWindowedInput{InitialCapital: 100})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSimulationApp_RunIntraday(t *testing.T) {
	ctrl := gomock.NewController(t)
	app, priceRepository := newTestApp(ctrl)
	priceRepository.EXPECT().ListAll().Return([]domain.InstrumentSeries{
		series(t, "AAA", ohlcv(util.NewDate(2000, 1, 3), 5, 6, 5, 5.5, 100)),
	}, nil)

	result, err := app.RunIntraday(testCtx(), RunIntradayInput{InitialCapital: 50})
	require.NoError(t, err)

	// 10 units (volume cap) bought at 5 and sold at 6
	require.InDelta(t, 60.0, result.FinalCapital, 1e-9)
	expected := []domain.TransactionRecord{
		{Date: util.NewDate(2000, 1, 3), Action: "buy-low", InstrumentID: "AAA", Units: 10},
		{Date: util.NewDate(2000, 1, 3), Action: "sell-high", InstrumentID: "AAA", Units: 10},
	}
	require.Equal(t, "", cmp.Diff(expected, result.Transactions))
	require.Len(t, result.Valuation, 2)
}

func TestSimulationApp_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	transactionFileRepository := mock_repository.NewMockTransactionFileRepository(ctrl)
	valuationFileRepository := mock_repository.NewMockValuationFileRepository(ctrl)
	app := SimulationApp{
		TransactionFileRepository: transactionFileRepository,
		ValuationFileRepository:   valuationFileRepository,
	}

	result := &SimulationResult{
		Transactions: []domain.TransactionRecord{{InstrumentID: "AAA", Units: 1}},
		Valuation:    []domain.ValuationPoint{{Balance: 1}},
	}
	transactionFileRepository.EXPECT().Write("out/small.txt", result.Transactions).Return(nil)
	valuationFileRepository.EXPECT().Write("out/small_valuation.csv", result.Valuation).Return(nil)

	require.NoError(t, app.Export("out", WindowedLogFile, result))
}
