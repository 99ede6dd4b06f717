package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"stocktrader/internal/calculator"
	"stocktrader/internal/domain"
	"stocktrader/internal/logger"
	"stocktrader/internal/repository"
	l2_service "stocktrader/internal/service/l2"
	l3_service "stocktrader/internal/service/l3"

	"github.com/google/uuid"
)

const (
	WindowedLogFile  = "small.txt"
	IntradayLogFile  = "large.txt"
	valuationFileExt = "_valuation.csv"
)

// SimulationApp ties price ingestion, universe selection and the two
// strategies together into runs over the whole dataset
type SimulationApp struct {
	PriceRepository           repository.PriceRepository
	TransactionFileRepository repository.TransactionFileRepository
	ValuationFileRepository   repository.ValuationFileRepository
	UniverseService           l2_service.UniverseService
	WindowedStrategy          l3_service.WindowedStrategyService
	IntradayStrategy          l3_service.IntradayStrategyService
}

type RunWindowedInput struct {
	InitialCapital float64
	Periods        []l2_service.PeriodFilter
}

type PeriodResult struct {
	RunID          uuid.UUID                 `json:"runID"`
	Start          time.Time                 `json:"start"`
	End            time.Time                 `json:"end"`
	InitialCapital float64                   `json:"initialCapital"`
	FinalCapital   float64                   `json:"finalCapital"`
	Transactions   int                       `json:"transactions"`
	Weights        []domain.InvestmentWeight `json:"weights"`
}

type SimulationResult struct {
	Transactions   []domain.TransactionRecord         `json:"transactions"`
	InitialCapital float64                            `json:"initialCapital"`
	FinalCapital   float64                            `json:"finalCapital"`
	Periods        []PeriodResult                     `json:"periods,omitempty"`
	BuyTable       []domain.BuyRow                    `json:"-"`
	SellTable      []domain.SellRow                   `json:"-"`
	Valuation      []domain.ValuationPoint            `json:"valuation"`
	Metrics        *calculator.CalculateMetricsResult `json:"metrics,omitempty"`
}

// RunWindowed runs the windowed strategy over each period in order. the
// capital a period ends with is what the next one starts with, and the
// first failing period stops the chain
func (h SimulationApp) RunWindowed(ctx context.Context, in RunWindowedInput) (*SimulationResult, error) {
	lg := logger.FromContext(ctx)
	profile := domain.ProfileFromContext(ctx)

	if len(in.Periods) == 0 {
		return nil, fmt.Errorf("%w: no periods to simulate", domain.ErrInvalidInput)
	}

	_, endSpan := profile.StartNewSpan("load prices")
	series, err := h.PriceRepository.ListAll()
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	out := &SimulationResult{
		Transactions:   []domain.TransactionRecord{},
		InitialCapital: in.InitialCapital,
		Periods:        []PeriodResult{},
	}
	capital := in.InitialCapital
	for i, filter := range in.Periods {
		periodName := fmt.Sprintf("period %d (%s - %s)", i, filter.Start.Format(time.DateOnly), filter.End.Format(time.DateOnly))
		_, endSpan := profile.StartNewSpan(periodName)

		prepared, err := h.UniverseService.PrepareWindowedPeriod(ctx, series, filter)
		if err != nil {
			endSpan()
			return nil, fmt.Errorf("failed to prepare %s: %w", periodName, err)
		}

		result, err := h.WindowedStrategy.Run(ctx, l3_service.WindowedRunInput{
			Weights:        domain.NewWeightTable(prepared.Weights),
			InitialCapital: capital,
			Windows: &l3_service.PeriodWindows{
				Buy:  prepared.BuyWindow,
				Sell: prepared.SellWindow,
			},
		})
		endSpan()
		if err != nil {
			return nil, fmt.Errorf("failed to simulate %s: %w", periodName, err)
		}

		out.Periods = append(out.Periods, PeriodResult{
			RunID:          result.RunID,
			Start:          filter.Start,
			End:            filter.End,
			InitialCapital: result.InitialCapital,
			FinalCapital:   result.FinalCapital,
			Transactions:   len(result.Transactions),
			Weights:        prepared.Weights,
		})
		out.Transactions = append(out.Transactions, result.Transactions...)
		out.BuyTable = append(out.BuyTable, result.BuyTable...)
		out.SellTable = append(out.SellTable, result.SellTable...)

		lg.Infow("period simulated", "period", periodName, "initialCapital", capital, "finalCapital", result.FinalCapital)
		capital = result.FinalCapital
	}
	out.FinalCapital = capital

	if err := h.value(ctx, out); err != nil {
		return nil, err
	}

	return out, nil
}

type RunIntradayInput struct {
	InitialCapital float64
}

// RunIntraday trades every bar of the dataset in (date, instrument) order
func (h SimulationApp) RunIntraday(ctx context.Context, in RunIntradayInput) (*SimulationResult, error) {
	profile := domain.ProfileFromContext(ctx)

	_, endSpan := profile.StartNewSpan("load prices")
	series, err := h.PriceRepository.ListAll()
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	_, endSpan = profile.StartNewSpan("intraday run")
	result, err := h.IntradayStrategy.Run(ctx, l3_service.IntradayRunInput{
		Bars:           h.UniverseService.PrepareIntraday(series),
		InitialCapital: in.InitialCapital,
	})
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to simulate intraday: %w", err)
	}

	out := &SimulationResult{
		Transactions:   result.Transactions,
		InitialCapital: result.InitialCapital,
		FinalCapital:   result.FinalCapital,
		BuyTable:       result.BuyTable,
		SellTable:      result.SellTable,
	}
	if err := h.value(ctx, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (h SimulationApp) value(ctx context.Context, result *SimulationResult) error {
	_, endSpan := domain.ProfileFromContext(ctx).StartNewSpan("valuation")
	defer endSpan()

	result.Valuation = calculator.ComputeValuation(result.InitialCapital, result.BuyTable, result.SellTable)
	if len(result.Valuation) < 2 {
		return nil
	}
	metrics, err := calculator.CalculateMetrics(result.InitialCapital, result.Valuation)
	if err != nil {
		return fmt.Errorf("failed to calculate metrics: %w", err)
	}
	result.Metrics = metrics

	return nil
}

// Export writes the transaction log to outputDir/fileName and the
// valuation series next to it
func (h SimulationApp) Export(outputDir, fileName string, result *SimulationResult) error {
	logPath := filepath.Join(outputDir, fileName)
	if err := h.TransactionFileRepository.Write(logPath, result.Transactions); err != nil {
		return err
	}

	valuationPath := filepath.Join(outputDir, fileName[:len(fileName)-len(filepath.Ext(fileName))]+valuationFileExt)
	if err := h.ValuationFileRepository.Write(valuationPath, result.Valuation); err != nil {
		return err
	}

	return nil
}
