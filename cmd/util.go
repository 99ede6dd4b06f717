package cmd

import (
	"fmt"

	"stocktrader/api"
	"stocktrader/internal/app"
	"stocktrader/internal/logger"
	"stocktrader/internal/repository"
	l2_service "stocktrader/internal/service/l2"
	l3_service "stocktrader/internal/service/l3"
	"stocktrader/internal/util"
)

type Dependencies struct {
	Config        *util.Config
	SimulationApp app.SimulationApp
	ApiHandler    *api.ApiHandler
}

func windowedStrategyConfig(cfg *util.Config) l3_service.WindowedStrategyConfig {
	return l3_service.WindowedStrategyConfig{
		FeeRate:           cfg.FeeRate,
		FloorFraction:     cfg.Windowed.FloorFraction,
		MaxVolumeFraction: cfg.MaxVolumeFraction,
		MaxTransactions:   cfg.Windowed.MaxTransactions,
		BoundaryGap:       cfg.Windowed.BoundaryGap(),
	}
}

func intradayStrategyConfig(cfg *util.Config) l3_service.IntradayStrategyConfig {
	return l3_service.IntradayStrategyConfig{
		MaxTransactions:   cfg.Intraday.MaxTransactions,
		MaxVolumeFraction: cfg.MaxVolumeFraction,
	}
}

// InitializeDependencies builds the app and api from an already loaded
// config
func InitializeDependencies(cfg *util.Config, includeDate bool) (*Dependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	simulationApp := app.SimulationApp{
		PriceRepository:           repository.NewPriceFileRepository(cfg.DataDir),
		TransactionFileRepository: repository.NewTransactionFileRepository(includeDate),
		ValuationFileRepository:   repository.NewValuationFileRepository(),
		UniverseService:           l2_service.NewUniverseService(),
		WindowedStrategy:          l3_service.NewWindowedStrategyService(windowedStrategyConfig(cfg)),
		IntradayStrategy:          l3_service.NewIntradayStrategyService(intradayStrategyConfig(cfg)),
	}

	apiHandler := &api.ApiHandler{
		WindowedConfig: windowedStrategyConfig(cfg),
		IntradayConfig: intradayStrategyConfig(cfg),
		Logger:         logger.New(),
	}

	return &Dependencies{
		Config:        cfg,
		SimulationApp: simulationApp,
		ApiHandler:    apiHandler,
	}, nil
}

// PeriodFilters converts the configured periods. both ends are inclusive
func PeriodFilters(periods []util.PeriodConfig) ([]l2_service.PeriodFilter, error) {
	out := make([]l2_service.PeriodFilter, 0, len(periods))
	for i, p := range periods {
		start, err := p.StartDate()
		if err != nil {
			return nil, fmt.Errorf("period %d: %w", i, err)
		}
		end, err := p.EndDate()
		if err != nil {
			return nil, fmt.Errorf("period %d: %w", i, err)
		}
		out = append(out, l2_service.PeriodFilter{
			Start:     start,
			End:       end,
			MinReturn: p.MinReturn,
			MinYears:  p.MinYears,
		})
	}
	return out, nil
}
