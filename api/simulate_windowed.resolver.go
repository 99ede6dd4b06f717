package api

import (
	"fmt"
	"time"

	"stocktrader/internal"
	"stocktrader/internal/calculator"
	"stocktrader/internal/domain"
	l3_service "stocktrader/internal/service/l3"
	"stocktrader/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type performanceRequest struct {
	InstrumentID string  `json:"instrumentID"`
	TotalReturn  float64 `json:"totalReturn"`
	TotalYears   float64 `json:"totalYears"`
}

type SimulateWindowedRequest struct {
	Bars           []priceBarRequest    `json:"bars"`
	Performances   []performanceRequest `json:"performances"`
	InitialCapital float64              `json:"initialCapital"`
	FeeRate        *float64             `json:"feeRate"`
	PeriodBoundary *string              `json:"periodBoundary"`
}

type SimulateWindowedResponse struct {
	RunID          uuid.UUID                          `json:"runID"`
	Transactions   []transactionResponse              `json:"transactions"`
	InitialCapital float64                            `json:"initialCapital"`
	FinalCapital   float64                            `json:"finalCapital"`
	Weights        []domain.InvestmentWeight          `json:"weights"`
	BuyTable       []domain.BuyRow                    `json:"buyTable"`
	SellTable      []domain.SellRow                   `json:"sellTable"`
	Valuation      []domain.ValuationPoint            `json:"valuation"`
	Metrics        *calculator.CalculateMetricsResult `json:"metrics,omitempty"`
	Profile        *domain.Profile                    `json:"profile"`
}

func (m ApiHandler) simulateWindowed(c *gin.Context) {
	ctx, profile, endProfile := requestContext(c)

	var requestBody SimulateWindowedRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to parse request: %w", err), c, 400)
		return
	}

	bars, err := toDomainBars(requestBody.Bars)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	var boundary *time.Time
	if requestBody.PeriodBoundary != nil {
		b, err := util.ParseDate(*requestBody.PeriodBoundary)
		if err != nil {
			returnErrorJson(fmt.Errorf("%w: bad periodBoundary %q", domain.ErrInvalidInput, *requestBody.PeriodBoundary), c)
			return
		}
		boundary = &b
	}

	performances := make([]domain.PerformanceRecord, 0, len(requestBody.Performances))
	for _, p := range requestBody.Performances {
		performances = append(performances, domain.PerformanceRecord{
			InstrumentID: p.InstrumentID,
			TotalReturn:  p.TotalReturn,
			TotalYears:   p.TotalYears,
		})
	}

	_, endSpan := profile.StartNewSpan("compute weights")
	weights, err := internal.ComputeInvestmentWeights(performances)
	endSpan()
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to compute weights: %w", err), c)
		return
	}

	cfg := m.WindowedConfig
	if requestBody.FeeRate != nil {
		cfg.FeeRate = *requestBody.FeeRate
	}

	_, endSpan = profile.StartNewSpan("windowed run")
	result, err := l3_service.NewWindowedStrategyService(cfg).Run(ctx, l3_service.WindowedRunInput{
		Bars:           bars,
		Weights:        domain.NewWeightTable(weights),
		InitialCapital: requestBody.InitialCapital,
		PeriodBoundary: boundary,
	})
	endSpan()
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	valuation := calculator.ComputeValuation(result.InitialCapital, result.BuyTable, result.SellTable)
	var metrics *calculator.CalculateMetricsResult
	if len(valuation) >= 2 {
		metrics, err = calculator.CalculateMetrics(result.InitialCapital, valuation)
		if err != nil {
			returnErrorJson(err, c)
			return
		}
	}
	endProfile()

	c.JSON(200, SimulateWindowedResponse{
		RunID:          result.RunID,
		Transactions:   toTransactionResponse(result.Transactions),
		InitialCapital: result.InitialCapital,
		FinalCapital:   result.FinalCapital,
		Weights:        weights,
		BuyTable:       result.BuyTable,
		SellTable:      result.SellTable,
		Valuation:      valuation,
		Metrics:        metrics,
		Profile:        profile,
	})
}
