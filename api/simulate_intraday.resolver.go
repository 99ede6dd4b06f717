package api

import (
	"fmt"

	"stocktrader/internal/domain"
	l3_service "stocktrader/internal/service/l3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SimulateIntradayRequest struct {
	Bars              []priceBarRequest `json:"bars"`
	InitialCapital    float64           `json:"initialCapital"`
	MaxTransactions   *int              `json:"maxTransactions"`
	MaxVolumeFraction *float64          `json:"maxVolumeFraction"`
}

type SimulateIntradayResponse struct {
	RunID          uuid.UUID             `json:"runID"`
	Transactions   []transactionResponse `json:"transactions"`
	InitialCapital float64               `json:"initialCapital"`
	FinalCapital   float64               `json:"finalCapital"`
	BarsProcessed  int                   `json:"barsProcessed"`
	Profile        *domain.Profile       `json:"profile"`
}

func (m ApiHandler) simulateIntraday(c *gin.Context) {
	ctx, profile, endProfile := requestContext(c)

	var requestBody SimulateIntradayRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to parse request: %w", err), c, 400)
		return
	}

	bars, err := toDomainBars(requestBody.Bars)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	cfg := m.IntradayConfig
	if requestBody.MaxTransactions != nil {
		cfg.MaxTransactions = *requestBody.MaxTransactions
	}
	if requestBody.MaxVolumeFraction != nil {
		cfg.MaxVolumeFraction = *requestBody.MaxVolumeFraction
	}

	_, endSpan := profile.StartNewSpan("intraday run")
	result, err := l3_service.NewIntradayStrategyService(cfg).Run(ctx, l3_service.IntradayRunInput{
		Bars:           bars,
		InitialCapital: requestBody.InitialCapital,
	})
	endSpan()
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	endProfile()

	c.JSON(200, SimulateIntradayResponse{
		RunID:          result.RunID,
		Transactions:   toTransactionResponse(result.Transactions),
		InitialCapital: result.InitialCapital,
		FinalCapital:   result.FinalCapital,
		BarsProcessed:  result.BarsProcessed,
		Profile:        profile,
	})
}
