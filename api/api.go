package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stocktrader/internal/domain"
	"stocktrader/internal/logger"
	l3_service "stocktrader/internal/service/l3"
	"stocktrader/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	WindowedConfig l3_service.WindowedStrategyConfig
	IntradayConfig l3_service.IntradayStrategyConfig
	Logger         *zap.SugaredLogger
}

const requestLoggerKey = "requestLogger"

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to stocktrader"})
	})
	router.POST("/simulate/windowed", m.simulateWindowed)
	router.POST("/simulate/intraday", m.simulateIntraday)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

// statusForError maps domain errors onto http codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnprofitableRun):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, statusForError(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	requestLogger(c).Errorw("request failed", "error", err.Error(), "status", code)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	lg := m.Logger
	if lg == nil {
		lg = logger.New()
	}
	lg = lg.With("requestID", uuid.New().String())
	c.Set(requestLoggerKey, lg)

	start := time.Now()
	c.Next()

	lg.Infow(
		"handled request",
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}

func requestLogger(c *gin.Context) *zap.SugaredLogger {
	if v, ok := c.Get(requestLoggerKey); ok {
		if lg, ok := v.(*zap.SugaredLogger); ok {
			return lg
		}
	}
	return zap.S()
}

// requestContext carries the request logger and a fresh profile into the
// service layer
func requestContext(c *gin.Context) (context.Context, *domain.Profile, func()) {
	profile, endProfile := domain.NewProfile()
	ctx := logger.WithLogger(c.Request.Context(), requestLogger(c))
	ctx = context.WithValue(ctx, domain.ContextProfileKey, profile)
	return ctx, profile, endProfile
}

type priceBarRequest struct {
	Date         string  `json:"date"`
	Open         float64 `json:"open"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Close        float64 `json:"close"`
	Volume       float64 `json:"volume"`
	InstrumentID string  `json:"instrumentID"`
}

func toDomainBars(in []priceBarRequest) ([]domain.PriceBar, error) {
	out := make([]domain.PriceBar, 0, len(in))
	for i, b := range in {
		date, err := util.ParseDate(b.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bar %d has bad date %q", domain.ErrInvalidInput, i, b.Date)
		}
		if b.InstrumentID == "" {
			return nil, fmt.Errorf("%w: bar %d has no instrumentID", domain.ErrInvalidInput, i)
		}
		out = append(out, domain.PriceBar{
			Date:         date,
			Open:         b.Open,
			High:         b.High,
			Low:          b.Low,
			Close:        b.Close,
			Volume:       b.Volume,
			InstrumentID: b.InstrumentID,
		})
	}
	return out, nil
}

type transactionResponse struct {
	Date         string `json:"date"`
	Action       string `json:"action"`
	InstrumentID string `json:"instrumentID"`
	Units        int64  `json:"units"`
}

func toTransactionResponse(in []domain.TransactionRecord) []transactionResponse {
	out := make([]transactionResponse, 0, len(in))
	for _, t := range in {
		out = append(out, transactionResponse{
			Date:         util.FormatDate(t.Date),
			Action:       string(t.Action),
			InstrumentID: t.InstrumentID,
			Units:        t.Units,
		})
	}
	return out
}
