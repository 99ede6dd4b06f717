package l1_service

import (
	"math"
	"testing"

	"stocktrader/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestResolveBuyPrice(t *testing.T) {
	t.Run("close wins a three way tie", func(t *testing.T) {
		q, ok := ResolveBuyPrice(domain.PriceBar{Open: 5, High: 7, Low: 5, Close: 5}, 0.01)
		require.True(t, ok)
		require.Equal(t, domain.PriceType_Close, q.Type)
		require.InDelta(t, 5.05, q.Price, 1e-12)
	})

	t.Run("close wins a tie with low", func(t *testing.T) {
		q, ok := ResolveBuyPrice(domain.PriceBar{Open: 10, High: 11, Low: 9, Close: 9}, 0.01)
		require.True(t, ok)
		require.Equal(t, domain.PriceType_Close, q.Type)
		require.InDelta(t, 9.09, q.Price, 1e-12)
	})

	t.Run("low below close and open", func(t *testing.T) {
		q, ok := ResolveBuyPrice(domain.PriceBar{Open: 10, High: 12, Low: 8, Close: 11}, 0)
		require.True(t, ok)
		require.Equal(t, domain.PriceType_Low, q.Type)
		require.Equal(t, 8.0, q.Price)
	})

	t.Run("open when low is stale", func(t *testing.T) {
		q, ok := ResolveBuyPrice(domain.PriceBar{Open: 7, High: 12, Low: 8, Close: 11}, 0)
		require.True(t, ok)
		require.Equal(t, domain.PriceType_Open, q.Type)
		require.Equal(t, 7.0, q.Price)
	})

	t.Run("nan prices are skipped", func(t *testing.T) {
		_, ok := ResolveBuyPrice(domain.PriceBar{Open: math.NaN(), Low: math.NaN(), Close: math.NaN()}, 0.01)
		require.False(t, ok)
	})

	t.Run("idempotent", func(t *testing.T) {
		bar := domain.PriceBar{Open: 3.2, High: 4, Low: 3.1, Close: 3.3}
		q1, _ := ResolveBuyPrice(bar, 0.01)
		q2, _ := ResolveBuyPrice(bar, 0.01)
		require.Equal(t, q1, q2)
	})
}

func TestResolveSellPrice(t *testing.T) {
	t.Run("close wins a three way tie", func(t *testing.T) {
		q, ok := ResolveSellPrice(domain.PriceBar{Open: 5, High: 5, Low: 4, Close: 5}, 0.01)
		require.True(t, ok)
		require.Equal(t, domain.PriceType_Close, q.Type)
		require.InDelta(t, 4.95, q.Price, 1e-12)
	})

	t.Run("high above close and open", func(t *testing.T) {
		q, ok := ResolveSellPrice(domain.PriceBar{Open: 10, High: 15, Low: 8, Close: 12}, 0.01)
		require.True(t, ok)
		require.Equal(t, domain.PriceType_High, q.Type)
		require.InDelta(t, 14.85, q.Price, 1e-12)
	})

	t.Run("open above stale high", func(t *testing.T) {
		q, ok := ResolveSellPrice(domain.PriceBar{Open: 16, High: 15, Low: 8, Close: 12}, 0)
		require.True(t, ok)
		require.Equal(t, domain.PriceType_Open, q.Type)
		require.Equal(t, 16.0, q.Price)
	})
}

func TestIntradayQuotes(t *testing.T) {
	t.Run("low and high", func(t *testing.T) {
		buy, sell := IntradayQuotes(domain.PriceBar{Open: 10, High: 15, Low: 8, Close: 12})
		require.Equal(t, Quote{Price: 8, Type: domain.PriceType_Low}, buy)
		require.Equal(t, Quote{Price: 15, Type: domain.PriceType_High}, sell)
	})

	t.Run("open and close outside the range", func(t *testing.T) {
		buy, sell := IntradayQuotes(domain.PriceBar{Open: 7, High: 15, Low: 8, Close: 16})
		require.Equal(t, Quote{Price: 7, Type: domain.PriceType_Open}, buy)
		require.Equal(t, Quote{Price: 16, Type: domain.PriceType_Close}, sell)
	})
}
