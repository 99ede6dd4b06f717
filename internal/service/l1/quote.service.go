package l1_service

import (
	"stocktrader/internal/domain"
)

// DefaultFeeRate is the transaction fee charged as a fraction of the
// execution price
const DefaultFeeRate = 0.01

type Quote struct {
	Price float64
	Type  domain.PriceType
}

// ResolveBuyPrice picks the lowest of close, low and open, preferring
// that order on ties, and adds the fee. ok is false when no field
// qualifies, which only happens with NaN prices
func ResolveBuyPrice(bar domain.PriceBar, feeRate float64) (quote Quote, ok bool) {
	var (
		price     float64
		priceType domain.PriceType
	)
	switch {
	case bar.Close <= bar.Low && bar.Close <= bar.Open:
		price, priceType = bar.Close, domain.PriceType_Close
	case bar.Low <= bar.Close && bar.Low <= bar.Open:
		price, priceType = bar.Low, domain.PriceType_Low
	case bar.Open <= bar.Close && bar.Open <= bar.Low:
		price, priceType = bar.Open, domain.PriceType_Open
	default:
		return Quote{}, false
	}

	return Quote{
		Price: price + feeRate*price,
		Type:  priceType,
	}, true
}

// ResolveSellPrice is the mirror of ResolveBuyPrice: highest of close,
// high and open, fee taken off
func ResolveSellPrice(bar domain.PriceBar, feeRate float64) (quote Quote, ok bool) {
	var (
		price     float64
		priceType domain.PriceType
	)
	switch {
	case bar.Close >= bar.High && bar.Close >= bar.Open:
		price, priceType = bar.Close, domain.PriceType_Close
	case bar.High >= bar.Close && bar.High >= bar.Open:
		price, priceType = bar.High, domain.PriceType_High
	case bar.Open >= bar.Close && bar.Open >= bar.High:
		price, priceType = bar.Open, domain.PriceType_Open
	default:
		return Quote{}, false
	}

	return Quote{
		Price: price - feeRate*price,
		Type:  priceType,
	}, true
}

// IntradayQuotes returns the round-trip prices used by the intra-day
// strategy: buy at min(open, low), sell at max(high, close), no fee.
// ties go to low and high
func IntradayQuotes(bar domain.PriceBar) (buy Quote, sell Quote) {
	buy = Quote{Price: bar.Low, Type: domain.PriceType_Low}
	if bar.Open < bar.Low {
		buy = Quote{Price: bar.Open, Type: domain.PriceType_Open}
	}
	sell = Quote{Price: bar.High, Type: domain.PriceType_High}
	if bar.Close > bar.High {
		sell = Quote{Price: bar.Close, Type: domain.PriceType_Close}
	}
	return buy, sell
}
