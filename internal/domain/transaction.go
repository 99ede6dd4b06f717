package domain

import (
	"fmt"
	"time"
)

type Side string

const (
	Side_Buy  Side = "buy"
	Side_Sell Side = "sell"
)

// PriceType names the OHLC field a trade executed at
type PriceType string

const (
	PriceType_Open  PriceType = "open"
	PriceType_High  PriceType = "high"
	PriceType_Low   PriceType = "low"
	PriceType_Close PriceType = "close"
)

// Action is the transaction label, e.g. "buy-close" or "sell-high"
type Action string

func NewAction(side Side, priceType PriceType) Action {
	return Action(fmt.Sprintf("%s-%s", side, priceType))
}

type TransactionRecord struct {
	Date         time.Time `json:"date"`
	Action       Action    `json:"action"`
	InstrumentID string    `json:"instrumentID"`
	Units        int64     `json:"units"`
}

// BuyRow is one line of the buy-side working table. Cost is at execution
// price (fee included), CostAtClose values the same units at the close
type BuyRow struct {
	Bar         PriceBar `json:"bar"`
	Weight      float64  `json:"weight"`
	UnitsBought int64    `json:"unitsBought"`
	Cost        float64  `json:"cost"`
	CostAtClose float64  `json:"costAtClose"`
}

type SellRow struct {
	Bar             PriceBar `json:"bar"`
	UnitsSold       int64    `json:"unitsSold"`
	Proceeds        float64  `json:"proceeds"`
	ProceedsAtClose float64  `json:"proceedsAtClose"`
}
