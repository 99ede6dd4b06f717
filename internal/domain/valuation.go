package domain

import "time"

// ValuationPoint is the account after one buy or sell row. Balance is cash
// at execution prices, Portfolio adds the close-price value of the rows
type ValuationPoint struct {
	Date      time.Time `json:"date"`
	Balance   float64   `json:"balance"`
	Portfolio float64   `json:"portfolio"`
}
