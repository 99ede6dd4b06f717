package domain

import "time"

// PerformanceRecord summarizes how an instrument did over a period. it is
// only used for ranking and weighting
type PerformanceRecord struct {
	InstrumentID string    `json:"instrumentID"`
	TotalReturn  float64   `json:"totalReturn"`
	TotalYears   float64   `json:"totalYears"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
}

type InvestmentWeight struct {
	InstrumentID string  `json:"instrumentID"`
	Weight       float64 `json:"weight"`
}

type WeightTable map[string]float64

func NewWeightTable(weights []InvestmentWeight) WeightTable {
	out := WeightTable{}
	for _, w := range weights {
		out[w.InstrumentID] = w.Weight
	}
	return out
}

// Get returns 0 for unknown instruments, which excludes them from buying
func (t WeightTable) Get(instrumentID string) float64 {
	return t[instrumentID]
}
