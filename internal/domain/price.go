package domain

import (
	"fmt"
	"sort"
	"time"
)

// PriceBar is one day's OHLCV record for one instrument
type PriceBar struct {
	Date         time.Time `json:"date"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       float64   `json:"volume"`
	InstrumentID string    `json:"instrumentID"`
}

// InstrumentSeries holds the bars of a single instrument, ascending by date
type InstrumentSeries struct {
	InstrumentID string
	Bars         []PriceBar
}

func NewInstrumentSeries(instrumentID string, bars []PriceBar) (*InstrumentSeries, error) {
	sorted := make([]PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	for i := range sorted {
		if sorted[i].InstrumentID != instrumentID {
			return nil, fmt.Errorf("%w: bar for %s found in series of %s", ErrInvalidInput, sorted[i].InstrumentID, instrumentID)
		}
		if i > 0 && sorted[i].Date.Equal(sorted[i-1].Date) {
			return nil, fmt.Errorf("%w: duplicate date %s for %s", ErrInvalidInput, sorted[i].Date.Format(time.DateOnly), instrumentID)
		}
	}

	return &InstrumentSeries{
		InstrumentID: instrumentID,
		Bars:         sorted,
	}, nil
}

func (s InstrumentSeries) First() PriceBar {
	return s.Bars[0]
}

func (s InstrumentSeries) Last() PriceBar {
	return s.Bars[len(s.Bars)-1]
}

// Between returns the bars with start <= Date <= end. zero bounds are open
func (s InstrumentSeries) Between(start, end time.Time) []PriceBar {
	out := []PriceBar{}
	for _, b := range s.Bars {
		if !start.IsZero() && b.Date.Before(start) {
			continue
		}
		if !end.IsZero() && b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// SortBarsByDate orders bars chronologically, keeping input order for
// bars on the same day
func SortBarsByDate(bars []PriceBar) {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
}

// SortBarsByDateAndInstrument is the ordering used by the intra-day strategy
func SortBarsByDateAndInstrument(bars []PriceBar) {
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].Date.Equal(bars[j].Date) {
			return bars[i].InstrumentID < bars[j].InstrumentID
		}
		return bars[i].Date.Before(bars[j].Date)
	})
}
