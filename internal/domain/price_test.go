package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestNewInstrumentSeries(t *testing.T) {
	t.Run("sorts bars", func(t *testing.T) {
		s, err := NewInstrumentSeries("AAA", []PriceBar{
			{Date: date(1990, 1, 3), InstrumentID: "AAA"},
			{Date: date(1990, 1, 2), InstrumentID: "AAA"},
			{Date: date(1990, 1, 4), InstrumentID: "AAA"},
		})
		require.NoError(t, err)
		require.Equal(t, date(1990, 1, 2), s.First().Date)
		require.Equal(t, date(1990, 1, 4), s.Last().Date)
		require.Len(t, s.Between(date(1990, 1, 3), time.Time{}), 2)
		require.Len(t, s.Between(time.Time{}, date(1990, 1, 3)), 2)
	})

	t.Run("foreign bar", func(t *testing.T) {
		_, err := NewInstrumentSeries("AAA", []PriceBar{{Date: date(1990, 1, 2), InstrumentID: "BBB"}})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSortBarsByDateAndInstrument(t *testing.T) {
	bars := []PriceBar{
		{Date: date(1990, 1, 3), InstrumentID: "AAA"},
		{Date: date(1990, 1, 2), InstrumentID: "BBB"},
		{Date: date(1990, 1, 2), InstrumentID: "AAA"},
	}
	SortBarsByDateAndInstrument(bars)
	require.Equal(t, "AAA", bars[0].InstrumentID)
	require.Equal(t, "BBB", bars[1].InstrumentID)
	require.Equal(t, date(1990, 1, 3), bars[2].Date)
}

func TestProfile(t *testing.T) {
	profile, endProfile := NewProfile()
	_, endSpan := profile.StartNewSpan("load prices")
	endSpan()
	profile.StartNewSpan("run")
	endProfile()

	require.Len(t, profile.Spans, 2)
	for _, s := range profile.Spans {
		require.NotNil(t, s.ElapsedMs)
	}
	require.NotNil(t, profile.TotalMs)
}
