package l1_service

import (
	"testing"

	"stocktrader/internal/domain"
	"stocktrader/internal/util"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestAggregateTransactions(t *testing.T) {
	d1 := util.NewDate(1962, 1, 2)
	d2 := util.NewDate(1979, 12, 31)

	t.Run("merges same day, action and instrument", func(t *testing.T) {
		log := NewTransactionLog(8)
		log.Append(domain.TransactionRecord{Date: d1, Action: "buy-close", InstrumentID: "AAA", Units: 5})
		log.Append(domain.TransactionRecord{Date: d1, Action: "buy-low", InstrumentID: "BBB", Units: 2})
		log.Append(domain.TransactionRecord{Date: d1, Action: "buy-close", InstrumentID: "AAA", Units: 3})
		log.Append(domain.TransactionRecord{Date: d2, Action: "sell-high", InstrumentID: "AAA", Units: 8})

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.TransactionRecord{
					{Date: d1, Action: "buy-close", InstrumentID: "AAA", Units: 8},
					{Date: d1, Action: "buy-low", InstrumentID: "BBB", Units: 2},
					{Date: d2, Action: "sell-high", InstrumentID: "AAA", Units: 8},
				},
				log.Aggregated(),
			),
		)
		require.Equal(t, 4, log.Len())
	})

	t.Run("drops zero unit rows and sorts by date", func(t *testing.T) {
		out := AggregateTransactions([]domain.TransactionRecord{
			{Date: d2, Action: "sell-close", InstrumentID: "CCC", Units: 0},
			{Date: d2, Action: "sell-high", InstrumentID: "AAA", Units: 4},
			{Date: d1, Action: "buy-open", InstrumentID: "AAA", Units: 4},
		})

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.TransactionRecord{
					{Date: d1, Action: "buy-open", InstrumentID: "AAA", Units: 4},
					{Date: d2, Action: "sell-high", InstrumentID: "AAA", Units: 4},
				},
				out,
			),
		)
	})

	t.Run("unit totals survive aggregation", func(t *testing.T) {
		raw := []domain.TransactionRecord{}
		for i := 0; i < 20; i++ {
			raw = append(raw, domain.TransactionRecord{Date: d1, Action: "buy-low", InstrumentID: "AAA", Units: int64(i)})
		}
		out := AggregateTransactions(raw)
		require.Len(t, out, 1)
		require.Equal(t, int64(190), out[0].Units)
	})
}
