package l1_service

import (
	"sort"

	"stocktrader/internal/domain"
)

// TransactionLog collects trades in the order a strategy makes them
type TransactionLog struct {
	records []domain.TransactionRecord
}

func NewTransactionLog(capacity int) *TransactionLog {
	return &TransactionLog{
		records: make([]domain.TransactionRecord, 0, capacity),
	}
}

func (l *TransactionLog) Append(record domain.TransactionRecord) {
	l.records = append(l.records, record)
}

func (l TransactionLog) Len() int {
	return len(l.records)
}

func (l TransactionLog) Records() []domain.TransactionRecord {
	out := make([]domain.TransactionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Aggregated is AggregateTransactions over the log contents
func (l TransactionLog) Aggregated() []domain.TransactionRecord {
	return AggregateTransactions(l.records)
}

type aggregateKey struct {
	day          int64
	action       domain.Action
	instrumentID string
}

// AggregateTransactions merges records sharing (Date, Action, InstrumentID)
// by summing units, drops rows that end up with zero units and orders the
// result by date. rows on the same date keep the order in which their key
// was first seen
func AggregateTransactions(records []domain.TransactionRecord) []domain.TransactionRecord {
	index := make(map[aggregateKey]int, len(records))
	merged := make([]domain.TransactionRecord, 0, len(records))

	for _, r := range records {
		key := aggregateKey{
			day:          r.Date.Unix(),
			action:       r.Action,
			instrumentID: r.InstrumentID,
		}
		if i, ok := index[key]; ok {
			merged[i].Units += r.Units
			continue
		}
		index[key] = len(merged)
		merged = append(merged, r)
	}

	out := make([]domain.TransactionRecord, 0, len(merged))
	for _, r := range merged {
		if r.Units != 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	return out
}
