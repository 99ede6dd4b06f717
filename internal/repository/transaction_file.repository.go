package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"stocktrader/internal/domain"
	"stocktrader/internal/util"

	"github.com/gocarina/gocsv"
)

type TransactionFileRepository interface {
	// Write replaces path with the log: a count line, then one
	// space separated line per record
	Write(path string, records []domain.TransactionRecord) error
}

type transactionLine struct {
	Date         string `csv:"date"`
	Action       string `csv:"action"`
	InstrumentID string `csv:"instrument"`
	Units        int64  `csv:"units"`
}

type undatedTransactionLine struct {
	Action       string `csv:"action"`
	InstrumentID string `csv:"instrument"`
	Units        int64  `csv:"units"`
}

type transactionFileRepositoryHandler struct {
	IncludeDate bool
}

func NewTransactionFileRepository(includeDate bool) TransactionFileRepository {
	return transactionFileRepositoryHandler{
		IncludeDate: includeDate,
	}
}

func (h transactionFileRepositoryHandler) Write(path string, records []domain.TransactionRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n", len(records)); err != nil {
		return fmt.Errorf("failed to write transaction count: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = ' '
	out := gocsv.NewSafeCSVWriter(w)

	if h.IncludeDate {
		lines := make([]transactionLine, 0, len(records))
		for _, r := range records {
			lines = append(lines, transactionLine{
				Date:         util.FormatDate(r.Date),
				Action:       string(r.Action),
				InstrumentID: r.InstrumentID,
				Units:        r.Units,
			})
		}
		err = gocsv.MarshalCSVWithoutHeaders(&lines, out)
	} else {
		lines := make([]undatedTransactionLine, 0, len(records))
		for _, r := range records {
			lines = append(lines, undatedTransactionLine{
				Action:       string(r.Action),
				InstrumentID: r.InstrumentID,
				Units:        r.Units,
			})
		}
		err = gocsv.MarshalCSVWithoutHeaders(&lines, out)
	}
	if err != nil {
		return fmt.Errorf("failed to write transactions to %s: %w", path, err)
	}

	return nil
}
