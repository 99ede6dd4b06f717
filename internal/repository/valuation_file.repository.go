package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"stocktrader/internal/domain"
	"stocktrader/internal/util"

	"github.com/gocarina/gocsv"
)

type ValuationFileRepository interface {
	Write(path string, points []domain.ValuationPoint) error
}

type valuationRow struct {
	Date      string  `csv:"date"`
	Balance   float64 `csv:"balance"`
	Portfolio float64 `csv:"portfolio"`
}

type valuationFileRepositoryHandler struct{}

func NewValuationFileRepository() ValuationFileRepository {
	return valuationFileRepositoryHandler{}
}

func (h valuationFileRepositoryHandler) Write(path string, points []domain.ValuationPoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	rows := make([]valuationRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, valuationRow{
			Date:      util.FormatDate(p.Date),
			Balance:   p.Balance,
			Portfolio: p.Portfolio,
		})
	}

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write valuation to %s: %w", path, err)
	}
	return nil
}
