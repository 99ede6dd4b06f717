package l1_service

import (
	"fmt"
	"math"

	"stocktrader/internal/domain"

	"github.com/shopspring/decimal"
)

// sizing happens in float64, so a trade sized to exactly the available
// capital can come out an ulp too expensive
var debitTolerance = decimal.New(1, -9)

// CapitalLedger tracks the cash a strategy run can spend. amounts come in
// as float64 but are accumulated as decimals, so every debit and credit
// moves the balance by exactly the recorded amount
type CapitalLedger struct {
	initial       decimal.Decimal
	available     decimal.Decimal
	floor         decimal.Decimal
	totalCost     decimal.Decimal
	totalProceeds decimal.Decimal
}

// NewCapitalLedger starts a ledger with the given capital. buying stops
// once the balance drops below floorFraction * initial; a zero fraction
// means buying is allowed while any capital is left
func NewCapitalLedger(initial float64, floorFraction float64) (*CapitalLedger, error) {
	if !isFinite(initial) || initial < 0 {
		return nil, fmt.Errorf("%w: initial capital must be a non-negative number, got %f", domain.ErrInvalidInput, initial)
	}
	if !isFinite(floorFraction) || floorFraction < 0 || floorFraction > 1 {
		return nil, fmt.Errorf("%w: floor fraction must be in [0, 1], got %f", domain.ErrInvalidInput, floorFraction)
	}

	start := decimal.NewFromFloat(initial)
	return &CapitalLedger{
		initial:       start,
		available:     start,
		floor:         start.Mul(decimal.NewFromFloat(floorFraction)),
		totalCost:     decimal.Zero,
		totalProceeds: decimal.Zero,
	}, nil
}

func (l CapitalLedger) CanBuy() bool {
	return l.available.IsPositive() && l.available.GreaterThanOrEqual(l.floor)
}

func (l CapitalLedger) Available() float64 {
	return l.available.InexactFloat64()
}

func (l CapitalLedger) AvailableDecimal() decimal.Decimal {
	return l.available
}

func (l CapitalLedger) Initial() float64 {
	return l.initial.InexactFloat64()
}

func (l CapitalLedger) Floor() float64 {
	return l.floor.InexactFloat64()
}

func (l CapitalLedger) TotalCost() decimal.Decimal {
	return l.totalCost
}

func (l CapitalLedger) TotalProceeds() decimal.Decimal {
	return l.totalProceeds
}

// Debit takes amount out of the available capital. the caller sizes the
// trade; a debit that would leave a negative balance is rejected
func (l *CapitalLedger) Debit(amount float64) error {
	if !isFinite(amount) || amount < 0 {
		return fmt.Errorf("%w: cannot debit %f", domain.ErrInvalidInput, amount)
	}
	d := decimal.NewFromFloat(amount)
	if d.GreaterThan(l.available) {
		if d.Sub(l.available).GreaterThan(debitTolerance) {
			return fmt.Errorf("%w: debit %s exceeds available %s", domain.ErrInsufficientCapital, d.String(), l.available.String())
		}
		d = l.available
	}

	l.available = l.available.Sub(d)
	l.totalCost = l.totalCost.Add(d)
	return nil
}

func (l *CapitalLedger) Credit(amount float64) error {
	if !isFinite(amount) || amount < 0 {
		return fmt.Errorf("%w: cannot credit %f", domain.ErrInvalidInput, amount)
	}
	d := decimal.NewFromFloat(amount)
	l.available = l.available.Add(d)
	l.totalProceeds = l.totalProceeds.Add(d)
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
