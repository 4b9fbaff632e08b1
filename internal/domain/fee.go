package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeSettings is the admin-configured fee schedule for mobile money payouts.
// The engine treats it as read-only; a single row is active at any time.
type FeeSettings struct {
	ID                string
	MobileMoneyFeePct decimal.Decimal
	MinimumFee        decimal.Decimal
	MaximumFee        decimal.Decimal
	Active            bool
	CreatedAt         time.Time
}

var oneHundred = decimal.NewFromInt(100)

// ComputeFee returns the provider fee for amount under settings.
//
// The fee starts as a percentage of the amount. A configured minimum floors
// it, otherwise a configured maximum caps it. Zero min/max means the bound is
// disabled. The result is rounded to 2 decimal places, the minor-unit
// precision of the supported currencies.
func ComputeFee(amount decimal.Decimal, settings *FeeSettings) (decimal.Decimal, error) {
	if settings == nil {
		return decimal.Zero, ErrNoActiveFeeSettings
	}

	fee := amount.Mul(settings.MobileMoneyFeePct).Div(oneHundred)

	if settings.MinimumFee.IsPositive() && fee.LessThan(settings.MinimumFee) {
		fee = settings.MinimumFee
	} else if settings.MaximumFee.IsPositive() && fee.GreaterThan(settings.MaximumFee) {
		fee = settings.MaximumFee
	}

	return fee.Round(2), nil
}
