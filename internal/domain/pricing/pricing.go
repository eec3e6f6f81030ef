package pricing

import (
	"github.com/shopspring/decimal"
)

// Policy holds the two platform fee rates. The acceptance rate prices the
// charge taken from the brand; the release rate re-prices the engagement when
// the brand marks it complete and is what the creator is ultimately paid on.
type Policy struct {
	AcceptanceRate decimal.Decimal
	ReleaseRate    decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		AcceptanceRate: decimal.RequireFromString("0.10"),
		ReleaseRate:    decimal.RequireFromString("0.05"),
	}
}

// Split is a fee breakdown that always sums to Total.
type Split struct {
	Total         decimal.Decimal
	PlatformFee   decimal.Decimal
	CreatorAmount decimal.Decimal
}

// NewSplit rounds the fee to cents and gives the remainder to the creator so
// PlatformFee + CreatorAmount == Total exactly.
func NewSplit(total, rate decimal.Decimal) Split {
	total = total.Round(2)
	fee := total.Mul(rate).Round(2)
	return Split{Total: total, PlatformFee: fee, CreatorAmount: total.Sub(fee)}
}

func (p Policy) AtAcceptance(budget decimal.Decimal) Split { return NewSplit(budget, p.AcceptanceRate) }
func (p Policy) AtRelease(budget decimal.Decimal) Split    { return NewSplit(budget, p.ReleaseRate) }

func (p Policy) Valid() bool {
	one := decimal.NewFromInt(1)
	return !p.AcceptanceRate.IsNegative() && p.AcceptanceRate.LessThan(one) &&
		!p.ReleaseRate.IsNegative() && p.ReleaseRate.LessThan(one)
}
