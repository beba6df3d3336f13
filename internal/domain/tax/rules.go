package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Validate checks the schedule shape. Rules with an invalid schedule must not
// be used for withholding.
func (s Schedule) Validate() error {
	if len(s.Bands) == 0 {
		return ErrEmptySchedule
	}
	if !s.Bands[0].LowerBound.IsZero() {
		return ErrScheduleNotFromZero
	}
	for i, b := range s.Bands {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return fmt.Errorf("band %d: %w", i, ErrInvalidRate)
		}
		if b.FixedDeduction.IsNegative() {
			return fmt.Errorf("band %d: %w", i, ErrNegativeDeduction)
		}
		if i > 0 && !b.LowerBound.GreaterThan(s.Bands[i-1].LowerBound) {
			return fmt.Errorf("band %d: %w", i, ErrBandsNotAscending)
		}
	}
	return nil
}

// BandFor returns the band containing amount.
func (s Schedule) BandFor(amount decimal.Decimal) Band {
	band := s.Bands[0]
	for _, b := range s.Bands[1:] {
		if amount.GreaterThan(b.LowerBound) {
			band = b
		}
	}
	return band
}

func (r Rules) Validate() error {
	if r.SocialSecurityRate.IsNegative() || r.SocialSecurityRate.GreaterThan(one) {
		return fmt.Errorf("social security: %w", ErrInvalidRate)
	}
	for c, e := range r.Exemptions {
		if e.Ceiling.IsNegative() {
			return fmt.Errorf("%s: %w", c, ErrNegativeCeiling)
		}
	}
	return r.Schedule.Validate()
}

// SocialSecurityWithholding is the INSS employee share of taxableBase.
// The result is never negative and never exceeds taxableBase.
func (r Rules) SocialSecurityWithholding(taxableBase decimal.Decimal) decimal.Decimal {
	if !taxableBase.IsPositive() {
		return decimal.Zero
	}
	amount := taxableBase.Mul(r.SocialSecurityRate).Round(2)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, taxableBase)
}

// ExemptPortion is the part of amount excluded from the IRT base.
func (e Exemption) ExemptPortion(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	if e.FullyExempt {
		return amount
	}
	return decimal.Min(amount, decimal.Max(e.Ceiling, decimal.Zero))
}

// ExemptAmount sums the exempt portions of every component.
func (r Rules) ExemptAmount(components Components) decimal.Decimal {
	total := decimal.Zero
	for c, amount := range components {
		if e, ok := r.Exemptions[c]; ok {
			total = total.Add(e.ExemptPortion(amount))
		}
	}
	return total
}

// IncomeTaxBase is gross minus exempt components minus INSS, floored at zero.
func (r Rules) IncomeTaxBase(grossBeforeTax, socialSecurity decimal.Decimal, components Components) decimal.Decimal {
	base := grossBeforeTax.Sub(r.ExemptAmount(components)).Sub(decimal.Max(socialSecurity, decimal.Zero))
	return decimal.Max(base, decimal.Zero)
}

// IncomeTaxWithholding applies the progressive IRT schedule. Negative
// intermediates clamp to zero instead of producing a negative tax.
func (r Rules) IncomeTaxWithholding(grossBeforeTax, socialSecurity decimal.Decimal, components Components) decimal.Decimal {
	if len(r.Schedule.Bands) == 0 {
		return decimal.Zero
	}
	base := r.IncomeTaxBase(grossBeforeTax, socialSecurity, components)
	if base.IsZero() {
		return decimal.Zero
	}
	band := r.Schedule.BandFor(base)
	amount := base.Mul(band.Rate).Sub(band.FixedDeduction).Round(2)
	return decimal.Max(amount, decimal.Zero)
}
