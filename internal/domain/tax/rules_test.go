package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testRules() Rules {
	return Rules{
		SocialSecurityRate: d("0.03"),
		Schedule: Schedule{
			Version: "TEST",
			Bands: []Band{
				{LowerBound: d("0"), Rate: d("0"), FixedDeduction: d("0")},
				{LowerBound: d("100000"), Rate: d("0.13"), FixedDeduction: d("13000")},
				{LowerBound: d("150000"), Rate: d("0.16"), FixedDeduction: d("11500")},
			},
		},
		Exemptions: Exemptions{
			ComponentFood:      {Ceiling: d("30000")},
			ComponentTransport: {Ceiling: d("30000")},
			ComponentFamily:    {FullyExempt: true},
		},
	}
}

func TestSocialSecurityWithholding(t *testing.T) {
	r := testRules()

	assert.True(t, r.SocialSecurityWithholding(d("140000")).Equal(d("4200")))
	assert.True(t, r.SocialSecurityWithholding(d("0")).IsZero())
	assert.True(t, r.SocialSecurityWithholding(d("-500")).IsZero())
}

func TestSocialSecurityWithholding_NeverExceedsBase(t *testing.T) {
	r := testRules()
	r.SocialSecurityRate = d("1")
	assert.True(t, r.SocialSecurityWithholding(d("10")).Equal(d("10")))
}

func TestIncomeTaxWithholding_ExemptBelowThreshold(t *testing.T) {
	r := testRules()
	irt := r.IncomeTaxWithholding(d("90000"), d("2700"), nil)
	assert.True(t, irt.IsZero())
}

func TestIncomeTaxWithholding_AppliesBracketAndExemptions(t *testing.T) {
	r := testRules()
	components := Components{
		ComponentFood:      d("15000"),
		ComponentTransport: d("10000"),
	}

	// 165000 - 25000 exempt - 4200 INSS = 135800 -> 13% - 13000
	base := r.IncomeTaxBase(d("165000"), d("4200"), components)
	assert.True(t, base.Equal(d("135800")), base.String())

	irt := r.IncomeTaxWithholding(d("165000"), d("4200"), components)
	assert.True(t, irt.Equal(d("4654")), irt.String())
}

func TestIncomeTaxWithholding_CeilingCapsExemption(t *testing.T) {
	r := testRules()
	components := Components{ComponentFood: d("50000")}

	assert.True(t, r.ExemptAmount(components).Equal(d("30000")))
}

func TestIncomeTaxWithholding_UnlistedComponentIsTaxable(t *testing.T) {
	r := testRules()
	components := Components{ComponentHousing: d("20000"), ComponentFamily: d("7000")}

	assert.True(t, r.ExemptAmount(components).Equal(d("7000")))
}

func TestIncomeTaxWithholding_BandBoundaryBelongsToLowerBand(t *testing.T) {
	r := testRules()
	// exactly 150000 stays in the 13% band
	irt := r.IncomeTaxWithholding(d("150000"), d("0"), nil)
	assert.True(t, irt.Equal(d("6500")), irt.String())

	irt = r.IncomeTaxWithholding(d("150001"), d("0"), nil)
	assert.True(t, irt.Equal(d("12500.16")), irt.String())
}

func TestIncomeTaxWithholding_ClampsNegativeBase(t *testing.T) {
	r := testRules()
	irt := r.IncomeTaxWithholding(d("1000"), d("5000"), Components{ComponentFamily: d("3000")})
	assert.True(t, irt.IsZero())
}

func TestSchedule_Validate(t *testing.T) {
	require.NoError(t, testRules().Validate())

	s := Schedule{}
	assert.ErrorIs(t, s.Validate(), ErrEmptySchedule)

	s = Schedule{Bands: []Band{{LowerBound: d("10")}}}
	assert.ErrorIs(t, s.Validate(), ErrScheduleNotFromZero)

	s = Schedule{Bands: []Band{{LowerBound: d("0"), Rate: d("1.5")}}}
	assert.ErrorIs(t, s.Validate(), ErrInvalidRate)

	s = Schedule{Bands: []Band{{LowerBound: d("0")}, {LowerBound: d("0")}}}
	assert.ErrorIs(t, s.Validate(), ErrBandsNotAscending)

	s = Schedule{Bands: []Band{{LowerBound: d("0"), FixedDeduction: d("-1")}}}
	assert.ErrorIs(t, s.Validate(), ErrNegativeDeduction)
}
