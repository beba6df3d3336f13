package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// Component names a subsidy line that may be (partly) exempt from IRT.
type Component string

const (
	ComponentFood      Component = "food"
	ComponentTransport Component = "transport"
	ComponentFamily    Component = "family"
	ComponentHousing   Component = "housing"
	ComponentVacation  Component = "vacation"
	ComponentChristmas Component = "christmas"
)

// Components holds the subsidy amounts of one slip, keyed by component.
type Components map[Component]decimal.Decimal

// Band is one bracket of the progressive IRT schedule. A band covers taxable
// amounts strictly above LowerBound up to the next band's LowerBound; the first
// band also covers zero.
type Band struct {
	LowerBound     decimal.Decimal
	Rate           decimal.Decimal
	FixedDeduction decimal.Decimal
}

// Schedule is a versioned IRT band table.
type Schedule struct {
	Version       string
	EffectiveFrom time.Time
	Bands         []Band
}

// Exemption describes how much of a component is excluded from the IRT base.
type Exemption struct {
	FullyExempt bool
	Ceiling     decimal.Decimal
}

// Exemptions is keyed by component; components without an entry are taxable.
type Exemptions map[Component]Exemption

// Rules bundles everything needed to compute INSS and IRT for a slip.
type Rules struct {
	SocialSecurityRate decimal.Decimal
	Schedule           Schedule
	Exemptions         Exemptions
}
