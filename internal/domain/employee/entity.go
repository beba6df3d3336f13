package employee

import (
	"github.com/shopspring/decimal"
)

// Employee is the read-only view of an employee record needed by payroll.
// Compensation fields are the defaults used when a period has no overrides.
type Employee struct {
	ID               string
	Name             string
	Role             string
	BaseSalary       decimal.Decimal
	Complement       decimal.Decimal
	FoodSubsidy      decimal.Decimal
	TransportSubsidy decimal.Decimal
	FamilySubsidy    decimal.Decimal
	HousingSubsidy   decimal.Decimal
	VacationSubsidy  decimal.Decimal
	ChristmasSubsidy decimal.Decimal
}

// Validate rejects negative compensation values coming from the record store.
func (e Employee) Validate() error {
	fields := map[string]decimal.Decimal{
		"base_salary":       e.BaseSalary,
		"complement":        e.Complement,
		"food_subsidy":      e.FoodSubsidy,
		"transport_subsidy": e.TransportSubsidy,
		"family_subsidy":    e.FamilySubsidy,
		"housing_subsidy":   e.HousingSubsidy,
		"vacation_subsidy":  e.VacationSubsidy,
		"christmas_subsidy": e.ChristmasSubsidy,
	}
	for name, v := range fields {
		if v.IsNegative() {
			return &NegativeCompensationError{EmployeeID: e.ID, Field: name}
		}
	}
	return nil
}
