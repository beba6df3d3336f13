package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// statutoryMonthDays is the fixed daily-rate divisor, regardless of month length.
var statutoryMonthDays = decimal.NewFromInt(30)

// GateChecker is the part of the effectiveness gate the calculator needs.
type GateChecker interface {
	IsOpen(ctx context.Context, employeeID string, p period.Period) (bool, error)
}

// AttendanceReader is the part of the attendance ledger the calculator needs.
type AttendanceReader interface {
	UnjustifiedCount(ctx context.Context, employeeID string, p period.Period) (int, error)
	ManualSubsidies(ctx context.Context, employeeID string, p period.Period) (*attendance.ManualSubsidies, error)
}

type CalculatorImpl struct {
	gate       GateChecker
	attendance AttendanceReader
	rules      tax.Rules
	now        func() time.Time
}

func NewCalculator(gate GateChecker, attendance AttendanceReader, rules tax.Rules) payroll.Calculator {
	return &CalculatorImpl{
		gate:       gate,
		attendance: attendance,
		rules:      rules,
		now:        time.Now,
	}
}

func pick(values ...*decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return decimal.Zero
}

// Compute implements payroll.Calculator.
func (c *CalculatorImpl) Compute(ctx context.Context, emp employee.Employee, p period.Period, o payroll.Overrides) (payroll.SalarySlip, error) {
	if err := p.Validate(); err != nil {
		return payroll.SalarySlip{}, err
	}
	// 1. gate
	open, err := c.gate.IsOpen(ctx, emp.ID, p)
	if err != nil {
		return payroll.SalarySlip{}, fmt.Errorf("failed to check effectiveness: %w", err)
	}
	if !open {
		return payroll.SalarySlip{}, fmt.Errorf("%w: employee %s, period %s", payroll.ErrGateClosed, emp.ID, p)
	}
	if err := emp.Validate(); err != nil {
		return payroll.SalarySlip{}, err
	}

	// 2. absences
	unjustified, err := c.attendance.UnjustifiedCount(ctx, emp.ID, p)
	if err != nil {
		return payroll.SalarySlip{}, err
	}

	manual, err := c.attendance.ManualSubsidies(ctx, emp.ID, p)
	if err != nil {
		return payroll.SalarySlip{}, err
	}
	var manualFood, manualTransport *decimal.Decimal
	if manual != nil {
		manualFood, manualTransport = &manual.Food, &manual.Transport
	}

	slip := payroll.SalarySlip{
		ID:                 uuid.New().String(),
		EmployeeID:         emp.ID,
		EmployeeName:       emp.Name,
		EmployeeRole:       emp.Role,
		Period:             p,
		BaseSalary:         emp.BaseSalary,
		Complement:         pick(o.Complement, &emp.Complement),
		Bonus:              pick(o.Bonus),
		Advances:           pick(o.Advances),
		UnjustifiedDays:    unjustified,
		Food:               pick(o.Food, manualFood, &emp.FoodSubsidy),
		Transport:          pick(o.Transport, manualTransport, &emp.TransportSubsidy),
		Family:             pick(o.Family, &emp.FamilySubsidy),
		Housing:            pick(o.Housing, &emp.HousingSubsidy),
		Vacation:           pick(o.Vacation, &emp.VacationSubsidy),
		Christmas:          pick(o.Christmas, &emp.ChristmasSubsidy),
		TaxScheduleVersion: c.rules.Schedule.Version,
		CreatedAt:          c.now(),
	}
	slip.UpdatedAt = slip.CreatedAt

	// 3. absence deduction on a 30 day month
	slip.AbsenceDeduction = emp.BaseSalary.Mul(decimal.NewFromInt(int64(unjustified))).Div(statutoryMonthDays).Round(2)

	// 4. taxable base
	taxable := slip.BaseSalary.Add(slip.Complement).Sub(slip.AbsenceDeduction)
	if taxable.IsNegative() {
		slip.Warnings = append(slip.Warnings, payroll.ClampWarning{Field: "taxableBase", Unclamped: taxable, EmployeeID: emp.ID})
		taxable = decimal.Zero
	}
	slip.TaxableBase = taxable

	// 5. INSS
	slip.INSS = c.rules.SocialSecurityWithholding(taxable)

	// 6-7. gross
	slip.GrossTotal = taxable.Add(slip.Bonus).Add(slip.Subsidies())

	// 8. IRT
	slip.IRT = c.rules.IncomeTaxWithholding(slip.GrossTotal, slip.INSS, slip.TaxComponents())

	// 9. net
	net := slip.GrossTotal.Sub(slip.INSS).Sub(slip.IRT).Sub(slip.Advances)
	if net.IsNegative() {
		slip.Warnings = append(slip.Warnings, payroll.ClampWarning{Field: "netTotal", Unclamped: net, EmployeeID: emp.ID})
		net = decimal.Zero
	}
	slip.NetTotal = net

	for _, w := range slip.Warnings {
		slog.Warn("Payroll value clamped to zero",
			"employee_id", emp.ID,
			"period", p.String(),
			"field", w.Field,
			"unclamped", w.Unclamped.StringFixed(2),
		)
	}

	return slip, nil
}
