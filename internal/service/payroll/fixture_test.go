package payroll

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/taxtable"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	effectivenesssvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/effectiveness"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

var may2024 = period.Period{Year: 2024, Month: 5}

type fixture struct {
	employees  *memory.EmployeeRepository
	slips      *memory.SlipRepository
	attendance attendance.AttendanceService
	calculator payroll.Calculator
	service    payroll.PayrollService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	rules, err := taxtable.Default()
	require.NoError(t, err)

	locks := keylock.New()
	employees := memory.NewEmployeeRepository(employee.Employee{
		ID:               "E1",
		Name:             "Ana Domingos",
		Role:             "Contabilista",
		BaseSalary:       d("150000"),
		FoodSubsidy:      d("15000"),
		TransportSubsidy: d("10000"),
	})
	slips := memory.NewSlipRepository()
	gate := effectivenesssvc.NewGate(memory.NewEffectivenessRepository(), slips, locks)
	att := attendancesvc.NewAttendanceService(database.NoopTransactor{}, memory.NewAttendanceRepository(), gate)
	calc := NewCalculator(gate, att, rules)

	return &fixture{
		employees:  employees,
		slips:      slips,
		attendance: att,
		calculator: calc,
		service:    NewPayrollService(slips, employees, calc, locks),
	}
}

// markUnjustified records n unjustified days starting on day 1.
func (f *fixture) markUnjustified(t *testing.T, employeeID string, p period.Period, n int) {
	t.Helper()
	days := make([]attendance.GridDay, 0, n)
	for day := 1; day <= n; day++ {
		days = append(days, attendance.GridDay{Day: day, Classification: attendance.ClassificationUnjustifiedAbsence})
	}
	_, err := f.attendance.RecordGrid(context.Background(), attendance.RecordGridRequest{
		EmployeeID: employeeID,
		Period:     p,
		Fill:       attendance.ClassificationWorked,
		Days:       days,
	})
	require.NoError(t, err)
}

func (f *fixture) finalize(t *testing.T, employeeID string, p period.Period) {
	t.Helper()
	_, err := f.attendance.Finalize(context.Background(), employeeID, p)
	require.NoError(t, err)
}
