package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	slipRepo     payroll.SlipRepository
	employeeRepo employee.EmployeeRepository
	calculator   payroll.Calculator
	locks        *keylock.Locker
}

func NewPayrollService(
	slipRepo payroll.SlipRepository,
	employeeRepo employee.EmployeeRepository,
	calculator payroll.Calculator,
	locks *keylock.Locker,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		slipRepo:     slipRepo,
		employeeRepo: employeeRepo,
		calculator:   calculator,
		locks:        locks,
	}
}

// Preview implements payroll.PayrollService.
func (s *PayrollServiceImpl) Preview(ctx context.Context, req payroll.ComputeRequest) (payroll.SlipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SlipResponse{}, err
	}

	slip, err := s.compute(ctx, req)
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	return payroll.ToSlipResponse(slip), nil
}

// ComputeAndStore implements payroll.PayrollService.
func (s *PayrollServiceImpl) ComputeAndStore(ctx context.Context, req payroll.ComputeRequest, replace bool) (payroll.SlipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SlipResponse{}, err
	}

	unlock := s.locks.Lock(period.Key(req.EmployeeID, req.Period))
	defer unlock()

	if !replace {
		exists, err := s.slipRepo.Exists(ctx, req.EmployeeID, req.Period)
		if err != nil {
			return payroll.SlipResponse{}, fmt.Errorf("failed to check salary slip: %w", err)
		}
		if exists {
			return payroll.SlipResponse{}, payroll.ErrDuplicatePeriod
		}
	}

	slip, err := s.compute(ctx, req)
	if err != nil {
		return payroll.SlipResponse{}, err
	}

	stored, err := s.store(ctx, slip, replace)
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	return payroll.ToSlipResponse(stored), nil
}

// Store implements payroll.PayrollService. The reviewed slip only supplies
// inputs: withholdings and totals are recomputed under the key lock, so a
// closed gate or a hand-edited INSS/IRT never reaches storage.
func (s *PayrollServiceImpl) Store(ctx context.Context, slip payroll.SalarySlip, replace bool) (payroll.SalarySlip, error) {
	if err := validateSlip(slip); err != nil {
		return payroll.SalarySlip{}, err
	}

	unlock := s.locks.Lock(period.Key(slip.EmployeeID, slip.Period))
	defer unlock()

	emp, err := s.employeeRepo.GetByID(ctx, slip.EmployeeID)
	if err != nil {
		return payroll.SalarySlip{}, err
	}
	computed, err := s.calculator.Compute(ctx, emp, slip.Period, reviewedOverrides(slip))
	if err != nil {
		return payroll.SalarySlip{}, err
	}

	var errs validator.ValidationErrors
	if !slip.BaseSalary.Equal(computed.BaseSalary) {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: fmt.Sprintf("must match the employee record (%s)", computed.BaseSalary.StringFixed(2))})
	}
	if slip.UnjustifiedDays != computed.UnjustifiedDays {
		errs = append(errs, validator.ValidationError{Field: "absences", Message: fmt.Sprintf("must match the finalized attendance (%d)", computed.UnjustifiedDays)})
	}
	if len(errs) > 0 {
		return payroll.SalarySlip{}, errs
	}

	computed.ID = slip.ID
	return s.store(ctx, computed, replace)
}

// reviewedOverrides turns the editable inputs of a reviewed slip into
// calculator overrides.
func reviewedOverrides(slip payroll.SalarySlip) payroll.Overrides {
	ptr := func(v decimal.Decimal) *decimal.Decimal { return &v }
	return payroll.Overrides{
		Complement: ptr(slip.Complement),
		Bonus:      ptr(slip.Bonus),
		Advances:   ptr(slip.Advances),
		Food:       ptr(slip.Food),
		Transport:  ptr(slip.Transport),
		Family:     ptr(slip.Family),
		Housing:    ptr(slip.Housing),
		Vacation:   ptr(slip.Vacation),
		Christmas:  ptr(slip.Christmas),
	}
}

func (s *PayrollServiceImpl) store(ctx context.Context, slip payroll.SalarySlip, replace bool) (payroll.SalarySlip, error) {
	slip.CreatedBy = jwt.ActorID(ctx)
	slip.PaymentID = nil
	slip.PaidAt = nil

	var (
		stored payroll.SalarySlip
		err    error
	)
	if replace {
		stored, err = s.slipRepo.Replace(ctx, slip)
	} else {
		stored, err = s.slipRepo.Insert(ctx, slip)
	}
	if err != nil {
		return payroll.SalarySlip{}, err
	}

	slog.Info("Salary slip stored",
		"employee_id", stored.EmployeeID,
		"period", stored.Period.String(),
		"net_total", stored.NetTotal.StringFixed(2),
		"replace", replace,
	)
	return stored, nil
}

// Find implements payroll.PayrollService.
func (s *PayrollServiceImpl) Find(ctx context.Context, employeeID string, p period.Period) (payroll.SlipResponse, error) {
	if err := p.Validate(); err != nil {
		return payroll.SlipResponse{}, err
	}

	slip, err := s.slipRepo.Get(ctx, employeeID, p)
	if err != nil {
		return payroll.SlipResponse{}, err
	}
	return payroll.ToSlipResponse(slip), nil
}

// Clear implements payroll.PayrollService.
func (s *PayrollServiceImpl) Clear(ctx context.Context, employeeID string, p period.Period, force bool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	unlock := s.locks.Lock(period.Key(employeeID, p))
	defer unlock()

	slip, err := s.slipRepo.Get(ctx, employeeID, p)
	if err != nil {
		return err
	}
	if slip.PaymentID != nil && !force {
		return payroll.ErrAlreadyPaid
	}

	if err := s.slipRepo.Delete(ctx, employeeID, p); err != nil {
		return fmt.Errorf("failed to clear salary slip: %w", err)
	}

	if slip.PaymentID != nil {
		slog.Warn("Cleared salary slip included in a payment",
			"employee_id", employeeID,
			"period", p.String(),
			"payment_id", *slip.PaymentID,
			"cleared_by", jwt.ActorID(ctx),
		)
	}
	return nil
}

// ListByPeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListByPeriod(ctx context.Context, p period.Period) ([]payroll.SlipResponse, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	slips, err := s.slipRepo.ListByPeriod(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary slips: %w", err)
	}

	resp := make([]payroll.SlipResponse, 0, len(slips))
	for _, slip := range slips {
		resp = append(resp, payroll.ToSlipResponse(slip))
	}
	return resp, nil
}

// Summary implements payroll.PayrollService.
func (s *PayrollServiceImpl) Summary(ctx context.Context, p period.Period) (payroll.SummaryResponse, error) {
	if err := p.Validate(); err != nil {
		return payroll.SummaryResponse{}, err
	}

	slips, err := s.slipRepo.ListByPeriod(ctx, p)
	if err != nil {
		return payroll.SummaryResponse{}, fmt.Errorf("failed to list salary slips: %w", err)
	}
	return payroll.ToSummaryResponse(payroll.Summarize(p, slips)), nil
}

// ExportCSV implements payroll.PayrollService.
func (s *PayrollServiceImpl) ExportCSV(ctx context.Context, p period.Period, w io.Writer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	slips, err := s.slipRepo.ListByPeriod(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to list salary slips: %w", err)
	}

	rows := make([]payroll.ExportRow, 0, len(slips))
	for _, slip := range slips {
		rows = append(rows, payroll.ToExportRow(slip))
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func (s *PayrollServiceImpl) compute(ctx context.Context, req payroll.ComputeRequest) (payroll.SalarySlip, error) {
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.SalarySlip{}, err
	}
	return s.calculator.Compute(ctx, emp, req.Period, req.Overrides)
}

// validateSlip checks the inputs of a slip handed in from outside the calculator.
func validateSlip(slip payroll.SalarySlip) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(slip.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}
	if validator.IsEmpty(slip.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if err := slip.Period.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{Field: "period", Message: err.Error()})
	}
	if slip.UnjustifiedDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "absences", Message: "must be non-negative"})
	}
	for _, f := range []struct {
		field string
		value decimal.Decimal
	}{
		{"base_salary", slip.BaseSalary},
		{"allowances", slip.Complement},
		{"bonuses", slip.Bonus},
		{"advances", slip.Advances},
		{"subsidy_food", slip.Food},
		{"subsidy_transport", slip.Transport},
		{"subsidy_family", slip.Family},
		{"subsidy_housing", slip.Housing},
		{"subsidy_vacation", slip.Vacation},
		{"subsidy_christmas", slip.Christmas},
	} {
		if f.value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: f.field, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
