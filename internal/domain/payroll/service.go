package payroll

import (
	"context"
	"io"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

// Calculator turns an employee and a finalized period into a slip. It never persists.
type Calculator interface {
	Compute(ctx context.Context, emp employee.Employee, p period.Period, overrides Overrides) (SalarySlip, error)
}

// PayrollService is the payroll ledger: the only owner of salary slips.
type PayrollService interface {
	// Preview computes without storing, for the slip review step
	Preview(ctx context.Context, req ComputeRequest) (SlipResponse, error)

	// ComputeAndStore runs gate check, compute and store as one unit per key
	ComputeAndStore(ctx context.Context, req ComputeRequest, replace bool) (SlipResponse, error)

	// Store persists a reviewed slip. Its inputs are kept, withholdings and
	// totals are recomputed; the gate must be open.
	Store(ctx context.Context, slip SalarySlip, replace bool) (SalarySlip, error)

	// Find returns ErrSlipNotFound when the period was never computed or was cleared
	Find(ctx context.Context, employeeID string, p period.Period) (SlipResponse, error)

	// Clear fails with ErrAlreadyPaid for a claimed slip unless force is set
	Clear(ctx context.Context, employeeID string, p period.Period, force bool) error

	ListByPeriod(ctx context.Context, p period.Period) ([]SlipResponse, error)
	Summary(ctx context.Context, p period.Period) (SummaryResponse, error)
	ExportCSV(ctx context.Context, p period.Period, w io.Writer) error
}
