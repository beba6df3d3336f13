package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

// SlipRepository is keyed by (employee, period). Insert and Replace are each
// atomic per key.
type SlipRepository interface {
	// Insert fails with ErrDuplicatePeriod when a slip exists for the key
	Insert(ctx context.Context, slip SalarySlip) (SalarySlip, error)
	// Replace overwrites an unclaimed slip or inserts; ErrAlreadyPaid if the stored one is claimed
	Replace(ctx context.Context, slip SalarySlip) (SalarySlip, error)
	Get(ctx context.Context, employeeID string, p period.Period) (SalarySlip, error)
	Exists(ctx context.Context, employeeID string, p period.Period) (bool, error)
	ListByPeriod(ctx context.Context, p period.Period) ([]SalarySlip, error)
	ListByEmployees(ctx context.Context, p period.Period, employeeIDs []string) ([]SalarySlip, error)
	Delete(ctx context.Context, employeeID string, p period.Period) error

	// ClaimForPayment sets PaymentID on the given slips that are not yet
	// claimed and returns the IDs it claimed.
	ClaimForPayment(ctx context.Context, slipIDs []string, paymentID string) ([]string, error)
	MarkPaid(ctx context.Context, paymentID string, paidAt time.Time) error
	ListByPayment(ctx context.Context, paymentID string) ([]SalarySlip, error)
	// ReleaseClaims clears PaymentID on the unpaid slips of a payment
	ReleaseClaims(ctx context.Context, paymentID string) error
}
