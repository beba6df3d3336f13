package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrGateClosed      = errors.New("effectiveness not processed for this period")
	ErrDuplicatePeriod = errors.New("salary slip already exists for this period")
	ErrAlreadyPaid     = errors.New("salary slip is included in a payment, force is required")
	ErrSlipNotFound    = errors.New("salary slip not found")
)

// ClampWarning is the non-fatal NegativeClampWarning: a value would have gone
// negative and was floored at zero.
type ClampWarning struct {
	Field      string          `json:"field"`
	Unclamped  decimal.Decimal `json:"unclamped"`
	EmployeeID string          `json:"employee_id"`
}

func (w ClampWarning) Error() string {
	return fmt.Sprintf("%s for employee %s would be %s, clamped to 0", w.Field, w.EmployeeID, w.Unclamped.StringFixed(2))
}
