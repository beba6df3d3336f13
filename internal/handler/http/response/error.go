package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Ledger failures carry what is needed to reconcile the batch
	var postingErr *payment.LedgerPostingError
	if errors.As(err, &postingErr) {
		BadGateway(w, "LEDGER_POSTING_FAILED", "Ledger posting failed, the batch can be retried", map[string]string{
			"payment_id":       postingErr.PaymentID,
			"amount":           postingErr.Amount.StringFixed(2),
			"slip_ids":         strings.Join(postingErr.SlipIDs, ","),
			"created_slip_ids": strings.Join(postingErr.CreatedSlipIDs, ","),
			"slip_count":       strconv.Itoa(len(postingErr.SlipIDs)),
		})
		return
	}

	var recordErr *payment.LedgerRecordError
	if errors.As(err, &recordErr) {
		slog.Error("ledger posted but payment not recorded", "payment_id", recordErr.PaymentID, "error", recordErr.Err)
		InternalServerErrorWithCode(w, "LEDGER_RECORD_FAILED", "Ledger accepted the payment but it was not recorded, the batch can be retried", map[string]string{
			"payment_id":       recordErr.PaymentID,
			"ledger_reference": recordErr.Reference,
			"amount":           recordErr.Amount.StringFixed(2),
			"slip_ids":         strings.Join(recordErr.SlipIDs, ","),
		})
		return
	}

	var changedErr *payment.BatchChangedError
	if errors.As(err, &changedErr) {
		ConflictWithDetails(w, "BATCH_CHANGED", "Payment slips were cleared or changed, the batch was voided", map[string]string{
			"payment_id":       changedErr.PaymentID,
			"changed_slip_ids": strings.Join(changedErr.ChangedSlipIDs, ","),
			"held_slip_ids":    strings.Join(changedErr.HeldSlipIDs, ","),
		})
		return
	}

	var compErr *employee.NegativeCompensationError
	if errors.As(err, &compErr) {
		BadRequest(w, "Employee compensation must be non-negative", map[string]string{
			"employee_id": compErr.EmployeeID,
			"field":       compErr.Field,
		})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token revoked")
	case errors.Is(err, user.ErrOwnerAccessRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Period and employee
	case errors.Is(err, period.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Attendance and effectiveness
	case errors.Is(err, attendance.ErrInvalidClassification),
		errors.Is(err, attendance.ErrDayOutOfRange),
		errors.Is(err, attendance.ErrNegativeHours),
		errors.Is(err, attendance.ErrNegativeSubsidy):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, effectiveness.ErrRecordNotFound):
		NotFound(w, "Effectiveness not processed for this period")
	case errors.Is(err, effectiveness.ErrSlipExists):
		ConflictWithCode(w, "SLIP_EXISTS", "A salary slip exists for this period, clear it before reopening attendance")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrGateClosed):
		ConflictWithCode(w, "GATE_CLOSED", "Effectiveness has not been processed for this period")
	case errors.Is(err, payroll.ErrDuplicatePeriod):
		ConflictWithCode(w, "DUPLICATE_PERIOD", "A salary slip already exists for this period")
	case errors.Is(err, payroll.ErrAlreadyPaid):
		ConflictWithCode(w, "ALREADY_PAID", "Salary slip is included in a payment")
	case errors.Is(err, payroll.ErrSlipNotFound):
		NotFound(w, "Salary slip not found")

	// Payment domain errors
	case errors.Is(err, payment.ErrPaymentNotFound):
		NotFound(w, "Payment not found")
	case errors.Is(err, payment.ErrPaymentNotRetryable):
		ConflictWithCode(w, "NOT_RETRYABLE", err.Error())
	case errors.Is(err, payment.ErrNoCashAccount):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
