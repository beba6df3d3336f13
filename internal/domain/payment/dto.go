package payment

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type PostBatchRequest struct {
	EmployeeIDs   []string      `json:"employee_ids"`
	Period        period.Period `json:"period"`
	CashAccountID string        `json:"cash_account_id"`
}

func (r *PostBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.EmployeeIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "at least one employee is required"})
	}
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "must not contain empty ids"})
			break
		}
	}
	if err := r.Period.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{Field: "period", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SkippedEmployee - an employee left out of the batch and why
type SkippedEmployee struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

const (
	SkipReasonGateClosed  = "gate_closed"
	SkipReasonAlreadyPaid = "already_paid"
	SkipReasonNotFound    = "employee_not_found"
)

type BatchResult struct {
	PaymentID      string            `json:"payment_id,omitempty"`
	Period         string            `json:"period"`
	CashAccountID  string            `json:"cash_account_id"`
	CreatedSlipIDs []string          `json:"created_slip_ids"`
	PaidSlipIDs    []string          `json:"paid_slip_ids"`
	TotalPosted    decimal.Decimal   `json:"total_posted"`
	Skipped        []SkippedEmployee `json:"skipped"`
	Status         Status            `json:"status,omitempty"`
}

type PaymentResponse struct {
	ID              string          `json:"id"`
	Period          string          `json:"period"`
	CashAccountID   string          `json:"cash_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Status          Status          `json:"status"`
	Slips           []SlipLine      `json:"slips"`
	LedgerReference *string         `json:"ledger_reference,omitempty"`
	FailureReason   *string         `json:"failure_reason,omitempty"`
	Attempts        int             `json:"attempts"`
	PostedAt        *string         `json:"posted_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type SlipLine struct {
	SlipID     string          `json:"slip_id"`
	EmployeeID string          `json:"employee_id"`
	NetTotal   decimal.Decimal `json:"net_total"`
	Created    bool            `json:"created"`
}

func ToResponse(p Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:              p.ID,
		Period:          p.Period.String(),
		CashAccountID:   p.CashAccountID,
		Amount:          p.Amount,
		Status:          p.Status,
		LedgerReference: p.LedgerReference,
		FailureReason:   p.FailureReason,
		Attempts:        p.Attempts,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		Slips:           make([]SlipLine, 0, len(p.Slips)),
	}
	for _, s := range p.Slips {
		resp.Slips = append(resp.Slips, SlipLine{SlipID: s.SlipID, EmployeeID: s.EmployeeID, NetTotal: s.NetTotal, Created: s.Created})
	}
	if p.PostedAt != nil {
		postedAt := p.PostedAt.Format(time.RFC3339)
		resp.PostedAt = &postedAt
	}
	return resp
}
