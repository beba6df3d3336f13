package payment

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/shopspring/decimal"
)

// Status enum
type Status string

const (
	StatusPending Status = "pending"
	StatusPosted  Status = "posted"
	StatusFailed  Status = "failed"
	// StatusVoid is terminal: the batch was abandoned without posting
	StatusVoid Status = "void"
)

const (
	DirectionOut    = "OUT"
	CategoryPayroll = "payroll"
)

// Payment - one posted (or attempted) payroll batch. Its ID is also the
// idempotency key sent to the ledger.
type Payment struct {
	ID              string
	Period          period.Period
	CashAccountID   string
	Amount          decimal.Decimal
	Status          Status
	Slips           []PaymentSlip
	LedgerReference *string
	FailureReason   *string
	Attempts        int
	RequestedBy     string
	PostedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PaymentSlip - the slip as it was when the batch included it
type PaymentSlip struct {
	SlipID     string
	EmployeeID string
	NetTotal   decimal.Decimal
	Created    bool
}

func (p Payment) CreatedSlipIDs() []string {
	var ids []string
	for _, s := range p.Slips {
		if s.Created {
			ids = append(ids, s.SlipID)
		}
	}
	return ids
}

func (p Payment) SlipIDs() []string {
	ids := make([]string, 0, len(p.Slips))
	for _, s := range p.Slips {
		ids = append(ids, s.SlipID)
	}
	return ids
}

// Movement - the single outbound ledger entry of a batch
type Movement struct {
	AccountID      string          `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      string          `json:"direction"`
	Category       string          `json:"category"`
	Period         string          `json:"period"`
	Description    string          `json:"description"`
	IdempotencyKey string          `json:"-"`
}

type Receipt struct {
	Reference string `json:"reference"`
}

func MovementFor(p Payment) Movement {
	return Movement{
		AccountID:      p.CashAccountID,
		Amount:         p.Amount,
		Direction:      DirectionOut,
		Category:       CategoryPayroll,
		Period:         p.Period.String(),
		Description:    "Payroll " + p.Period.String(),
		IdempotencyKey: p.ID,
	}
}
