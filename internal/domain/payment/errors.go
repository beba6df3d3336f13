package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentNotRetryable = errors.New("only failed or stale pending payments can be retried")
	ErrLedgerPostingFailed = errors.New("ledger posting failed")
	ErrLedgerRecordFailed  = errors.New("ledger posted but payment not recorded")
	ErrBatchChanged        = errors.New("payment slips changed since the batch was built")
	ErrNoCashAccount       = errors.New("no cash account given and no default configured")
)

// LedgerPostingError reports a batch whose slips are stored but whose ledger
// movement did not post. CreatedSlipIDs lists the slips this batch computed.
type LedgerPostingError struct {
	PaymentID      string
	SlipIDs        []string
	CreatedSlipIDs []string
	Amount         decimal.Decimal
	Err            error
}

func (e *LedgerPostingError) Error() string {
	return fmt.Sprintf("ledger posting failed for payment %s (amount %s, slips [%s], created [%s]): %v",
		e.PaymentID, e.Amount.StringFixed(2), strings.Join(e.SlipIDs, ","), strings.Join(e.CreatedSlipIDs, ","), e.Err)
}

func (e *LedgerPostingError) Unwrap() []error {
	return []error{ErrLedgerPostingFailed, e.Err}
}

// LedgerRecordError reports the opposite split: the ledger accepted the
// movement but the payment or its slips could not be marked posted. A retry
// re-sends the same idempotency key and records the outcome.
type LedgerRecordError struct {
	PaymentID string
	Reference string
	SlipIDs   []string
	Amount    decimal.Decimal
	Err       error
}

func (e *LedgerRecordError) Error() string {
	return fmt.Sprintf("payment %s posted to ledger (reference %q, amount %s, slips [%s]) but not recorded: %v",
		e.PaymentID, e.Reference, e.Amount.StringFixed(2), strings.Join(e.SlipIDs, ","), e.Err)
}

func (e *LedgerRecordError) Unwrap() []error {
	return []error{ErrLedgerRecordFailed, e.Err}
}

// BatchChangedError reports an unposted batch whose slips were cleared or
// recomputed after it was built. The batch is voided instead of re-posting a
// stale amount; the unchanged slips stay claimed for manual reconciliation.
type BatchChangedError struct {
	PaymentID      string
	ChangedSlipIDs []string
	HeldSlipIDs    []string
}

func (e *BatchChangedError) Error() string {
	return fmt.Sprintf("payment %s voided: slips [%s] were cleared or changed, slips [%s] are still held",
		e.PaymentID, strings.Join(e.ChangedSlipIDs, ","), strings.Join(e.HeldSlipIDs, ","))
}

func (e *BatchChangedError) Unwrap() error {
	return ErrBatchChanged
}
