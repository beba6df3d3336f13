package payment

import "context"

// PaymentService posts payroll batches to the ledger.
type PaymentService interface {
	// PostBatch is partial-failure tolerant: closed gates and already paid
	// slips are skipped and reported, the rest are paid in one movement.
	PostBatch(ctx context.Context, req PostBatchRequest) (BatchResult, error)

	// RetryPosting re-posts a failed or stale pending batch with the same
	// idempotency key. A batch whose slips changed is voided instead.
	RetryPosting(ctx context.Context, paymentID string) (PaymentResponse, error)

	// RetryFailed retries every failed and stale pending batch; returns how many posted
	RetryFailed(ctx context.Context) (int, error)

	GetPayment(ctx context.Context, paymentID string) (PaymentResponse, error)
}
