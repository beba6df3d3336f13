package payment

import (
	"context"
	"time"
)

type PaymentRepository interface {
	Create(ctx context.Context, p Payment) (Payment, error)
	GetByID(ctx context.Context, id string) (Payment, error)
	ListByStatus(ctx context.Context, status Status) ([]Payment, error)

	// MarkPosted and MarkFailed both count one posting attempt
	MarkPosted(ctx context.Context, id string, reference string, postedAt time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
	MarkVoid(ctx context.Context, id string, reason string) error
}

// LedgerPoster is the external ledger collaborator.
type LedgerPoster interface {
	PostMovement(ctx context.Context, m Movement) (Receipt, error)
}
