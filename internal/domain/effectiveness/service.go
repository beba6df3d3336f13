package effectiveness

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

// Gate blocks salary computation until attendance has been finalized.
type Gate interface {
	IsOpen(ctx context.Context, employeeID string, p period.Period) (bool, error)

	// Open stores the snapshot; only the attendance ledger calls it
	Open(ctx context.Context, record Record) (Record, error)

	// Close is the explicit undo. Fails with ErrSlipExists while a slip is stored.
	Close(ctx context.Context, employeeID string, p period.Period) error

	Get(ctx context.Context, employeeID string, p period.Period) (Record, error)
	ListOpen(ctx context.Context, p period.Period) ([]Record, error)
}
