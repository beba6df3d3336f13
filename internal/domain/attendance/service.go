package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

// AttendanceService is the attendance ledger: daily grid entry, manual
// subsidies and finalisation of the period ("processar efetividade").
type AttendanceService interface {
	// RecordDay upserts one day; allowed whether or not the period is finalized
	RecordDay(ctx context.Context, req RecordDayRequest) (EntryResponse, error)

	// RecordGrid upserts several days in one transaction
	RecordGrid(ctx context.Context, req RecordGridRequest) (GridResponse, error)

	// SetManualSubsidies overrides transport/food for this period only
	SetManualSubsidies(ctx context.Context, req SetManualSubsidiesRequest) (SubsidiesResponse, error)

	// Finalize snapshots the grid and opens the effectiveness gate. Idempotent.
	Finalize(ctx context.Context, employeeID string, p period.Period) (effectiveness.Record, error)

	// Unfinalize closes the gate; refused while a salary slip exists
	Unfinalize(ctx context.Context, employeeID string, p period.Period) error

	// UnjustifiedCount reads the finalized snapshot when there is one, else the live grid
	UnjustifiedCount(ctx context.Context, employeeID string, p period.Period) (int, error)

	// ManualSubsidies returns nil when the period has no overrides
	ManualSubsidies(ctx context.Context, employeeID string, p period.Period) (*ManualSubsidies, error)

	GetGrid(ctx context.Context, employeeID string, p period.Period) (GridResponse, error)
}
