package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

// AttendanceRepository stores the daily grid and the per-period manual
// subsidies. Upserts are last-write-wins.
type AttendanceRepository interface {
	UpsertEntry(ctx context.Context, entry Entry) (Entry, error)
	UpsertEntries(ctx context.Context, entries []Entry) error
	ListEntries(ctx context.Context, employeeID string, p period.Period) ([]Entry, error)

	UpsertSubsidies(ctx context.Context, subsidies ManualSubsidies) (ManualSubsidies, error)
	// GetSubsidies returns ErrSubsidiesNotFound when none were entered.
	GetSubsidies(ctx context.Context, employeeID string, p period.Period) (ManualSubsidies, error)
}
