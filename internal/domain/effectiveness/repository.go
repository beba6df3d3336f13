package effectiveness

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

type EffectivenessRepository interface {
	// Upsert replaces the snapshot when the record already exists.
	Upsert(ctx context.Context, record Record) (Record, error)
	Get(ctx context.Context, employeeID string, p period.Period) (Record, error)
	Delete(ctx context.Context, employeeID string, p period.Period) error
	ListByPeriod(ctx context.Context, p period.Period) ([]Record, error)
}
