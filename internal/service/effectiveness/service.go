package effectiveness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/keylock"
)

type GateImpl struct {
	effectivenessRepo effectiveness.EffectivenessRepository
	slipRepo          payroll.SlipRepository
	locks             *keylock.Locker
}

// NewGate shares locks with the payroll service so reopening attendance
// cannot interleave with a slip being computed for the same key.
func NewGate(
	effectivenessRepo effectiveness.EffectivenessRepository,
	slipRepo payroll.SlipRepository,
	locks *keylock.Locker,
) effectiveness.Gate {
	return &GateImpl{
		effectivenessRepo: effectivenessRepo,
		slipRepo:          slipRepo,
		locks:             locks,
	}
}

func (g *GateImpl) IsOpen(ctx context.Context, employeeID string, p period.Period) (bool, error) {
	_, err := g.effectivenessRepo.Get(ctx, employeeID, p)
	if errors.Is(err, effectiveness.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check effectiveness: %w", err)
	}
	return true, nil
}

func (g *GateImpl) Open(ctx context.Context, record effectiveness.Record) (effectiveness.Record, error) {
	unlock := g.locks.Lock(period.Key(record.EmployeeID, record.Period))
	defer unlock()

	saved, err := g.effectivenessRepo.Upsert(ctx, record)
	if err != nil {
		return effectiveness.Record{}, fmt.Errorf("failed to open effectiveness gate: %w", err)
	}

	slog.Info("Effectiveness processed", "employee_id", record.EmployeeID, "period", record.Period.String(), "unjustified_days", record.UnjustifiedDays)
	return saved, nil
}

func (g *GateImpl) Close(ctx context.Context, employeeID string, p period.Period) error {
	unlock := g.locks.Lock(period.Key(employeeID, p))
	defer unlock()

	exists, err := g.slipRepo.Exists(ctx, employeeID, p)
	if err != nil {
		return fmt.Errorf("failed to check salary slip: %w", err)
	}
	if exists {
		return effectiveness.ErrSlipExists
	}

	if err := g.effectivenessRepo.Delete(ctx, employeeID, p); err != nil {
		return err
	}

	slog.Info("Effectiveness reopened", "employee_id", employeeID, "period", p.String())
	return nil
}

func (g *GateImpl) Get(ctx context.Context, employeeID string, p period.Period) (effectiveness.Record, error) {
	return g.effectivenessRepo.Get(ctx, employeeID, p)
}

func (g *GateImpl) ListOpen(ctx context.Context, p period.Period) ([]effectiveness.Record, error) {
	records, err := g.effectivenessRepo.ListByPeriod(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list effectiveness: %w", err)
	}
	return records, nil
}
