package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type effectivenessRepository struct {
	db *database.DB
}

func NewEffectivenessRepository(db *database.DB) effectiveness.EffectivenessRepository {
	return &effectivenessRepository{db: db}
}

func (r *effectivenessRepository) Upsert(ctx context.Context, rec effectiveness.Record) (effectiveness.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO effectiveness_records (
			employee_id, period_year, period_month,
			unjustified_days, justified_days, worked_days, vacation_days,
			overtime_hours, lost_hours, finalized_by, finalized_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (employee_id, period_year, period_month) DO UPDATE SET
			unjustified_days = EXCLUDED.unjustified_days,
			justified_days = EXCLUDED.justified_days,
			worked_days = EXCLUDED.worked_days,
			vacation_days = EXCLUDED.vacation_days,
			overtime_hours = EXCLUDED.overtime_hours,
			lost_hours = EXCLUDED.lost_hours,
			finalized_by = EXCLUDED.finalized_by,
			finalized_at = EXCLUDED.finalized_at
	`

	_, err := q.Exec(ctx, query,
		rec.EmployeeID, rec.Period.Year, rec.Period.Month,
		rec.UnjustifiedDays, rec.JustifiedDays, rec.WorkedDays, rec.VacationDays,
		rec.OvertimeHours, rec.LostHours, rec.FinalizedBy, rec.FinalizedAt,
	)
	if err != nil {
		return effectiveness.Record{}, fmt.Errorf("failed to upsert effectiveness record: %w", err)
	}
	return rec, nil
}

const effectivenessColumns = `employee_id, period_year, period_month,
	unjustified_days, justified_days, worked_days, vacation_days,
	overtime_hours, lost_hours, finalized_by, finalized_at`

func scanEffectiveness(row pgx.Row) (effectiveness.Record, error) {
	var rec effectiveness.Record
	err := row.Scan(
		&rec.EmployeeID, &rec.Period.Year, &rec.Period.Month,
		&rec.UnjustifiedDays, &rec.JustifiedDays, &rec.WorkedDays, &rec.VacationDays,
		&rec.OvertimeHours, &rec.LostHours, &rec.FinalizedBy, &rec.FinalizedAt,
	)
	return rec, err
}

func (r *effectivenessRepository) Get(ctx context.Context, employeeID string, p period.Period) (effectiveness.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + effectivenessColumns + ` FROM effectiveness_records
		WHERE employee_id = $1 AND period_year = $2 AND period_month = $3`

	rec, err := scanEffectiveness(q.QueryRow(ctx, query, employeeID, p.Year, p.Month))
	if err != nil {
		if err == pgx.ErrNoRows {
			return effectiveness.Record{}, effectiveness.ErrRecordNotFound
		}
		return effectiveness.Record{}, fmt.Errorf("failed to get effectiveness record: %w", err)
	}
	return rec, nil
}

func (r *effectivenessRepository) Delete(ctx context.Context, employeeID string, p period.Period) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM effectiveness_records
		WHERE employee_id = $1 AND period_year = $2 AND period_month = $3`,
		employeeID, p.Year, p.Month)
	if err != nil {
		return fmt.Errorf("failed to delete effectiveness record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return effectiveness.ErrRecordNotFound
	}
	return nil
}

func (r *effectivenessRepository) ListByPeriod(ctx context.Context, p period.Period) ([]effectiveness.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + effectivenessColumns + ` FROM effectiveness_records
		WHERE period_year = $1 AND period_month = $2
		ORDER BY employee_id`

	rows, err := q.Query(ctx, query, p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to list effectiveness records: %w", err)
	}
	defer rows.Close()

	var out []effectiveness.Record
	for rows.Next() {
		rec, err := scanEffectiveness(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan effectiveness record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
