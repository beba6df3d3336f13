package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type slipRepository struct {
	db *database.DB
}

func NewSlipRepository(db *database.DB) payroll.SlipRepository {
	return &slipRepository{db: db}
}

const slipColumns = `id, employee_id, employee_name, employee_role, period_year, period_month,
	base_salary, complement, bonus, unjustified_days, absence_deduction, taxable_base,
	subsidy_food, subsidy_transport, subsidy_family, subsidy_housing, subsidy_vacation, subsidy_christmas,
	advances, gross_total, inss, irt, net_total, tax_schedule_version, warnings,
	payment_id, paid_at, created_by, created_at, updated_at`

func scanSlip(row pgx.Row) (payroll.SalarySlip, error) {
	var s payroll.SalarySlip
	var warnings []byte
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.EmployeeName, &s.EmployeeRole, &s.Period.Year, &s.Period.Month,
		&s.BaseSalary, &s.Complement, &s.Bonus, &s.UnjustifiedDays, &s.AbsenceDeduction, &s.TaxableBase,
		&s.Food, &s.Transport, &s.Family, &s.Housing, &s.Vacation, &s.Christmas,
		&s.Advances, &s.GrossTotal, &s.INSS, &s.IRT, &s.NetTotal, &s.TaxScheduleVersion, &warnings,
		&s.PaymentID, &s.PaidAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return payroll.SalarySlip{}, err
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &s.Warnings); err != nil {
			return payroll.SalarySlip{}, fmt.Errorf("failed to decode slip warnings: %w", err)
		}
	}
	return s, nil
}

func slipArgs(s payroll.SalarySlip) ([]any, error) {
	warnings := s.Warnings
	if warnings == nil {
		warnings = []payroll.ClampWarning{}
	}
	raw, err := json.Marshal(warnings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode slip warnings: %w", err)
	}
	return []any{
		s.ID, s.EmployeeID, s.EmployeeName, s.EmployeeRole, s.Period.Year, s.Period.Month,
		s.BaseSalary, s.Complement, s.Bonus, s.UnjustifiedDays, s.AbsenceDeduction, s.TaxableBase,
		s.Food, s.Transport, s.Family, s.Housing, s.Vacation, s.Christmas,
		s.Advances, s.GrossTotal, s.INSS, s.IRT, s.NetTotal, s.TaxScheduleVersion, raw,
		s.CreatedBy,
	}, nil
}

const insertSlipValues = `(` + `id, employee_id, employee_name, employee_role, period_year, period_month,
	base_salary, complement, bonus, unjustified_days, absence_deduction, taxable_base,
	subsidy_food, subsidy_transport, subsidy_family, subsidy_housing, subsidy_vacation, subsidy_christmas,
	advances, gross_total, inss, irt, net_total, tax_schedule_version, warnings, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
	$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

func (r *slipRepository) Insert(ctx context.Context, slip payroll.SalarySlip) (payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	args, err := slipArgs(slip)
	if err != nil {
		return payroll.SalarySlip{}, err
	}

	query := `INSERT INTO salary_slips ` + insertSlipValues + ` RETURNING ` + slipColumns

	created, err := scanSlip(q.QueryRow(ctx, query, args...))
	if err != nil {
		if strings.Contains(err.Error(), "uk_slip_employee_period") {
			return payroll.SalarySlip{}, payroll.ErrDuplicatePeriod
		}
		return payroll.SalarySlip{}, fmt.Errorf("failed to insert salary slip: %w", err)
	}
	return created, nil
}

// Replace only overwrites an unclaimed row; a claimed one makes the
// conditional update match nothing.
func (r *slipRepository) Replace(ctx context.Context, slip payroll.SalarySlip) (payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	args, err := slipArgs(slip)
	if err != nil {
		return payroll.SalarySlip{}, err
	}

	query := `INSERT INTO salary_slips ` + insertSlipValues + `
		ON CONFLICT ON CONSTRAINT uk_slip_employee_period DO UPDATE SET
			id = EXCLUDED.id,
			employee_name = EXCLUDED.employee_name,
			employee_role = EXCLUDED.employee_role,
			base_salary = EXCLUDED.base_salary,
			complement = EXCLUDED.complement,
			bonus = EXCLUDED.bonus,
			unjustified_days = EXCLUDED.unjustified_days,
			absence_deduction = EXCLUDED.absence_deduction,
			taxable_base = EXCLUDED.taxable_base,
			subsidy_food = EXCLUDED.subsidy_food,
			subsidy_transport = EXCLUDED.subsidy_transport,
			subsidy_family = EXCLUDED.subsidy_family,
			subsidy_housing = EXCLUDED.subsidy_housing,
			subsidy_vacation = EXCLUDED.subsidy_vacation,
			subsidy_christmas = EXCLUDED.subsidy_christmas,
			advances = EXCLUDED.advances,
			gross_total = EXCLUDED.gross_total,
			inss = EXCLUDED.inss,
			irt = EXCLUDED.irt,
			net_total = EXCLUDED.net_total,
			tax_schedule_version = EXCLUDED.tax_schedule_version,
			warnings = EXCLUDED.warnings,
			created_by = EXCLUDED.created_by,
			updated_at = NOW()
		WHERE salary_slips.payment_id IS NULL
		RETURNING ` + slipColumns

	stored, err := scanSlip(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalarySlip{}, payroll.ErrAlreadyPaid
		}
		return payroll.SalarySlip{}, fmt.Errorf("failed to replace salary slip: %w", err)
	}
	return stored, nil
}

func (r *slipRepository) Get(ctx context.Context, employeeID string, p period.Period) (payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + slipColumns + ` FROM salary_slips
		WHERE employee_id = $1 AND period_year = $2 AND period_month = $3`

	s, err := scanSlip(q.QueryRow(ctx, query, employeeID, p.Year, p.Month))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalarySlip{}, payroll.ErrSlipNotFound
		}
		return payroll.SalarySlip{}, fmt.Errorf("failed to get salary slip: %w", err)
	}
	return s, nil
}

func (r *slipRepository) Exists(ctx context.Context, employeeID string, p period.Period) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM salary_slips WHERE employee_id = $1 AND period_year = $2 AND period_month = $3
	)`, employeeID, p.Year, p.Month).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check salary slip: %w", err)
	}
	return exists, nil
}

func (r *slipRepository) list(ctx context.Context, query string, args ...any) ([]payroll.SalarySlip, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary slips: %w", err)
	}
	defer rows.Close()

	var out []payroll.SalarySlip
	for rows.Next() {
		s, err := scanSlip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary slip: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *slipRepository) ListByPeriod(ctx context.Context, p period.Period) ([]payroll.SalarySlip, error) {
	return r.list(ctx, `SELECT `+slipColumns+` FROM salary_slips
		WHERE period_year = $1 AND period_month = $2
		ORDER BY employee_name`, p.Year, p.Month)
}

func (r *slipRepository) ListByEmployees(ctx context.Context, p period.Period, employeeIDs []string) ([]payroll.SalarySlip, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+slipColumns+` FROM salary_slips
		WHERE period_year = $1 AND period_month = $2 AND employee_id = ANY($3)
		ORDER BY employee_name`, p.Year, p.Month, employeeIDs)
}

func (r *slipRepository) Delete(ctx context.Context, employeeID string, p period.Period) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_slips
		WHERE employee_id = $1 AND period_year = $2 AND period_month = $3`,
		employeeID, p.Year, p.Month)
	if err != nil {
		return fmt.Errorf("failed to delete salary slip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrSlipNotFound
	}
	return nil
}

func (r *slipRepository) ClaimForPayment(ctx context.Context, slipIDs []string, paymentID string) ([]string, error) {
	if len(slipIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `UPDATE salary_slips
		SET payment_id = $2, updated_at = NOW()
		WHERE id = ANY($1) AND payment_id IS NULL
		RETURNING id`, slipIDs, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim salary slips: %w", err)
	}
	claimed, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to claim salary slips: %w", err)
	}
	return claimed, nil
}

func (r *slipRepository) MarkPaid(ctx context.Context, paymentID string, paidAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE salary_slips
		SET paid_at = $2, updated_at = NOW()
		WHERE payment_id = $1`, paymentID, paidAt)
	if err != nil {
		return fmt.Errorf("failed to mark salary slips paid: %w", err)
	}
	return nil
}

func (r *slipRepository) ListByPayment(ctx context.Context, paymentID string) ([]payroll.SalarySlip, error) {
	return r.list(ctx, `SELECT `+slipColumns+` FROM salary_slips
		WHERE payment_id = $1
		ORDER BY employee_name`, paymentID)
}

func (r *slipRepository) ReleaseClaims(ctx context.Context, paymentID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE salary_slips
		SET payment_id = NULL, updated_at = NOW()
		WHERE payment_id = $1 AND paid_at IS NULL`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to release salary slips: %w", err)
	}
	return nil
}
