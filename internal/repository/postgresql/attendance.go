package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const upsertEntryQuery = `
	INSERT INTO attendance_entries (
		employee_id, period_year, period_month, day,
		classification, overtime_hours, lost_hours, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	ON CONFLICT (employee_id, period_year, period_month, day) DO UPDATE SET
		classification = EXCLUDED.classification,
		overtime_hours = EXCLUDED.overtime_hours,
		lost_hours = EXCLUDED.lost_hours,
		updated_at = NOW()
	RETURNING updated_at
`

func (r *attendanceRepository) UpsertEntry(ctx context.Context, entry attendance.Entry) (attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, upsertEntryQuery,
		entry.EmployeeID, entry.Period.Year, entry.Period.Month, entry.Day,
		string(entry.Classification), entry.OvertimeHours, entry.LostHours,
	).Scan(&entry.UpdatedAt)
	if err != nil {
		return attendance.Entry{}, fmt.Errorf("failed to upsert attendance entry: %w", err)
	}
	return entry, nil
}

// UpsertEntries sends the whole grid as one batch.
func (r *attendanceRepository) UpsertEntries(ctx context.Context, entries []attendance.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(upsertEntryQuery,
			e.EmployeeID, e.Period.Year, e.Period.Month, e.Day,
			string(e.Classification), e.OvertimeHours, e.LostHours,
		)
	}

	send := func(ctx context.Context, tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		for range entries {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to upsert attendance grid: %w", err)
			}
		}
		return br.Close()
	}

	if tx, ok := database.TxFromContext(ctx); ok {
		return send(ctx, tx)
	}
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		return send(ctx, tx)
	})
}

func (r *attendanceRepository) ListEntries(ctx context.Context, employeeID string, p period.Period) ([]attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT day, classification, overtime_hours, lost_hours, updated_at
		FROM attendance_entries
		WHERE employee_id = $1 AND period_year = $2 AND period_month = $3
		ORDER BY day
	`

	rows, err := q.Query(ctx, query, employeeID, p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance entries: %w", err)
	}
	defer rows.Close()

	var out []attendance.Entry
	for rows.Next() {
		e := attendance.Entry{EmployeeID: employeeID, Period: p}
		var classification string
		if err := rows.Scan(&e.Day, &classification, &e.OvertimeHours, &e.LostHours, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance entry: %w", err)
		}
		e.Classification = attendance.Classification(classification)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *attendanceRepository) UpsertSubsidies(ctx context.Context, s attendance.ManualSubsidies) (attendance.ManualSubsidies, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_subsidies (employee_id, period_year, period_month, transport, food, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (employee_id, period_year, period_month) DO UPDATE SET
			transport = EXCLUDED.transport,
			food = EXCLUDED.food,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query, s.EmployeeID, s.Period.Year, s.Period.Month, s.Transport, s.Food).Scan(&s.UpdatedAt)
	if err != nil {
		return attendance.ManualSubsidies{}, fmt.Errorf("failed to upsert manual subsidies: %w", err)
	}
	return s, nil
}

func (r *attendanceRepository) GetSubsidies(ctx context.Context, employeeID string, p period.Period) (attendance.ManualSubsidies, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT transport, food, updated_at
		FROM attendance_subsidies
		WHERE employee_id = $1 AND period_year = $2 AND period_month = $3
	`

	s := attendance.ManualSubsidies{EmployeeID: employeeID, Period: p}
	err := q.QueryRow(ctx, query, employeeID, p.Year, p.Month).Scan(&s.Transport, &s.Food, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ManualSubsidies{}, attendance.ErrSubsidiesNotFound
		}
		return attendance.ManualSubsidies{}, fmt.Errorf("failed to get manual subsidies: %w", err)
	}
	return s, nil
}
