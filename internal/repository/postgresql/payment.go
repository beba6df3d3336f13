package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type paymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) payment.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	insert := func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		err := q.QueryRow(ctx, `
			INSERT INTO payroll_payments (
				id, period_year, period_month, cash_account_id, amount, status, requested_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`, p.ID, p.Period.Year, p.Period.Month, p.CashAccountID, p.Amount, string(p.Status), p.RequestedBy,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		for _, s := range p.Slips {
			if _, err := q.Exec(ctx, `
				INSERT INTO payroll_payment_slips (payment_id, slip_id, employee_id, net_total, created)
				VALUES ($1, $2, $3, $4, $5)
			`, p.ID, s.SlipID, s.EmployeeID, s.NetTotal, s.Created); err != nil {
				return fmt.Errorf("failed to create payment slip line: %w", err)
			}
		}
		return nil
	}

	var err error
	if _, ok := database.TxFromContext(ctx); ok {
		err = insert(ctx)
	} else {
		err = WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
			return insert(database.WithTx(ctx, tx))
		})
	}
	if err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

const paymentColumns = `id, period_year, period_month, cash_account_id, amount, status,
	ledger_reference, failure_reason, attempts, requested_by, posted_at, created_at, updated_at`

func scanPayment(row pgx.Row) (payment.Payment, error) {
	var p payment.Payment
	var status string
	err := row.Scan(
		&p.ID, &p.Period.Year, &p.Period.Month, &p.CashAccountID, &p.Amount, &status,
		&p.LedgerReference, &p.FailureReason, &p.Attempts, &p.RequestedBy, &p.PostedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	p.Status = payment.Status(status)
	return p, err
}

func (r *paymentRepository) loadSlips(ctx context.Context, p *payment.Payment) error {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT slip_id, employee_id, net_total, created
		FROM payroll_payment_slips
		WHERE payment_id = $1
		ORDER BY employee_id
	`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to list payment slips: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s payment.PaymentSlip
		if err := rows.Scan(&s.SlipID, &s.EmployeeID, &s.NetTotal, &s.Created); err != nil {
			return fmt.Errorf("failed to scan payment slip: %w", err)
		}
		p.Slips = append(p.Slips, s)
	}
	return rows.Err()
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayment(q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payroll_payments WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	if err := r.loadSlips(ctx, &p); err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

func (r *paymentRepository) ListByStatus(ctx context.Context, status payment.Status) ([]payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+paymentColumns+` FROM payroll_payments
		WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	var out []payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	for i := range out {
		if err := r.loadSlips(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *paymentRepository) MarkPosted(ctx context.Context, id string, reference string, postedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_payments
		SET status = $2, ledger_reference = $3, failure_reason = NULL,
			posted_at = $4, attempts = attempts + 1, updated_at = NOW()
		WHERE id = $1
	`, id, string(payment.StatusPosted), reference, postedAt)
	if err != nil {
		return fmt.Errorf("failed to mark payment posted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_payments
		SET status = $2, failure_reason = $3, attempts = attempts + 1, updated_at = NOW()
		WHERE id = $1
	`, id, string(payment.StatusFailed), reason)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) MarkVoid(ctx context.Context, id string, reason string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_payments
		SET status = $2, failure_reason = $3, updated_at = NOW()
		WHERE id = $1
	`, id, string(payment.StatusVoid), reason)
	if err != nil {
		return fmt.Errorf("failed to void payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}
