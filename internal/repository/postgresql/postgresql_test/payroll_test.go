package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan = period.Period{Year: 2024, Month: 1}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedEmployee(t *testing.T, setup *TestDatabaseSetup, id string) {
	t.Helper()
	_, err := setup.DB.Exec(context.Background(), `
		INSERT INTO employees (id, full_name, role, base_salary, food_subsidy, transport_subsidy)
		VALUES ($1, $2, 'Clerk', 150000, 15000, 10000)
	`, id, "Employee "+id)
	require.NoError(t, err)
}

func testSlip(employeeID string) payroll.SalarySlip {
	return payroll.SalarySlip{
		ID:                 uuid.New().String(),
		EmployeeID:         employeeID,
		EmployeeName:       "Employee " + employeeID,
		Period:             jan,
		BaseSalary:         d("150000"),
		TaxableBase:        d("150000"),
		Food:               d("15000"),
		Transport:          d("10000"),
		GrossTotal:         d("175000"),
		INSS:               d("4500"),
		IRT:                d("5000"),
		NetTotal:           d("165500"),
		TaxScheduleVersion: "TEST",
		Warnings:           []payroll.ClampWarning{{Field: "netTotal", Unclamped: d("-1"), EmployeeID: employeeID}},
	}
}

func TestEmployeeRepository_GetByIDs(t *testing.T) {
	setup := NewTestDatabase(t)
	seedEmployee(t, setup, "E1")
	seedEmployee(t, setup, "E2")

	repo := postgresql.NewEmployeeRepository(setup.DB)
	emps, err := repo.GetByIDs(context.Background(), []string{"E1", "E2", "missing"})
	require.NoError(t, err)
	assert.Len(t, emps, 2)

	e, err := repo.GetByID(context.Background(), "E1")
	require.NoError(t, err)
	assert.True(t, e.BaseSalary.Equal(d("150000")))
}

func TestAttendanceRepository_GridAndSubsidies(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	entries := []attendance.Entry{
		{EmployeeID: "E1", Period: jan, Day: 1, Classification: attendance.ClassificationWorked},
		{EmployeeID: "E1", Period: jan, Day: 2, Classification: attendance.ClassificationUnjustifiedAbsence},
	}
	require.NoError(t, repo.UpsertEntries(ctx, entries))

	_, err := repo.UpsertEntry(ctx, attendance.Entry{
		EmployeeID: "E1", Period: jan, Day: 1,
		Classification: attendance.ClassificationVacation, OvertimeHours: d("1.5"),
	})
	require.NoError(t, err)

	got, err := repo.ListEntries(ctx, "E1", jan)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, attendance.ClassificationVacation, got[0].Classification)
	assert.True(t, got[0].OvertimeHours.Equal(d("1.5")))

	_, err = repo.GetSubsidies(ctx, "E1", jan)
	assert.ErrorIs(t, err, attendance.ErrSubsidiesNotFound)

	_, err = repo.UpsertSubsidies(ctx, attendance.ManualSubsidies{EmployeeID: "E1", Period: jan, Transport: d("5000"), Food: d("0")})
	require.NoError(t, err)
	s, err := repo.GetSubsidies(ctx, "E1", jan)
	require.NoError(t, err)
	assert.True(t, s.Transport.Equal(d("5000")))
}

func TestEffectivenessRepository_UpsertDelete(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEffectivenessRepository(setup.DB)

	_, err := repo.Upsert(ctx, effectiveness.Record{EmployeeID: "E1", Period: jan, UnjustifiedDays: 2, FinalizedAt: time.Now()})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, effectiveness.Record{EmployeeID: "E1", Period: jan, UnjustifiedDays: 3, FinalizedAt: time.Now()})
	require.NoError(t, err)

	rec, err := repo.Get(ctx, "E1", jan)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.UnjustifiedDays)

	require.NoError(t, repo.Delete(ctx, "E1", jan))
	assert.ErrorIs(t, repo.Delete(ctx, "E1", jan), effectiveness.ErrRecordNotFound)
}

func TestSlipRepository_InsertReplaceClaim(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewSlipRepository(setup.DB)

	first, err := repo.Insert(ctx, testSlip("E1"))
	require.NoError(t, err)
	require.Len(t, first.Warnings, 1)

	_, err = repo.Insert(ctx, testSlip("E1"))
	assert.ErrorIs(t, err, payroll.ErrDuplicatePeriod)

	replacement := testSlip("E1")
	replacement.Bonus = d("1000")
	stored, err := repo.Replace(ctx, replacement)
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, stored.ID)

	claimed, err := repo.ClaimForPayment(ctx, []string{stored.ID}, "P1")
	require.NoError(t, err)
	assert.Equal(t, []string{stored.ID}, claimed)

	again, err := repo.ClaimForPayment(ctx, []string{stored.ID}, "P2")
	require.NoError(t, err)
	assert.Empty(t, again)

	_, err = repo.Replace(ctx, testSlip("E1"))
	assert.ErrorIs(t, err, payroll.ErrAlreadyPaid)

	require.NoError(t, repo.MarkPaid(ctx, "P1", time.Now()))
	got, err := repo.Get(ctx, "E1", jan)
	require.NoError(t, err)
	assert.True(t, got.IsProcessed())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewSlipRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Insert(ctx, testSlip("E1")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := repo.Exists(ctx, "E1", jan)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPaymentRepository_Lifecycle(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPaymentRepository(setup.DB)

	p, err := repo.Create(ctx, payment.Payment{
		ID: "P1", Period: jan, CashAccountID: "CASH", Amount: d("100"), Status: payment.StatusPending,
		Slips: []payment.PaymentSlip{{SlipID: "S1", EmployeeID: "E1", NetTotal: d("100"), Created: true}},
	})
	require.NoError(t, err)
	assert.False(t, p.CreatedAt.IsZero())

	require.NoError(t, repo.MarkFailed(ctx, "P1", "timeout"))
	failed, err := repo.ListByStatus(ctx, payment.StatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, []string{"S1"}, failed[0].CreatedSlipIDs())

	require.NoError(t, repo.MarkPosted(ctx, "P1", "REF-1", time.Now()))
	got, err := repo.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPosted, got.Status)
	assert.Equal(t, 2, got.Attempts)
	assert.Nil(t, got.FailureReason)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestSlipRepository_ListAndReleaseClaims(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewSlipRepository(setup.DB)

	e1, err := repo.Insert(ctx, testSlip("E1"))
	require.NoError(t, err)
	e2, err := repo.Insert(ctx, testSlip("E2"))
	require.NoError(t, err)

	_, err = repo.ClaimForPayment(ctx, []string{e1.ID, e2.ID}, "P1")
	require.NoError(t, err)

	held, err := repo.ListByPayment(ctx, "P1")
	require.NoError(t, err)
	assert.Len(t, held, 2)

	require.NoError(t, repo.ReleaseClaims(ctx, "P1"))
	held, err = repo.ListByPayment(ctx, "P1")
	require.NoError(t, err)
	assert.Empty(t, held)

	got, err := repo.Get(ctx, "E1", jan)
	require.NoError(t, err)
	assert.Nil(t, got.PaymentID)
}

func TestPaymentRepository_MarkVoid(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPaymentRepository(setup.DB)

	_, err := repo.Create(ctx, payment.Payment{
		ID: "P1", Period: jan, CashAccountID: "CASH", Amount: d("100"), Status: payment.StatusFailed,
	})
	require.NoError(t, err)

	require.NoError(t, repo.MarkVoid(ctx, "P1", "slips changed"))
	got, err := repo.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusVoid, got.Status)
	require.NotNil(t, got.FailureReason)
	assert.Equal(t, "slips changed", *got.FailureReason)

	assert.ErrorIs(t, repo.MarkVoid(ctx, "missing", "x"), payment.ErrPaymentNotFound)
}
