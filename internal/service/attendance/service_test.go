package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	effectivenesssvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/effectiveness"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var may2024 = period.Period{Year: 2024, Month: 5}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func newService() (attendance.AttendanceService, effectiveness.Gate) {
	slips := memory.NewSlipRepository()
	gate := effectivenesssvc.NewGate(memory.NewEffectivenessRepository(), slips, keylock.New())
	return NewAttendanceService(database.NoopTransactor{}, memory.NewAttendanceRepository(), gate), gate
}

func TestRecordDay_LastWriteWins(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.RecordDay(ctx, attendance.RecordDayRequest{
		EmployeeID: "E1", Period: may2024, Day: 3, Classification: attendance.ClassificationUnjustifiedAbsence,
	})
	require.NoError(t, err)

	entry, err := svc.RecordDay(ctx, attendance.RecordDayRequest{
		EmployeeID: "E1", Period: may2024, Day: 3, Classification: attendance.ClassificationJustifiedAbsence, LostHours: dp("8"),
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.ClassificationJustifiedAbsence, entry.Classification)

	count, err := svc.UnjustifiedCount(ctx, "E1", may2024)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	grid, err := svc.GetGrid(ctx, "E1", may2024)
	require.NoError(t, err)
	require.Len(t, grid.Entries, 1)
	assert.Equal(t, 1, grid.JustifiedDays)
	assert.True(t, grid.LostHours.Equal(decimal.NewFromInt(8)))
}

func TestRecordDay_Validation(t *testing.T) {
	svc, _ := newService()

	_, err := svc.RecordDay(context.Background(), attendance.RecordDayRequest{
		EmployeeID: "E1", Period: period.Period{Year: 2024, Month: 2}, Day: 30, Classification: "sick",
		OvertimeHours: dp("-1"),
	})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	m := verrs.ToMap()
	assert.Contains(t, m, "day")
	assert.Contains(t, m, "classification")
	assert.Contains(t, m, "overtime_hours")
}

func TestRecordGrid_FillThenOverride(t *testing.T) {
	svc, _ := newService()

	grid, err := svc.RecordGrid(context.Background(), attendance.RecordGridRequest{
		EmployeeID: "E1",
		Period:     may2024,
		Fill:       attendance.ClassificationWorked,
		Days: []attendance.GridDay{
			{Day: 1, Classification: attendance.ClassificationRest},
			{Day: 2, Classification: attendance.ClassificationUnjustifiedAbsence},
			{Day: 3, Classification: attendance.ClassificationWorked, OvertimeHours: dp("2.5")},
		},
	})
	require.NoError(t, err)

	assert.Len(t, grid.Entries, 31)
	assert.Equal(t, 1, grid.UnjustifiedDays)
	assert.Equal(t, 29, grid.WorkedDays)
	assert.True(t, grid.OvertimeHours.Equal(decimal.RequireFromString("2.5")))
	assert.False(t, grid.EffectivenessSet)
}

func TestRecordGrid_RejectsDuplicateDays(t *testing.T) {
	svc, _ := newService()

	_, err := svc.RecordGrid(context.Background(), attendance.RecordGridRequest{
		EmployeeID: "E1",
		Period:     may2024,
		Days: []attendance.GridDay{
			{Day: 4, Classification: attendance.ClassificationRest},
			{Day: 4, Classification: attendance.ClassificationWorked},
		},
	})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
}

func TestSetManualSubsidies_PerPeriod(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.SetManualSubsidies(ctx, attendance.SetManualSubsidiesRequest{
		EmployeeID: "E1", Period: may2024, Transport: decimal.NewFromInt(5000), Food: decimal.NewFromInt(6000),
	})
	require.NoError(t, err)

	got, err := svc.ManualSubsidies(ctx, "E1", may2024)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Food.Equal(decimal.NewFromInt(6000)))

	other, err := svc.ManualSubsidies(ctx, "E1", period.Period{Year: 2024, Month: 6})
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestFinalize_SnapshotIsAuthoritative(t *testing.T) {
	svc, gate := newService()
	ctx := context.Background()

	_, err := svc.RecordDay(ctx, attendance.RecordDayRequest{
		EmployeeID: "E1", Period: may2024, Day: 6, Classification: attendance.ClassificationUnjustifiedAbsence,
	})
	require.NoError(t, err)

	record, err := svc.Finalize(ctx, "E1", may2024)
	require.NoError(t, err)
	assert.Equal(t, 1, record.UnjustifiedDays)

	open, err := gate.IsOpen(ctx, "E1", may2024)
	require.NoError(t, err)
	assert.True(t, open)

	// edits after finalize are allowed but only count once re-finalized
	_, err = svc.RecordDay(ctx, attendance.RecordDayRequest{
		EmployeeID: "E1", Period: may2024, Day: 7, Classification: attendance.ClassificationUnjustifiedAbsence,
	})
	require.NoError(t, err)

	count, err := svc.UnjustifiedCount(ctx, "E1", may2024)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	record, err = svc.Finalize(ctx, "E1", may2024)
	require.NoError(t, err)
	assert.Equal(t, 2, record.UnjustifiedDays)

	again, err := svc.Finalize(ctx, "E1", may2024)
	require.NoError(t, err)
	assert.Equal(t, record.UnjustifiedDays, again.UnjustifiedDays)
}

func TestUnfinalize_ClosesGate(t *testing.T) {
	svc, gate := newService()
	ctx := context.Background()

	_, err := svc.Finalize(ctx, "E1", may2024)
	require.NoError(t, err)
	require.NoError(t, svc.Unfinalize(ctx, "E1", may2024))

	open, err := gate.IsOpen(ctx, "E1", may2024)
	require.NoError(t, err)
	assert.False(t, open)

	assert.True(t, errors.Is(svc.Unfinalize(ctx, "E1", may2024), effectiveness.ErrRecordNotFound))
}

type recordingTransactor struct {
	calls int
	err   error
}

func (tx *recordingTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	if tx.err != nil {
		return tx.err
	}
	return fn(ctx)
}

func TestFinalize_RunsInOneTransaction(t *testing.T) {
	slips := memory.NewSlipRepository()
	gate := effectivenesssvc.NewGate(memory.NewEffectivenessRepository(), slips, keylock.New())
	tx := &recordingTransactor{}
	svc := NewAttendanceService(tx, memory.NewAttendanceRepository(), gate)
	ctx := context.Background()

	_, err := svc.Finalize(ctx, "E1", may2024)
	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)

	open, err := gate.IsOpen(ctx, "E1", may2024)
	require.NoError(t, err)
	assert.True(t, open)

	tx.err = errors.New("begin failed")
	_, err = svc.Finalize(ctx, "E2", may2024)
	require.Error(t, err)

	open, err = gate.IsOpen(ctx, "E2", may2024)
	require.NoError(t, err)
	assert.False(t, open)
}
