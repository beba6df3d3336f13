package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/shopspring/decimal"
)

type AttendanceServiceImpl struct {
	transactor     database.Transactor
	attendanceRepo attendance.AttendanceRepository
	gate           effectiveness.Gate
	now            func() time.Time
}

func NewAttendanceService(
	transactor database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	gate effectiveness.Gate,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		transactor:     transactor,
		attendanceRepo: attendanceRepo,
		gate:           gate,
		now:            time.Now,
	}
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// RecordDay implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordDay(ctx context.Context, req attendance.RecordDayRequest) (attendance.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}

	entry, err := s.attendanceRepo.UpsertEntry(ctx, attendance.Entry{
		EmployeeID:     req.EmployeeID,
		Period:         req.Period,
		Day:            req.Day,
		Classification: req.Classification,
		OvertimeHours:  valueOrZero(req.OvertimeHours),
		LostHours:      valueOrZero(req.LostHours),
		UpdatedAt:      s.now(),
	})
	if err != nil {
		return attendance.EntryResponse{}, fmt.Errorf("failed to record attendance day: %w", err)
	}

	return mapEntryToResponse(entry), nil
}

// RecordGrid implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordGrid(ctx context.Context, req attendance.RecordGridRequest) (attendance.GridResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.GridResponse{}, err
	}

	now := s.now()
	byDay := make(map[int]attendance.Entry, req.Period.DaysInMonth())
	if req.Fill != "" {
		for day := 1; day <= req.Period.DaysInMonth(); day++ {
			byDay[day] = attendance.Entry{
				EmployeeID:     req.EmployeeID,
				Period:         req.Period,
				Day:            day,
				Classification: req.Fill,
				OvertimeHours:  decimal.Zero,
				LostHours:      decimal.Zero,
				UpdatedAt:      now,
			}
		}
	}
	for _, d := range req.Days {
		byDay[d.Day] = attendance.Entry{
			EmployeeID:     req.EmployeeID,
			Period:         req.Period,
			Day:            d.Day,
			Classification: d.Classification,
			OvertimeHours:  valueOrZero(d.OvertimeHours),
			LostHours:      valueOrZero(d.LostHours),
			UpdatedAt:      now,
		}
	}

	entries := make([]attendance.Entry, 0, len(byDay))
	for _, e := range byDay {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Day < entries[j].Day })

	err := s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		return s.attendanceRepo.UpsertEntries(txCtx, entries)
	})
	if err != nil {
		return attendance.GridResponse{}, fmt.Errorf("failed to record attendance grid: %w", err)
	}

	return s.GetGrid(ctx, req.EmployeeID, req.Period)
}

// SetManualSubsidies implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SetManualSubsidies(ctx context.Context, req attendance.SetManualSubsidiesRequest) (attendance.SubsidiesResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SubsidiesResponse{}, err
	}

	saved, err := s.attendanceRepo.UpsertSubsidies(ctx, attendance.ManualSubsidies{
		EmployeeID: req.EmployeeID,
		Period:     req.Period,
		Transport:  req.Transport,
		Food:       req.Food,
		UpdatedAt:  s.now(),
	})
	if err != nil {
		return attendance.SubsidiesResponse{}, fmt.Errorf("failed to set manual subsidies: %w", err)
	}

	return attendance.SubsidiesResponse{Transport: saved.Transport, Food: saved.Food}, nil
}

// Finalize implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Finalize(ctx context.Context, employeeID string, p period.Period) (effectiveness.Record, error) {
	if err := p.Validate(); err != nil {
		return effectiveness.Record{}, err
	}

	// the grid read and the snapshot commit together
	var record effectiveness.Record
	err := s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		entries, err := s.attendanceRepo.ListEntries(txCtx, employeeID, p)
		if err != nil {
			return fmt.Errorf("failed to read attendance grid: %w", err)
		}
		tally := attendance.Count(entries)

		record, err = s.gate.Open(txCtx, effectiveness.Record{
			EmployeeID:      employeeID,
			Period:          p,
			UnjustifiedDays: tally.Unjustified,
			JustifiedDays:   tally.Justified,
			WorkedDays:      tally.Worked,
			VacationDays:    tally.Vacation,
			OvertimeHours:   tally.OvertimeHours,
			LostHours:       tally.LostHours,
			FinalizedBy:     jwt.ActorID(txCtx),
			FinalizedAt:     s.now(),
		})
		return err
	})
	if err != nil {
		return effectiveness.Record{}, err
	}
	return record, nil
}

// Unfinalize implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Unfinalize(ctx context.Context, employeeID string, p period.Period) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.gate.Close(ctx, employeeID, p)
}

// UnjustifiedCount implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UnjustifiedCount(ctx context.Context, employeeID string, p period.Period) (int, error) {
	record, err := s.gate.Get(ctx, employeeID, p)
	if err == nil {
		return record.UnjustifiedDays, nil
	}
	if !errors.Is(err, effectiveness.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to read effectiveness snapshot: %w", err)
	}

	entries, err := s.attendanceRepo.ListEntries(ctx, employeeID, p)
	if err != nil {
		return 0, fmt.Errorf("failed to read attendance grid: %w", err)
	}
	return attendance.Count(entries).Unjustified, nil
}

// ManualSubsidies implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ManualSubsidies(ctx context.Context, employeeID string, p period.Period) (*attendance.ManualSubsidies, error) {
	subsidies, err := s.attendanceRepo.GetSubsidies(ctx, employeeID, p)
	if errors.Is(err, attendance.ErrSubsidiesNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manual subsidies: %w", err)
	}
	return &subsidies, nil
}

// GetGrid implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetGrid(ctx context.Context, employeeID string, p period.Period) (attendance.GridResponse, error) {
	if err := p.Validate(); err != nil {
		return attendance.GridResponse{}, err
	}

	entries, err := s.attendanceRepo.ListEntries(ctx, employeeID, p)
	if err != nil {
		return attendance.GridResponse{}, fmt.Errorf("failed to read attendance grid: %w", err)
	}
	tally := attendance.Count(entries)

	resp := attendance.GridResponse{
		EmployeeID:      employeeID,
		Period:          p.String(),
		DaysInMonth:     p.DaysInMonth(),
		Entries:         make([]attendance.EntryResponse, 0, len(entries)),
		UnjustifiedDays: tally.Unjustified,
		JustifiedDays:   tally.Justified,
		WorkedDays:      tally.Worked,
		VacationDays:    tally.Vacation,
		OvertimeHours:   tally.OvertimeHours,
		LostHours:       tally.LostHours,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, mapEntryToResponse(e))
	}

	subsidies, err := s.ManualSubsidies(ctx, employeeID, p)
	if err != nil {
		return attendance.GridResponse{}, err
	}
	if subsidies != nil {
		resp.ManualSubsidies = &attendance.SubsidiesResponse{Transport: subsidies.Transport, Food: subsidies.Food}
	}

	open, err := s.gate.IsOpen(ctx, employeeID, p)
	if err != nil {
		return attendance.GridResponse{}, err
	}
	resp.EffectivenessSet = open

	return resp, nil
}

func mapEntryToResponse(e attendance.Entry) attendance.EntryResponse {
	return attendance.EntryResponse{
		Day:            e.Day,
		Classification: e.Classification,
		OvertimeHours:  e.OvertimeHours,
		LostHours:      e.LostHours,
		UpdatedAt:      e.UpdatedAt.Format(time.RFC3339),
	}
}
