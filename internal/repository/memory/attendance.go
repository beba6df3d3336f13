package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

type AttendanceRepository struct {
	mu        sync.RWMutex
	entries   map[key]map[int]attendance.Entry
	subsidies map[key]attendance.ManualSubsidies
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{
		entries:   make(map[key]map[int]attendance.Entry),
		subsidies: make(map[key]attendance.ManualSubsidies),
	}
}

func (r *AttendanceRepository) UpsertEntry(_ context.Context, entry attendance.Entry) (attendance.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putLocked(entry)
	return entry, nil
}

// UpsertEntries writes all entries under one lock.
func (r *AttendanceRepository) UpsertEntries(_ context.Context, entries []attendance.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.putLocked(e)
	}
	return nil
}

func (r *AttendanceRepository) putLocked(e attendance.Entry) {
	k := keyOf(e.EmployeeID, e.Period)
	days, ok := r.entries[k]
	if !ok {
		days = make(map[int]attendance.Entry)
		r.entries[k] = days
	}
	days[e.Day] = e
}

func (r *AttendanceRepository) ListEntries(_ context.Context, employeeID string, p period.Period) ([]attendance.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	days := r.entries[keyOf(employeeID, p)]
	out := make([]attendance.Entry, 0, len(days))
	for _, e := range days {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (r *AttendanceRepository) UpsertSubsidies(_ context.Context, s attendance.ManualSubsidies) (attendance.ManualSubsidies, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subsidies[keyOf(s.EmployeeID, s.Period)] = s
	return s, nil
}

func (r *AttendanceRepository) GetSubsidies(_ context.Context, employeeID string, p period.Period) (attendance.ManualSubsidies, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subsidies[keyOf(employeeID, p)]
	if !ok {
		return attendance.ManualSubsidies{}, attendance.ErrSubsidiesNotFound
	}
	return s, nil
}
