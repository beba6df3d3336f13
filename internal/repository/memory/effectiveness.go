package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

type EffectivenessRepository struct {
	mu      sync.RWMutex
	records map[key]effectiveness.Record
}

func NewEffectivenessRepository() *EffectivenessRepository {
	return &EffectivenessRepository{records: make(map[key]effectiveness.Record)}
}

func (r *EffectivenessRepository) Upsert(_ context.Context, record effectiveness.Record) (effectiveness.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[keyOf(record.EmployeeID, record.Period)] = record
	return record, nil
}

func (r *EffectivenessRepository) Get(_ context.Context, employeeID string, p period.Period) (effectiveness.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[keyOf(employeeID, p)]
	if !ok {
		return effectiveness.Record{}, effectiveness.ErrRecordNotFound
	}
	return record, nil
}

func (r *EffectivenessRepository) Delete(_ context.Context, employeeID string, p period.Period) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(employeeID, p)
	if _, ok := r.records[k]; !ok {
		return effectiveness.ErrRecordNotFound
	}
	delete(r.records, k)
	return nil
}

func (r *EffectivenessRepository) ListByPeriod(_ context.Context, p period.Period) ([]effectiveness.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []effectiveness.Record
	for k, record := range r.records {
		if k.period == p {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}
