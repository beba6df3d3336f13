package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

type SlipRepository struct {
	mu    sync.RWMutex
	slips map[key]payroll.SalarySlip
	byID  map[string]key
}

func NewSlipRepository() *SlipRepository {
	return &SlipRepository{
		slips: make(map[key]payroll.SalarySlip),
		byID:  make(map[string]key),
	}
}

func cloneSlip(s payroll.SalarySlip) payroll.SalarySlip {
	if s.Warnings != nil {
		s.Warnings = append([]payroll.ClampWarning(nil), s.Warnings...)
	}
	if s.PaymentID != nil {
		id := *s.PaymentID
		s.PaymentID = &id
	}
	if s.PaidAt != nil {
		at := *s.PaidAt
		s.PaidAt = &at
	}
	return s
}

func (r *SlipRepository) Insert(_ context.Context, slip payroll.SalarySlip) (payroll.SalarySlip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(slip.EmployeeID, slip.Period)
	if _, ok := r.slips[k]; ok {
		return payroll.SalarySlip{}, payroll.ErrDuplicatePeriod
	}
	r.putLocked(k, slip)
	return cloneSlip(slip), nil
}

func (r *SlipRepository) Replace(_ context.Context, slip payroll.SalarySlip) (payroll.SalarySlip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(slip.EmployeeID, slip.Period)
	if old, ok := r.slips[k]; ok {
		if old.PaymentID != nil {
			return payroll.SalarySlip{}, payroll.ErrAlreadyPaid
		}
		delete(r.byID, old.ID)
		slip.CreatedAt = old.CreatedAt
	}
	r.putLocked(k, slip)
	return cloneSlip(slip), nil
}

func (r *SlipRepository) putLocked(k key, slip payroll.SalarySlip) {
	r.slips[k] = cloneSlip(slip)
	r.byID[slip.ID] = k
}

func (r *SlipRepository) Get(_ context.Context, employeeID string, p period.Period) (payroll.SalarySlip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slip, ok := r.slips[keyOf(employeeID, p)]
	if !ok {
		return payroll.SalarySlip{}, payroll.ErrSlipNotFound
	}
	return cloneSlip(slip), nil
}

func (r *SlipRepository) Exists(_ context.Context, employeeID string, p period.Period) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.slips[keyOf(employeeID, p)]
	return ok, nil
}

func (r *SlipRepository) ListByPeriod(_ context.Context, p period.Period) ([]payroll.SalarySlip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payroll.SalarySlip
	for k, slip := range r.slips {
		if k.period == p {
			out = append(out, cloneSlip(slip))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}

func (r *SlipRepository) ListByEmployees(_ context.Context, p period.Period, employeeIDs []string) ([]payroll.SalarySlip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payroll.SalarySlip
	for _, id := range employeeIDs {
		if slip, ok := r.slips[keyOf(id, p)]; ok {
			out = append(out, cloneSlip(slip))
		}
	}
	return out, nil
}

func (r *SlipRepository) Delete(_ context.Context, employeeID string, p period.Period) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(employeeID, p)
	slip, ok := r.slips[k]
	if !ok {
		return payroll.ErrSlipNotFound
	}
	delete(r.slips, k)
	delete(r.byID, slip.ID)
	return nil
}

func (r *SlipRepository) ClaimForPayment(_ context.Context, slipIDs []string, paymentID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []string
	for _, id := range slipIDs {
		k, ok := r.byID[id]
		if !ok {
			continue
		}
		slip := r.slips[k]
		if slip.PaymentID != nil {
			continue
		}
		pid := paymentID
		slip.PaymentID = &pid
		r.slips[k] = slip
		claimed = append(claimed, id)
	}
	return claimed, nil
}

func (r *SlipRepository) MarkPaid(_ context.Context, paymentID string, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, slip := range r.slips {
		if slip.PaymentID != nil && *slip.PaymentID == paymentID {
			at := paidAt
			slip.PaidAt = &at
			r.slips[k] = slip
		}
	}
	return nil
}

func (r *SlipRepository) ListByPayment(_ context.Context, paymentID string) ([]payroll.SalarySlip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payroll.SalarySlip
	for _, slip := range r.slips {
		if slip.PaymentID != nil && *slip.PaymentID == paymentID {
			out = append(out, cloneSlip(slip))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}

func (r *SlipRepository) ReleaseClaims(_ context.Context, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, slip := range r.slips {
		if slip.PaymentID != nil && *slip.PaymentID == paymentID && slip.PaidAt == nil {
			slip.PaymentID = nil
			r.slips[k] = slip
		}
	}
	return nil
}
