package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
)

type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]payment.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[string]payment.Payment)}
}

func clonePayment(p payment.Payment) payment.Payment {
	p.Slips = append([]payment.PaymentSlip(nil), p.Slips...)
	return p
}

func (r *PaymentRepository) Create(_ context.Context, p payment.Payment) (payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID] = clonePayment(p)
	return clonePayment(p), nil
}

func (r *PaymentRepository) GetByID(_ context.Context, id string) (payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return payment.Payment{}, payment.ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

func (r *PaymentRepository) ListByStatus(_ context.Context, status payment.Status) ([]payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payment.Payment
	for _, p := range r.payments {
		if p.Status == status {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepository) MarkPosted(_ context.Context, id string, reference string, postedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return payment.ErrPaymentNotFound
	}
	p.Status = payment.StatusPosted
	p.LedgerReference = &reference
	p.FailureReason = nil
	p.PostedAt = &postedAt
	p.Attempts++
	p.UpdatedAt = postedAt
	r.payments[id] = p
	return nil
}

func (r *PaymentRepository) MarkFailed(_ context.Context, id string, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return payment.ErrPaymentNotFound
	}
	p.Status = payment.StatusFailed
	p.FailureReason = &reason
	p.Attempts++
	p.UpdatedAt = time.Now()
	r.payments[id] = p
	return nil
}

func (r *PaymentRepository) MarkVoid(_ context.Context, id string, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return payment.ErrPaymentNotFound
	}
	p.Status = payment.StatusVoid
	p.FailureReason = &reason
	p.UpdatedAt = time.Now()
	r.payments[id] = p
	return nil
}
