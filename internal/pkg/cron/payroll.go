package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
)

const RetryFailedPostingsJob = "retry_failed_payroll_postings"

type PayrollJobs struct {
	paymentService payment.PaymentService
}

func NewPayrollJobs(paymentService payment.PaymentService) *PayrollJobs {
	return &PayrollJobs{paymentService: paymentService}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, retryInterval time.Duration) {
	scheduler.AddJob(Job{
		Name:     RetryFailedPostingsJob,
		Interval: retryInterval,
		Timeout:  retryInterval,
		Fn:       j.RetryFailedPostings,
	})
}

// RetryFailedPostings re-posts every failed batch with the same
// idempotency key, so a batch the ledger already accepted is not paid twice.
func (j *PayrollJobs) RetryFailedPostings(ctx context.Context) error {
	posted, err := j.paymentService.RetryFailed(ctx)
	if posted > 0 {
		slog.Info("Cron: Failed payroll postings retried", "posted", posted)
	}
	return err
}
