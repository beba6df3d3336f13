package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")
	var ran atomic.Int32

	s.AddJob(Job{Name: "ok", Interval: time.Hour, Fn: func(ctx context.Context) error {
		ran.Add(1)
		return nil
	}})
	s.AddJob(Job{Name: "failing", Interval: time.Hour, Fn: func(ctx context.Context) error {
		ran.Add(1)
		return boom
	}})

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), ran.Load())
}

func TestScheduler_RecoversPanic(t *testing.T) {
	s := NewScheduler()
	s.AddJob(Job{Name: "panics", Interval: time.Hour, Fn: func(ctx context.Context) error {
		panic("nil map")
	}})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panics")
}

func TestScheduler_TimeoutCancelsRun(t *testing.T) {
	s := NewScheduler()
	s.AddJob(Job{Name: "slow", Interval: time.Hour, Timeout: 10 * time.Millisecond, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	assert.ErrorIs(t, s.RunOnce(context.Background()), context.DeadlineExceeded)
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	done := make(chan struct{}, 1)
	s.AddJob(Job{Name: "tick", Interval: time.Hour, Fn: func(ctx context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	}})

	s.Start()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}

type retryStub struct {
	payment.PaymentService
	posted int
	err    error
	calls  int
}

func (r *retryStub) RetryFailed(ctx context.Context) (int, error) {
	r.calls++
	return r.posted, r.err
}

func TestPayrollJobs_RetryFailedPostings(t *testing.T) {
	stub := &retryStub{posted: 2}
	s := NewScheduler()
	NewPayrollJobs(stub).RegisterJobs(s, time.Minute)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, stub.calls)

	stub.err = errors.New("ledger down")
	assert.Error(t, s.RunOnce(context.Background()))
}
