package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/keylock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// computeConcurrency bounds the number of slips computed in parallel per batch.
const computeConcurrency = 4

// stalePendingAfter is how long a pending payment may sit before a retry
// treats its poster as gone.
const stalePendingAfter = 5 * time.Minute

type GateChecker interface {
	IsOpen(ctx context.Context, employeeID string, p period.Period) (bool, error)
}

type PaymentServiceImpl struct {
	transactor         database.Transactor
	paymentRepo        payment.PaymentRepository
	slipRepo           payroll.SlipRepository
	payrollService     payroll.PayrollService
	gate               GateChecker
	ledger             payment.LedgerPoster
	locks              *keylock.Locker
	defaultCashAccount string
	staleAfter         time.Duration
	now                func() time.Time
}

func NewPaymentService(
	transactor database.Transactor,
	paymentRepo payment.PaymentRepository,
	slipRepo payroll.SlipRepository,
	payrollService payroll.PayrollService,
	gate GateChecker,
	ledger payment.LedgerPoster,
	locks *keylock.Locker,
	defaultCashAccount string,
) payment.PaymentService {
	return &PaymentServiceImpl{
		transactor:         transactor,
		paymentRepo:        paymentRepo,
		slipRepo:           slipRepo,
		payrollService:     payrollService,
		gate:               gate,
		ledger:             ledger,
		locks:              locks,
		defaultCashAccount: defaultCashAccount,
		staleAfter:         stalePendingAfter,
		now:                time.Now,
	}
}

// batchState collects per-employee outcomes from the compute fan-out.
type batchState struct {
	mu      sync.Mutex
	slips   []payment.PaymentSlip
	skipped []payment.SkippedEmployee
}

func (b *batchState) addSlip(s payment.PaymentSlip) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slips = append(b.slips, s)
}

func (b *batchState) skip(employeeID, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.skipped = append(b.skipped, payment.SkippedEmployee{EmployeeID: employeeID, Reason: reason})
}

// PostBatch implements payment.PaymentService.
func (s *PaymentServiceImpl) PostBatch(ctx context.Context, req payment.PostBatchRequest) (payment.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return payment.BatchResult{}, err
	}

	cashAccount := req.CashAccountID
	if cashAccount == "" {
		cashAccount = s.defaultCashAccount
	}
	if cashAccount == "" {
		return payment.BatchResult{}, payment.ErrNoCashAccount
	}

	employeeIDs := dedupe(req.EmployeeIDs)
	existing, err := s.slipRepo.ListByEmployees(ctx, req.Period, employeeIDs)
	if err != nil {
		return payment.BatchResult{}, fmt.Errorf("failed to read salary slips: %w", err)
	}
	slipByEmployee := make(map[string]payroll.SalarySlip, len(existing))
	for _, slip := range existing {
		slipByEmployee[slip.EmployeeID] = slip
	}

	state := &batchState{}
	var toCompute []string

	// 1. gate check, reuse or queue for computation
	for _, id := range employeeIDs {
		open, err := s.gate.IsOpen(ctx, id, req.Period)
		if err != nil {
			return payment.BatchResult{}, fmt.Errorf("failed to check effectiveness: %w", err)
		}
		if !open {
			state.skip(id, payment.SkipReasonGateClosed)
			continue
		}

		slip, ok := slipByEmployee[id]
		switch {
		case !ok:
			toCompute = append(toCompute, id)
		case slip.PaymentID != nil:
			state.skip(id, payment.SkipReasonAlreadyPaid)
		default:
			state.addSlip(payment.PaymentSlip{SlipID: slip.ID, EmployeeID: id, NetTotal: slip.NetTotal})
		}
	}

	// 2. compute missing slips with employee defaults
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(computeConcurrency)
	for _, id := range toCompute {
		id := id // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			return s.computeForBatch(gCtx, id, req.Period, state)
		})
	}
	if err := g.Wait(); err != nil {
		return payment.BatchResult{}, err
	}

	result := payment.BatchResult{
		Period:         req.Period.String(),
		CashAccountID:  cashAccount,
		CreatedSlipIDs: []string{},
		PaidSlipIDs:    []string{},
		TotalPosted:    decimal.Zero,
	}

	candidates := state.slips
	if len(candidates) == 0 {
		result.Skipped = state.skipped
		return result, nil
	}

	// 3. claim slips and record the pending payment as one unit
	p := payment.Payment{
		ID:            uuid.New().String(),
		Period:        req.Period,
		CashAccountID: cashAccount,
		Status:        payment.StatusPending,
		RequestedBy:   jwt.ActorID(ctx),
		CreatedAt:     s.now(),
	}
	p.UpdatedAt = p.CreatedAt

	claimedAny := false
	err = s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		ids := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.SlipID)
		}
		claimed, err := s.slipRepo.ClaimForPayment(txCtx, ids, p.ID)
		if err != nil {
			return fmt.Errorf("failed to claim salary slips: %w", err)
		}
		claimedAny = len(claimed) > 0

		claimedSet := make(map[string]bool, len(claimed))
		for _, id := range claimed {
			claimedSet[id] = true
		}
		// 4. sum what this batch actually owns
		p.Amount = decimal.Zero
		for _, c := range candidates {
			if !claimedSet[c.SlipID] {
				state.skip(c.EmployeeID, payment.SkipReasonAlreadyPaid)
				continue
			}
			p.Slips = append(p.Slips, c)
			p.Amount = p.Amount.Add(c.NetTotal)
		}
		if len(p.Slips) == 0 {
			return nil
		}

		created, err := s.paymentRepo.Create(txCtx, p)
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		p = created
		return nil
	})
	if err != nil {
		// a transactor without rollback keeps the claims; give them back
		if claimedAny {
			if relErr := s.slipRepo.ReleaseClaims(ctx, p.ID); relErr != nil {
				slog.Error("Failed to release salary slip claims", "payment_id", p.ID, "error", relErr)
			}
		}
		return payment.BatchResult{}, err
	}

	result.Skipped = state.skipped
	if len(p.Slips) == 0 {
		return result, nil
	}

	result.PaymentID = p.ID
	result.CreatedSlipIDs = nonNil(p.CreatedSlipIDs())
	result.PaidSlipIDs = p.SlipIDs()

	// 5. one ledger movement for the whole batch
	unlock := s.locks.Lock(paymentKey(p.ID))
	posted, err := s.post(ctx, p)
	unlock()
	if err != nil {
		result.Status = payment.StatusFailed
		return result, err
	}
	result.Status = posted.Status
	result.TotalPosted = posted.Amount
	return result, nil
}

func (s *PaymentServiceImpl) computeForBatch(ctx context.Context, employeeID string, p period.Period, state *batchState) error {
	slip, err := s.payrollService.ComputeAndStore(ctx, payroll.ComputeRequest{EmployeeID: employeeID, Period: p}, false)
	switch {
	case err == nil:
		state.addSlip(payment.PaymentSlip{SlipID: slip.ID, EmployeeID: employeeID, NetTotal: slip.NetTotal, Created: true})
		return nil
	case errors.Is(err, payroll.ErrDuplicatePeriod):
		// stored by a concurrent request after we listed
		existing, err := s.slipRepo.Get(ctx, employeeID, p)
		if err != nil {
			return fmt.Errorf("failed to read salary slip for %s: %w", employeeID, err)
		}
		if existing.PaymentID != nil {
			state.skip(employeeID, payment.SkipReasonAlreadyPaid)
			return nil
		}
		state.addSlip(payment.PaymentSlip{SlipID: existing.ID, EmployeeID: employeeID, NetTotal: existing.NetTotal})
		return nil
	case errors.Is(err, payroll.ErrGateClosed):
		state.skip(employeeID, payment.SkipReasonGateClosed)
		return nil
	case errors.Is(err, employee.ErrEmployeeNotFound):
		state.skip(employeeID, payment.SkipReasonNotFound)
		return nil
	default:
		return fmt.Errorf("failed to compute salary slip for %s: %w", employeeID, err)
	}
}

// post sends the movement and records the outcome. Ledger failures come back
// as *payment.LedgerPostingError, recording failures after an accepted
// movement as *payment.LedgerRecordError.
func (s *PaymentServiceImpl) post(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	receipt, err := s.ledger.PostMovement(ctx, payment.MovementFor(p))
	if err != nil {
		slog.Error("Ledger posting failed",
			"payment_id", p.ID,
			"period", p.Period.String(),
			"amount", p.Amount.StringFixed(2),
			"error", err,
		)
		if markErr := s.paymentRepo.MarkFailed(ctx, p.ID, err.Error()); markErr != nil {
			slog.Error("Failed to mark payment as failed", "payment_id", p.ID, "error", markErr)
		}
		return p, &payment.LedgerPostingError{
			PaymentID:      p.ID,
			SlipIDs:        p.SlipIDs(),
			CreatedSlipIDs: p.CreatedSlipIDs(),
			Amount:         p.Amount,
			Err:            err,
		}
	}

	postedAt := s.now()
	err = s.transactor.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.paymentRepo.MarkPosted(txCtx, p.ID, receipt.Reference, postedAt); err != nil {
			return err
		}
		return s.slipRepo.MarkPaid(txCtx, p.ID, postedAt)
	})
	if err != nil {
		slog.Error("Ledger posted but payment not recorded",
			"payment_id", p.ID,
			"reference", receipt.Reference,
			"error", err,
		)
		// failed makes the batch retryable; the same key returns the same movement
		reason := fmt.Sprintf("posted to ledger as %q but not recorded: %v", receipt.Reference, err)
		if markErr := s.paymentRepo.MarkFailed(ctx, p.ID, reason); markErr != nil {
			slog.Error("Failed to mark payment as failed", "payment_id", p.ID, "error", markErr)
		}
		return p, &payment.LedgerRecordError{
			PaymentID: p.ID,
			Reference: receipt.Reference,
			SlipIDs:   p.SlipIDs(),
			Amount:    p.Amount,
			Err:       err,
		}
	}

	p.Status = payment.StatusPosted
	p.LedgerReference = &receipt.Reference
	p.PostedAt = &postedAt
	p.Attempts++

	slog.Info("Payroll payment posted",
		"payment_id", p.ID,
		"period", p.Period.String(),
		"amount", p.Amount.StringFixed(2),
		"slips", len(p.Slips),
		"reference", receipt.Reference,
	)
	return p, nil
}

// RetryPosting implements payment.PaymentService.
func (s *PaymentServiceImpl) RetryPosting(ctx context.Context, paymentID string) (payment.PaymentResponse, error) {
	unlock := s.locks.Lock(paymentKey(paymentID))
	defer unlock()

	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	if !s.retryable(p) {
		return payment.PaymentResponse{}, payment.ErrPaymentNotRetryable
	}
	if err := s.verifyClaims(ctx, p); err != nil {
		return payment.PaymentResponse{}, err
	}

	if _, err := s.post(ctx, p); err != nil {
		return payment.PaymentResponse{}, err
	}

	updated, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	return payment.ToResponse(updated), nil
}

// retryable is true for failed batches and for pending ones whose poster
// has not touched them for staleAfter.
func (s *PaymentServiceImpl) retryable(p payment.Payment) bool {
	switch p.Status {
	case payment.StatusFailed:
		return true
	case payment.StatusPending:
		return s.now().Sub(p.UpdatedAt) >= s.staleAfter
	default:
		return false
	}
}

// verifyClaims checks that every slip of the batch is still stored, still
// claimed by it and still carries the amount that was summed. Otherwise the
// batch is voided so the old amount is never posted.
func (s *PaymentServiceImpl) verifyClaims(ctx context.Context, p payment.Payment) error {
	current, err := s.slipRepo.ListByPayment(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to read payment slips: %w", err)
	}
	byID := make(map[string]payroll.SalarySlip, len(current))
	for _, slip := range current {
		byID[slip.ID] = slip
	}

	var changed, held []string
	for _, line := range p.Slips {
		slip, ok := byID[line.SlipID]
		if !ok || !slip.NetTotal.Equal(line.NetTotal) {
			changed = append(changed, line.SlipID)
			continue
		}
		held = append(held, line.SlipID)
	}
	if len(changed) == 0 {
		return nil
	}

	batchErr := &payment.BatchChangedError{PaymentID: p.ID, ChangedSlipIDs: changed, HeldSlipIDs: held}
	slog.Warn("Voiding payment whose slips changed",
		"payment_id", p.ID,
		"changed", changed,
		"held", held,
	)
	if err := s.paymentRepo.MarkVoid(ctx, p.ID, batchErr.Error()); err != nil {
		return fmt.Errorf("failed to void payment %s: %w", p.ID, err)
	}
	return batchErr
}

// RetryFailed implements payment.PaymentService.
func (s *PaymentServiceImpl) RetryFailed(ctx context.Context) (int, error) {
	var due []payment.Payment
	for _, status := range []payment.Status{payment.StatusFailed, payment.StatusPending} {
		list, err := s.paymentRepo.ListByStatus(ctx, status)
		if err != nil {
			return 0, fmt.Errorf("failed to list %s payments: %w", status, err)
		}
		for _, p := range list {
			if s.retryable(p) {
				due = append(due, p)
			}
		}
	}

	posted := 0
	var errs []error
	for _, p := range due {
		if _, err := s.RetryPosting(ctx, p.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		posted++
	}
	return posted, errors.Join(errs...)
}

// GetPayment implements payment.PaymentService.
func (s *PaymentServiceImpl) GetPayment(ctx context.Context, paymentID string) (payment.PaymentResponse, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	return payment.ToResponse(p), nil
}

func paymentKey(id string) string {
	return "payment|" + id
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
