package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/coopfin/loan-engine/internal/domain"
	"github.com/coopfin/loan-engine/internal/interest"
	"github.com/coopfin/loan-engine/internal/repository"
	customError "github.com/coopfin/loan-engine/pkg/errors"
)

// maxPaymentRetries bounds the optimistic-concurrency retry loop when two
// payments race on the same ledger.
const maxPaymentRetries = 3

// LoanService owns the loan lifecycle: origination (including consolidation
// of an outstanding approved loan), status transitions, payment application
// and the read paths behind the API.
type LoanService struct {
	loanRepo    repository.LoanRepository
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
	cache       *activeLoanCache
	pricing     interest.Config
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	pricing interest.Config,
) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		cache:       &activeLoanCache{client: redisClient},
		pricing:     pricing,
	}
}

// ComputeTerms prices a prospective loan without persisting anything,
// applying the same rules origination would: a pending loan blocks, an
// approved loan's outstanding balance is folded into the quoted principal.
func (s *LoanService) ComputeTerms(ctx context.Context, memberNumber int64, amount decimal.Decimal, termMonths int) (*interest.Terms, error) {
	if _, err := s.lookupUser(ctx, memberNumber); err != nil {
		return nil, err
	}

	open, err := s.loanRepo.ListNonTerminal(ctx, memberNumber)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	effectivePrincipal := amount
	for _, loan := range open {
		switch loan.Status {
		case domain.LoanStatusPending:
			return nil, customError.WrapPendingLoanExists(memberNumber)
		case domain.LoanStatusApproved:
			effectivePrincipal = amount.Add(loan.RepaymentAmount)
		}
	}

	return interest.ComputeTerms(effectivePrincipal, termMonths, s.pricing)
}

// Originate creates a loan ledger for a member.
//
// A member holds at most one non-terminal loan. A pending loan blocks
// origination outright. An approved loan is consolidated instead: its
// outstanding balance is folded into the new principal, its remaining
// installments are settled, it is completed, and the replacement loan starts
// life approved rather than pending.
func (s *LoanService) Originate(ctx context.Context, memberNumber int64, amount decimal.Decimal, termMonths int) (*domain.Loan, error) {
	user, err := s.lookupUser(ctx, memberNumber)
	if err != nil {
		return nil, err
	}

	open, err := s.loanRepo.ListNonTerminal(ctx, memberNumber)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	var consolidated *domain.Loan
	for _, loan := range open {
		switch loan.Status {
		case domain.LoanStatusPending:
			return nil, customError.WrapPendingLoanExists(memberNumber)
		case domain.LoanStatusApproved:
			consolidated = loan
		}
	}

	effectivePrincipal := amount
	status := domain.LoanStatusPending
	if consolidated != nil {
		effectivePrincipal = amount.Add(consolidated.RepaymentAmount)
		status = domain.LoanStatusApproved
	}

	terms, err := interest.ComputeTerms(effectivePrincipal, termMonths, s.pricing)
	if err != nil {
		return nil, err
	}

	if consolidated != nil {
		consolidated.SettleAllInstallments()
		consolidated.Status = domain.LoanStatusCompleted
		consolidated.RepaymentAmount = decimal.Zero
		if err := s.loanRepo.UpdateWithVersion(ctx, consolidated); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:                   uuid.New(),
		BorrowerID:           user.ID,
		FullName:             user.FullName,
		MemberNumber:         user.MemberNumber,
		Amount:               effectivePrincipal,
		TermMonths:           termMonths,
		Status:               status,
		InterestRate:         terms.Rate,
		InterestAmount:       terms.InterestAmount,
		TotalInterestAccrued: terms.InterestAmount,
		RepaymentAmount:      terms.RepaymentAmount,
		RecurringFee:         terms.RecurringFee,
		FinalPayment:         terms.FinalPayment,
		CreatedAt:            now,
		UpdatedAt:            now,
		Installments:         make([]domain.Installment, 0, termMonths),
	}

	for _, inst := range terms.Installments {
		inst.ID = uuid.New()
		inst.LoanID = loan.ID
		loan.Installments = append(loan.Installments, inst)
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.cache.Invalidate(ctx, memberNumber)

	return loan, nil
}

// UpdateStatus transitions a member's pending loan to approved or rejected.
// Anything other than a pending loan means there is nothing to transition.
func (s *LoanService) UpdateStatus(ctx context.Context, memberNumber int64, status string) (*domain.Loan, error) {
	if status != domain.LoanStatusApproved && status != domain.LoanStatusRejected {
		return nil, customError.WrapInvalidInput(fmt.Sprintf("status must be approved or rejected, got %s", status))
	}

	loan, err := s.loanRepo.GetByMemberAndStatus(ctx, memberNumber, domain.LoanStatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(memberNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	updated, err := s.loanRepo.UpdateStatusIfPending(ctx, loan.ID, status)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !updated {
		// Lost the race with another transition
		return nil, customError.WrapLoanNotFound(memberNumber)
	}

	loan.Status = status
	s.cache.Invalidate(ctx, memberNumber)

	return loan, nil
}

// ActiveLoan returns the member's approved loan.
func (s *LoanService) ActiveLoan(ctx context.Context, memberNumber int64) (*domain.Loan, error) {
	if loan, ok := s.cache.Get(ctx, memberNumber); ok {
		return loan, nil
	}

	loan, err := s.loanRepo.GetByMemberAndStatus(ctx, memberNumber, domain.LoanStatusApproved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(memberNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.cache.Set(ctx, loan)

	return loan, nil
}

// ListByStatus returns all loans with the given status, newest first.
func (s *LoanService) ListByStatus(ctx context.Context, status string) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(loans) == 0 {
		return nil, customError.WrapNoLoansForStatus(status)
	}

	return loans, nil
}

// History returns a member's full loan history, newest first. Completed and
// rejected loans are retained as historical records.
func (s *LoanService) History(ctx context.Context, memberNumber int64) ([]*domain.Loan, error) {
	if _, err := s.lookupUser(ctx, memberNumber); err != nil {
		return nil, err
	}

	loans, err := s.loanRepo.ListByMember(ctx, memberNumber)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(loans) == 0 {
		return nil, customError.WrapLoanNotFound(memberNumber)
	}

	return loans, nil
}

// MakePayment applies a payment to the member's approved loan. The whole
// read-modify-write is guarded by the ledger version; a concurrent mutation
// triggers a re-read and re-apply rather than a lost update.
func (s *LoanService) MakePayment(ctx context.Context, memberNumber int64, amount decimal.Decimal) (*domain.Loan, error) {
	if !amount.IsPositive() {
		return nil, customError.WrapInvalidInput(fmt.Sprintf("payment amount must be positive, got %s", amount))
	}

	for attempt := 0; attempt < maxPaymentRetries; attempt++ {
		loan, err := s.loanRepo.GetByMemberAndStatus(ctx, memberNumber, domain.LoanStatusApproved)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapLoanNotFound(memberNumber)
			}
			return nil, customError.WrapDatabaseError(err)
		}

		loan.ApplyPayment(amount)

		if err := s.loanRepo.UpdateWithVersion(ctx, loan); err != nil {
			if errors.Is(err, customError.ErrVersionConflict) {
				continue
			}
			return nil, customError.WrapDatabaseError(err)
		}

		s.recordPayment(ctx, loan, amount)
		s.cache.Invalidate(ctx, memberNumber)

		return loan, nil
	}

	return nil, customError.WrapDatabaseError(customError.ErrVersionConflict)
}

// Stats returns the loans originated within the requested range.
func (s *LoanService) Stats(ctx context.Context, rng string) ([]*domain.Loan, error) {
	now := time.Now()

	var since time.Time
	switch rng {
	case "today":
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		since = now.AddDate(0, 0, -7)
	case "month":
		since = now.AddDate(0, -1, 0)
	default:
		return nil, customError.WrapInvalidInput(fmt.Sprintf("range must be today, week or month, got %q", rng))
	}

	loans, err := s.loanRepo.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

func (s *LoanService) lookupUser(ctx context.Context, memberNumber int64) (*domain.User, error) {
	user, err := s.userRepo.GetByMemberNumber(ctx, memberNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(memberNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return user, nil
}

// recordPayment writes the payment audit row. The ledger mutation has
// already committed, so a failure here is logged rather than surfaced.
func (s *LoanService) recordPayment(ctx context.Context, loan *domain.Loan, amount decimal.Decimal) {
	payment := &domain.Payment{
		ID:           uuid.New(),
		LoanID:       loan.ID,
		MemberNumber: loan.MemberNumber,
		Amount:       amount,
		CreatedAt:    time.Now(),
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		slog.Error("recording payment audit row", "loan_id", loan.ID, "error", err)
	}
}
