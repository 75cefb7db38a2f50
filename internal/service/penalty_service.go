package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/coopfin/loan-engine/internal/domain"
	"github.com/coopfin/loan-engine/internal/repository"
	customError "github.com/coopfin/loan-engine/pkg/errors"
	"github.com/coopfin/loan-engine/pkg/utils"
)

const (
	sweepLockKey = "loan:penalty-sweep:lock"
	sweepLockTTL = 5 * time.Minute
)

// PenaltyService runs the recurring late-payment sweep over approved loans.
// It is invoked by the scheduler (or the internal trigger endpoint) and is
// safe under at-least-once delivery: each installment accrues at most one
// penalty ever, guarded by its penalty flag.
type PenaltyService struct {
	loanRepo    repository.LoanRepository
	redisClient *redis.Client
	cache       *activeLoanCache
	penaltyRate decimal.Decimal
}

func NewPenaltyService(loanRepo repository.LoanRepository, redisClient *redis.Client, penaltyRate decimal.Decimal) *PenaltyService {
	return &PenaltyService{
		loanRepo:    loanRepo,
		redisClient: redisClient,
		cache:       &activeLoanCache{client: redisClient},
		penaltyRate: penaltyRate,
	}
}

// Sweep scans every approved loan as of now and charges the late fee for the
// installment that fell due in the most recently elapsed month, if it is
// still unpaid and not yet penalized. A loan is skipped until a full month
// has passed and until the monthly anniversary day has occurred. Failures on
// one ledger are logged and do not stop the sweep. Returns the ledgers
// mutated, for auditing.
func (s *PenaltyService) Sweep(ctx context.Context, now time.Time) ([]domain.SweepResult, error) {
	release, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	loans, err := s.loanRepo.ListByStatus(ctx, domain.LoanStatusApproved)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	results := make([]domain.SweepResult, 0)
	for _, loan := range loans {
		monthsPassed := utils.MonthsPassed(loan.CreatedAt, now)
		if monthsPassed < 1 {
			continue
		}
		if !utils.AnniversaryReached(loan.CreatedAt, now) {
			continue
		}

		penalty, applied := loan.ApplyPenalty(monthsPassed, s.penaltyRate)
		if !applied {
			continue
		}

		if err := s.loanRepo.UpdateWithVersion(ctx, loan); err != nil {
			slog.Error("applying penalty",
				"loan_id", loan.ID,
				"member_number", loan.MemberNumber,
				"month", monthsPassed,
				"error", err,
			)
			continue
		}

		s.cache.Invalidate(ctx, loan.MemberNumber)

		results = append(results, domain.SweepResult{
			LoanID:          loan.ID,
			MemberNumber:    loan.MemberNumber,
			Month:           monthsPassed,
			Penalty:         penalty,
			RepaymentAmount: loan.RepaymentAmount,
		})

		slog.Info("penalty applied",
			"loan_id", loan.ID,
			"member_number", loan.MemberNumber,
			"month", monthsPassed,
			"penalty", penalty,
		)
	}

	return results, nil
}

// acquireLock takes the sweep lock so overlapping scheduler ticks cannot run
// two sweeps at once. Without redis the lock is a no-op; the penalty flags
// still make the sweep idempotent.
func (s *PenaltyService) acquireLock(ctx context.Context) (func(), error) {
	if s.redisClient == nil {
		return func() {}, nil
	}

	acquired, err := s.redisClient.SetNX(ctx, sweepLockKey, "1", sweepLockTTL).Result()
	if err != nil {
		return nil, customError.WrapCacheError(err)
	}
	if !acquired {
		return nil, customError.NewBusinessError(
			customError.ErrCodeConflict,
			"A penalty sweep is already running",
			customError.ErrSweepLocked,
		)
	}

	return func() {
		if err := s.redisClient.Del(ctx, sweepLockKey).Err(); err != nil {
			slog.Warn("releasing sweep lock", "error", err)
		}
	}, nil
}
