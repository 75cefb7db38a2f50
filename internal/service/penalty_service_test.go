package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coopfin/loan-engine/internal/domain"
	"github.com/coopfin/loan-engine/internal/mocks"
)

func newTestPenaltyService(loanRepo *mocks.MockLoanRepository) *PenaltyService {
	return NewPenaltyService(loanRepo, nil, decimal.RequireFromString("0.05"))
}

func TestSweep_PenalizesMissedInstallment(t *testing.T) {
	loanRepo := &mocks.MockLoanRepository{}
	svc := newTestPenaltyService(loanRepo)

	loan := approvedLoan(20800)
	loan.CreatedAt = time.Date(2026, time.July, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.August, 15, 9, 0, 0, 0, time.UTC)

	loanRepo.On("ListByStatus", mock.Anything, domain.LoanStatusApproved).Return([]*domain.Loan{loan}, nil)
	loanRepo.On("UpdateWithVersion", mock.Anything, loan).Return(nil)

	results, err := svc.Sweep(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Month)
	assert.True(t, results[0].Penalty.Equal(decimal.RequireFromString("346.65")))
	assert.True(t, loan.Installments[0].PenaltyApplied)
	assert.True(t, loan.RepaymentAmount.Equal(decimal.RequireFromString("21146.65")))

	loanRepo.AssertExpectations(t)
}

func TestSweep_SkipsLoansYoungerThanOneMonth(t *testing.T) {
	loanRepo := &mocks.MockLoanRepository{}
	svc := newTestPenaltyService(loanRepo)

	loan := approvedLoan(20800)
	loan.CreatedAt = time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)

	loanRepo.On("ListByStatus", mock.Anything, domain.LoanStatusApproved).Return([]*domain.Loan{loan}, nil)

	results, err := svc.Sweep(context.Background(), now)

	require.NoError(t, err)
	assert.Empty(t, results)
	loanRepo.AssertNotCalled(t, "UpdateWithVersion", mock.Anything, mock.Anything)
}

func TestSweep_WaitsForAnniversaryDay(t *testing.T) {
	loanRepo := &mocks.MockLoanRepository{}
	svc := newTestPenaltyService(loanRepo)

	// Created on the 20th; on August 15 the monthly anniversary has not
	// occurred yet
	loan := approvedLoan(20800)
	loan.CreatedAt = time.Date(2026, time.July, 20, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.August, 15, 9, 0, 0, 0, time.UTC)

	loanRepo.On("ListByStatus", mock.Anything, domain.LoanStatusApproved).Return([]*domain.Loan{loan}, nil)

	results, err := svc.Sweep(context.Background(), now)

	require.NoError(t, err)
	assert.Empty(t, results)
	loanRepo.AssertNotCalled(t, "UpdateWithVersion", mock.Anything, mock.Anything)
}

func TestSweep_SecondRunSamePeriodIsNoOp(t *testing.T) {
	loanRepo := &mocks.MockLoanRepository{}
	svc := newTestPenaltyService(loanRepo)

	loan := approvedLoan(20800)
	loan.CreatedAt = time.Date(2026, time.July, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.August, 15, 9, 0, 0, 0, time.UTC)

	loanRepo.On("ListByStatus", mock.Anything, domain.LoanStatusApproved).Return([]*domain.Loan{loan}, nil)
	loanRepo.On("UpdateWithVersion", mock.Anything, loan).Return(nil).Once()

	first, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, first, 1)

	repaymentAfterFirst := loan.RepaymentAmount

	second, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, second, "re-running the sweep in the same period must not double-charge")
	assert.True(t, loan.RepaymentAmount.Equal(repaymentAfterFirst))

	loanRepo.AssertExpectations(t)
}

func TestSweep_SkipsPaidInstallments(t *testing.T) {
	loanRepo := &mocks.MockLoanRepository{}
	svc := newTestPenaltyService(loanRepo)

	loan := approvedLoan(20800)
	loan.CreatedAt = time.Date(2026, time.July, 10, 9, 0, 0, 0, time.UTC)
	loan.ApplyPayment(decimal.NewFromInt(6933))
	now := time.Date(2026, time.August, 15, 9, 0, 0, 0, time.UTC)

	loanRepo.On("ListByStatus", mock.Anything, domain.LoanStatusApproved).Return([]*domain.Loan{loan}, nil)

	results, err := svc.Sweep(context.Background(), now)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSweep_FailureOnOneLedgerDoesNotAbortOthers(t *testing.T) {
	loanRepo := &mocks.MockLoanRepository{}
	svc := newTestPenaltyService(loanRepo)

	broken := approvedLoan(20800)
	broken.CreatedAt = time.Date(2026, time.July, 10, 9, 0, 0, 0, time.UTC)

	healthy := approvedLoan(20800)
	healthy.MemberNumber = 445577
	healthy.CreatedAt = time.Date(2026, time.June, 5, 9, 0, 0, 0, time.UTC)

	now := time.Date(2026, time.August, 15, 9, 0, 0, 0, time.UTC)

	loanRepo.On("ListByStatus", mock.Anything, domain.LoanStatusApproved).Return([]*domain.Loan{broken, healthy}, nil)
	loanRepo.On("UpdateWithVersion", mock.Anything, broken).Return(errors.New("write conflict"))
	loanRepo.On("UpdateWithVersion", mock.Anything, healthy).Return(nil)

	results, err := svc.Sweep(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(445577), results[0].MemberNumber)

	loanRepo.AssertExpectations(t)
}
