package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/coopfin/loan-engine/internal/domain"
)

// LoanRepository defines the interface for loan ledger data operations.
// Loans carry a version column; every read-modify-write goes through
// UpdateWithVersion so concurrent mutations of the same ledger cannot lose
// updates.
type LoanRepository interface {
	// Create persists a new loan together with its installment schedule
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan and its schedule by primary key
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetByMemberAndStatus retrieves a member's newest loan with the given status
	GetByMemberAndStatus(ctx context.Context, memberNumber int64, status string) (*domain.Loan, error)

	// ListNonTerminal retrieves a member's pending and approved loans
	ListNonTerminal(ctx context.Context, memberNumber int64) ([]*domain.Loan, error)

	// ListByStatus retrieves all loans with the given status, newest first
	ListByStatus(ctx context.Context, status string) ([]*domain.Loan, error)

	// ListByMember retrieves a member's full loan history, newest first
	ListByMember(ctx context.Context, memberNumber int64) ([]*domain.Loan, error)

	// ListCreatedSince retrieves loans created at or after the given time
	ListCreatedSince(ctx context.Context, since time.Time) ([]*domain.Loan, error)

	// UpdateWithVersion writes the loan and its schedule back, conditional on
	// the version read; returns errors.ErrVersionConflict on a stale write
	UpdateWithVersion(ctx context.Context, loan *domain.Loan) error

	// UpdateStatusIfPending atomically transitions a pending loan; reports
	// whether a row was updated
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status string) (bool, error)
}

// UserRepository is the read-only view of the member directory
type UserRepository interface {
	// GetByMemberNumber retrieves a user by their member number
	GetByMemberNumber(ctx context.Context, memberNumber int64) (*domain.User, error)

	// GetByID retrieves a user by primary key
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// PaymentRepository defines the interface for payment audit records
type PaymentRepository interface {
	// Create records a payment received against a loan
	Create(ctx context.Context, payment *domain.Payment) error

	// ListByLoanID retrieves all payments for a loan, oldest first
	ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)
}
