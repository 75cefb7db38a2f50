package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coopfin/loan-engine/internal/domain"
	customError "github.com/coopfin/loan-engine/pkg/errors"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, borrower_id, full_name, member_number, amount, term_months, status,
	interest_rate, interest_amount, total_interest_accrued, repayment_amount,
	recurring_fee, final_payment, version, created_at, updated_at`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = tx.ExecContext(ctx, query,
		loan.ID,
		loan.BorrowerID,
		loan.FullName,
		loan.MemberNumber,
		loan.Amount,
		loan.TermMonths,
		loan.Status,
		loan.InterestRate,
		loan.InterestAmount,
		loan.TotalInterestAccrued,
		loan.RepaymentAmount,
		loan.RecurringFee,
		loan.FinalPayment,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	instQuery := `
		INSERT INTO installments (id, loan_id, month, amount, paid, penalty_applied)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, inst := range loan.Installments {
		_, err = tx.ExecContext(ctx, instQuery,
			inst.ID,
			inst.LoanID,
			inst.Month,
			inst.Amount,
			inst.Paid,
			inst.PenaltyApplied,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	if err := r.attachInstallments(ctx, &loan); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) GetByMemberAndStatus(ctx context.Context, memberNumber int64, status string) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE member_number = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, memberNumber, status); err != nil {
		return nil, err
	}

	if err := r.attachInstallments(ctx, &loan); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListNonTerminal(ctx context.Context, memberNumber int64) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE member_number = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
	`

	return r.selectLoans(ctx, query, memberNumber, domain.LoanStatusPending, domain.LoanStatusApproved)
}

func (r *loanRepository) ListByStatus(ctx context.Context, status string) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = $1
		ORDER BY created_at DESC
	`

	return r.selectLoans(ctx, query, status)
}

func (r *loanRepository) ListByMember(ctx context.Context, memberNumber int64) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE member_number = $1
		ORDER BY created_at DESC
	`

	return r.selectLoans(ctx, query, memberNumber)
}

func (r *loanRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`

	return r.selectLoans(ctx, query, since)
}

func (r *loanRepository) UpdateWithVersion(ctx context.Context, loan *domain.Loan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE loans
		SET status = $3, total_interest_accrued = $4, repayment_amount = $5,
			final_payment = $6, version = version + 1, updated_at = $7
		WHERE id = $1 AND version = $2
	`

	result, err := tx.ExecContext(ctx, query,
		loan.ID,
		loan.Version,
		loan.Status,
		loan.TotalInterestAccrued,
		loan.RepaymentAmount,
		loan.FinalPayment,
		time.Now(),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.ErrVersionConflict
	}

	instQuery := `
		UPDATE installments
		SET amount = $3, paid = $4, penalty_applied = $5
		WHERE loan_id = $1 AND month = $2
	`

	for _, inst := range loan.Installments {
		_, err = tx.ExecContext(ctx, instQuery,
			loan.ID,
			inst.Month,
			inst.Amount,
			inst.Paid,
			inst.PenaltyApplied,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	loan.Version++
	return nil
}

func (r *loanRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	query := `
		UPDATE loans
		SET status = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now(), domain.LoanStatusPending)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *loanRepository) selectLoans(ctx context.Context, query string, args ...interface{}) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}

	for _, loan := range loans {
		if err := r.attachInstallments(ctx, loan); err != nil {
			return nil, err
		}
	}

	return loans, nil
}

func (r *loanRepository) attachInstallments(ctx context.Context, loan *domain.Loan) error {
	query := `
		SELECT id, loan_id, month, amount, paid, penalty_applied
		FROM installments
		WHERE loan_id = $1
		ORDER BY month
	`

	return r.db.SelectContext(ctx, &loan.Installments, query, loan.ID)
}
