package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is the audit record of one repayment received against a loan.
type Payment struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	LoanID       uuid.UUID       `json:"loan_id" db:"loan_id"`
	MemberNumber int64           `json:"member_number" db:"member_number"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// SweepResult records one penalty applied during a sweep, for auditing.
type SweepResult struct {
	LoanID          uuid.UUID       `json:"loan_id"`
	MemberNumber    int64           `json:"member_number"`
	Month           int             `json:"month"`
	Penalty         decimal.Decimal `json:"penalty"`
	RepaymentAmount decimal.Decimal `json:"repayment_amount"`
}
