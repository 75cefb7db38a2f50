package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment is one scheduled monthly repayment obligation. Amount shrinks
// under partial payment and grows when the final installment absorbs a
// penalty. Paid and PenaltyApplied only ever move from false to true.
type Installment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	LoanID         uuid.UUID       `json:"loan_id" db:"loan_id"`
	Month          int             `json:"month" db:"month"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Paid           bool            `json:"paid" db:"paid"`
	PenaltyApplied bool            `json:"penalty_applied" db:"penalty_applied"`
}
