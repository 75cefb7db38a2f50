package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusRejected  = "rejected"
	LoanStatusCompleted = "completed"
)

// ValidStatuses lists every status a loan record may carry. Earlier record
// shapes used active/paid; those are normalized to approved/completed on read.
var ValidStatuses = []string{
	LoanStatusPending,
	LoanStatusApproved,
	LoanStatusRejected,
	LoanStatusCompleted,
}

// Loan is the ledger for one member's borrowing: the principal and term it
// was issued for, the derived interest figures, the running repayment balance
// and the monthly installment schedule.
type Loan struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	BorrowerID           uuid.UUID       `json:"borrower_id" db:"borrower_id"`
	FullName             string          `json:"full_name" db:"full_name"`
	MemberNumber         int64           `json:"member_number" db:"member_number"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	TermMonths           int             `json:"term_month" db:"term_months"`
	Status               string          `json:"status" db:"status"`
	InterestRate         decimal.Decimal `json:"total_interest" db:"interest_rate"`
	InterestAmount       decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	TotalInterestAccrued decimal.Decimal `json:"total_interest_amount" db:"total_interest_accrued"`
	RepaymentAmount      decimal.Decimal `json:"repayment_amount" db:"repayment_amount"`
	RecurringFee         decimal.Decimal `json:"recurring_fee" db:"recurring_fee"`
	FinalPayment         decimal.Decimal `json:"final_payment" db:"final_payment"`
	Version              int64           `json:"-" db:"version"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`

	Installments []Installment `json:"monthly_installment" db:"-"`
}

// IsTerminal reports whether the loan can never be mutated again.
func (l *Loan) IsTerminal() bool {
	return l.Status == LoanStatusRejected || l.Status == LoanStatusCompleted
}

// SortInstallments orders the schedule ascending by month.
func (l *Loan) SortInstallments() {
	sort.Slice(l.Installments, func(i, j int) bool {
		return l.Installments[i].Month < l.Installments[j].Month
	})
}

// ApplyPayment walks the schedule in month order and spends the payment
// against unpaid installments: a full cover marks the installment paid, a
// partial cover shrinks it and stops the walk. Any excess beyond the total
// outstanding is absorbed. The running balance is reduced by the full payment
// and floored at zero; reaching zero completes the loan.
func (l *Loan) ApplyPayment(amount decimal.Decimal) {
	l.SortInstallments()

	remaining := amount
	for i := range l.Installments {
		if remaining.IsZero() {
			break
		}

		inst := &l.Installments[i]
		if inst.Paid {
			continue
		}

		if remaining.GreaterThanOrEqual(inst.Amount) {
			remaining = remaining.Sub(inst.Amount)
			inst.Paid = true
			continue
		}

		inst.Amount = inst.Amount.Sub(remaining)
		remaining = decimal.Zero
	}

	l.RepaymentAmount = l.RepaymentAmount.Sub(amount)
	if l.RepaymentAmount.LessThanOrEqual(decimal.Zero) {
		l.RepaymentAmount = decimal.Zero
		l.Status = LoanStatusCompleted
	}
}

// ApplyPenalty charges a late fee for the installment due in the given month.
// The fee is rate times the original fixed installment amount, not the
// current possibly-reduced one, and lands on the final installment, which
// always absorbs penalties. An installment is charged at most once; repeat
// calls for the same month are no-ops. Returns the fee and whether it was
// applied.
func (l *Loan) ApplyPenalty(month int, rate decimal.Decimal) (decimal.Decimal, bool) {
	l.SortInstallments()

	var due *Installment
	for i := range l.Installments {
		if l.Installments[i].Month == month {
			due = &l.Installments[i]
			break
		}
	}

	if due == nil || due.Paid || due.PenaltyApplied {
		return decimal.Zero, false
	}

	penalty := l.RecurringFee.Mul(rate).Round(2)

	last := &l.Installments[len(l.Installments)-1]
	last.Amount = last.Amount.Add(penalty)

	l.TotalInterestAccrued = l.TotalInterestAccrued.Add(penalty)
	l.FinalPayment = l.FinalPayment.Add(penalty)
	l.RepaymentAmount = l.RepaymentAmount.Add(penalty)
	due.PenaltyApplied = true

	return penalty, true
}

// SettleAllInstallments marks every remaining installment paid. Used when a
// loan's outstanding balance is folded into a replacement loan.
func (l *Loan) SettleAllInstallments() {
	for i := range l.Installments {
		l.Installments[i].Paid = true
	}
}

// OutstandingInstallmentTotal sums the unpaid installment amounts.
func (l *Loan) OutstandingInstallmentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.Installments {
		if !inst.Paid {
			total = total.Add(inst.Amount)
		}
	}
	return total
}

// DTOs for requests and responses

type LoanTermsRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"required,decimal_gt_zero"`
	TermMonths   int             `json:"term_month" validate:"required,gt=0"`
	MemberNumber int64           `json:"member_number" validate:"required,gte=10000,lte=999999"`
}

type CreateLoanRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"required,decimal_gt_zero"`
	TermMonths   int             `json:"term_month" validate:"required,gt=0"`
	MemberNumber int64           `json:"member_number" validate:"required,gte=10000,lte=999999"`
}

type UpdateStatusRequest struct {
	MemberNumber int64  `json:"member_number" validate:"required,gte=10000,lte=999999"`
	Status       string `json:"status" validate:"required,oneof=approved rejected"`
}

type LoansByStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected completed"`
}

type LoanLookupRequest struct {
	MemberNumber int64 `json:"member_number" validate:"required,gte=10000,lte=999999"`
}

type MakePaymentRequest struct {
	MemberNumber int64           `json:"member_number" validate:"required,gte=10000,lte=999999"`
	Amount       decimal.Decimal `json:"amount" validate:"required,decimal_gt_zero"`
}

type PaymentResponse struct {
	Loan            *Loan           `json:"loan"`
	RepaymentAmount decimal.Decimal `json:"repayment_amount"`
}
