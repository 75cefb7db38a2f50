package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeMonthLoan builds the 20000-over-3-months ledger: repayment 20800,
// installments 6933 + 6933 + 6934.
func threeMonthLoan() *Loan {
	return &Loan{
		MemberNumber:         332266,
		Amount:               decimal.NewFromInt(20000),
		TermMonths:           3,
		Status:               LoanStatusApproved,
		InterestRate:         decimal.RequireFromString("2.5"),
		InterestAmount:       decimal.NewFromInt(500),
		TotalInterestAccrued: decimal.NewFromInt(500),
		RepaymentAmount:      decimal.NewFromInt(20800),
		RecurringFee:         decimal.NewFromInt(6933),
		FinalPayment:         decimal.NewFromInt(6934),
		Installments: []Installment{
			{Month: 1, Amount: decimal.NewFromInt(6933)},
			{Month: 2, Amount: decimal.NewFromInt(6933)},
			{Month: 3, Amount: decimal.NewFromInt(6934)},
		},
	}
}

func TestApplyPayment_PartialNeverMarksPaid(t *testing.T) {
	loan := threeMonthLoan()

	loan.ApplyPayment(decimal.NewFromInt(1000))

	assert.False(t, loan.Installments[0].Paid)
	assert.True(t, loan.Installments[0].Amount.Equal(decimal.NewFromInt(5933)))
	assert.True(t, loan.Installments[1].Amount.Equal(decimal.NewFromInt(6933)))
	assert.True(t, loan.RepaymentAmount.Equal(decimal.NewFromInt(19800)))
	assert.Equal(t, LoanStatusApproved, loan.Status)
}

func TestApplyPayment_ExactMarksExactlyOne(t *testing.T) {
	loan := threeMonthLoan()

	loan.ApplyPayment(decimal.NewFromInt(6933))

	assert.True(t, loan.Installments[0].Paid)
	assert.False(t, loan.Installments[1].Paid)
	assert.False(t, loan.Installments[2].Paid)
	assert.True(t, loan.Installments[1].Amount.Equal(decimal.NewFromInt(6933)))
	assert.True(t, loan.RepaymentAmount.Equal(decimal.NewFromInt(13867)))
}

func TestApplyPayment_SpillsIntoNextInstallment(t *testing.T) {
	// 6934 covers the first installment fully and shaves 1 off the second
	loan := threeMonthLoan()

	loan.ApplyPayment(decimal.NewFromInt(6934))

	assert.True(t, loan.Installments[0].Paid)
	assert.False(t, loan.Installments[1].Paid)
	assert.True(t, loan.Installments[1].Amount.Equal(decimal.NewFromInt(6932)))
	assert.True(t, loan.RepaymentAmount.Equal(decimal.NewFromInt(13866)))
	assert.Equal(t, LoanStatusApproved, loan.Status)
}

func TestApplyPayment_WalksInMonthOrder(t *testing.T) {
	loan := threeMonthLoan()
	// Stored out of order; the walk must still pay month 1 first
	loan.Installments[0], loan.Installments[2] = loan.Installments[2], loan.Installments[0]

	loan.ApplyPayment(decimal.NewFromInt(13866))

	loan.SortInstallments()
	assert.True(t, loan.Installments[0].Paid)
	assert.True(t, loan.Installments[1].Paid)
	assert.False(t, loan.Installments[2].Paid)
	assert.True(t, loan.Installments[2].Amount.Equal(decimal.NewFromInt(6934)))
}

func TestApplyPayment_FullRepaymentCompletes(t *testing.T) {
	loan := threeMonthLoan()

	loan.ApplyPayment(decimal.NewFromInt(20800))

	for _, inst := range loan.Installments {
		assert.True(t, inst.Paid)
	}
	assert.True(t, loan.RepaymentAmount.IsZero())
	assert.Equal(t, LoanStatusCompleted, loan.Status)
}

func TestApplyPayment_OverpaymentAbsorbedAndFloored(t *testing.T) {
	loan := threeMonthLoan()

	loan.ApplyPayment(decimal.NewFromInt(25000))

	assert.True(t, loan.RepaymentAmount.IsZero())
	assert.Equal(t, LoanStatusCompleted, loan.Status)
}

func TestApplyPayment_TracksOutstandingInstallments(t *testing.T) {
	loan := threeMonthLoan()

	loan.ApplyPayment(decimal.NewFromInt(9000))

	assert.True(t, loan.OutstandingInstallmentTotal().Equal(loan.RepaymentAmount))
}

func TestApplyPenalty_ChargesFivePercentOfRecurringFee(t *testing.T) {
	loan := threeMonthLoan()
	rate := decimal.RequireFromString("0.05")

	penalty, applied := loan.ApplyPenalty(1, rate)

	require.True(t, applied)
	// 5% of 6933
	assert.True(t, penalty.Equal(decimal.RequireFromString("346.65")), "penalty = %s", penalty)

	// The final installment absorbs the penalty, not the defaulted one
	assert.True(t, loan.Installments[0].Amount.Equal(decimal.NewFromInt(6933)))
	assert.True(t, loan.Installments[2].Amount.Equal(decimal.RequireFromString("7280.65")))

	assert.True(t, loan.RepaymentAmount.Equal(decimal.RequireFromString("21146.65")))
	assert.True(t, loan.FinalPayment.Equal(decimal.RequireFromString("7280.65")))
	assert.True(t, loan.TotalInterestAccrued.Equal(decimal.RequireFromString("846.65")))
	assert.True(t, loan.Installments[0].PenaltyApplied)
}

func TestApplyPenalty_BaselineIsOriginalFee(t *testing.T) {
	// A partial payment shrinks installment 1, but the penalty is still
	// computed from the original fixed amount
	loan := threeMonthLoan()
	loan.ApplyPayment(decimal.NewFromInt(1000))

	penalty, applied := loan.ApplyPenalty(1, decimal.RequireFromString("0.05"))

	require.True(t, applied)
	assert.True(t, penalty.Equal(decimal.RequireFromString("346.65")))
}

func TestApplyPenalty_AtMostOncePerInstallment(t *testing.T) {
	loan := threeMonthLoan()
	rate := decimal.RequireFromString("0.05")

	_, applied := loan.ApplyPenalty(1, rate)
	require.True(t, applied)
	before := loan.RepaymentAmount

	_, applied = loan.ApplyPenalty(1, rate)
	assert.False(t, applied)
	assert.True(t, loan.RepaymentAmount.Equal(before))
}

func TestApplyPenalty_SkipsPaidAndMissingMonths(t *testing.T) {
	loan := threeMonthLoan()
	loan.ApplyPayment(decimal.NewFromInt(6933))

	_, applied := loan.ApplyPenalty(1, decimal.RequireFromString("0.05"))
	assert.False(t, applied, "paid installment must not be penalized")

	_, applied = loan.ApplyPenalty(7, decimal.RequireFromString("0.05"))
	assert.False(t, applied, "months beyond the term have no installment")
}

func TestSettleAllInstallments(t *testing.T) {
	loan := threeMonthLoan()

	loan.SettleAllInstallments()

	for _, inst := range loan.Installments {
		assert.True(t, inst.Paid)
	}
	assert.True(t, loan.OutstandingInstallmentTotal().IsZero())
}

func TestIsTerminal(t *testing.T) {
	loan := threeMonthLoan()

	assert.False(t, loan.IsTerminal())

	loan.Status = LoanStatusCompleted
	assert.True(t, loan.IsTerminal())

	loan.Status = LoanStatusRejected
	assert.True(t, loan.IsTerminal())

	loan.Status = LoanStatusPending
	assert.False(t, loan.IsTerminal())
}
