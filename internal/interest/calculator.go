// Package interest computes loan pricing: the interest rate for a term, the
// resulting repayment amount and the monthly installment schedule. It is
// pure arithmetic; persistence and lifecycle rules live in the service layer.
package interest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/coopfin/loan-engine/internal/domain"
	customError "github.com/coopfin/loan-engine/pkg/errors"
	"github.com/coopfin/loan-engine/pkg/utils"
)

// Config carries the pricing parameters. Zero values are not usable; callers
// construct it from the application config (see DefaultConfig for the
// standard cooperative rates).
type Config struct {
	// BaseMonth is the term length that earns one full base-rate block.
	BaseMonth int
	// BaseInterestRate is the percent charged per whole base-month block.
	BaseInterestRate decimal.Decimal
	// SingleMonthInterestRate is the percent charged per leftover month.
	SingleMonthInterestRate decimal.Decimal
	// ServiceCharge is a flat fee added to every repayment amount.
	ServiceCharge decimal.Decimal
}

// DefaultConfig returns the standard pricing parameters.
func DefaultConfig() Config {
	return Config{
		BaseMonth:               3,
		BaseInterestRate:        decimal.RequireFromString("2.5"),
		SingleMonthInterestRate: decimal.RequireFromString("0.8333"),
		ServiceCharge:           decimal.NewFromInt(300),
	}
}

// Terms is the derived pricing for one loan: immutable once computed.
type Terms struct {
	// Rate is the total interest rate percent for the term.
	Rate decimal.Decimal `json:"total_interest"`
	// InterestAmount is principal times rate.
	InterestAmount decimal.Decimal `json:"interest_amount"`
	// RepaymentAmount is principal plus interest plus the service charge.
	RepaymentAmount decimal.Decimal `json:"repayment_amount"`
	// RecurringFee is the fixed monthly installment amount.
	RecurringFee decimal.Decimal `json:"recurring_fee"`
	// FinalPayment is the last installment, which absorbs the floor-division
	// remainder.
	FinalPayment decimal.Decimal `json:"final_payment"`
	// Installments holds one entry per month of the term.
	Installments []domain.Installment `json:"installments"`
}

// ComputeTerms prices a loan of the given principal over termMonths.
//
// Terms shorter than cfg.BaseMonth are charged per month at the single-month
// rate. Longer terms are charged the base rate per whole base-month block
// plus the single-month rate per leftover month. The rate is rounded to two
// decimals before it is applied.
//
// The schedule has termMonths installments: the first termMonths-1 carry the
// floored fixed amount, the last carries whatever remains so that the
// installments sum to the repayment amount exactly.
func ComputeTerms(principal decimal.Decimal, termMonths int, cfg Config) (*Terms, error) {
	if !principal.IsPositive() {
		return nil, customError.WrapInvalidInput(fmt.Sprintf("loan amount must be positive, got %s", principal))
	}
	if termMonths <= 0 {
		return nil, customError.WrapInvalidInput(fmt.Sprintf("term_month must be positive, got %d", termMonths))
	}

	var rate decimal.Decimal
	if termMonths < cfg.BaseMonth {
		rate = decimal.NewFromInt(int64(termMonths)).Mul(cfg.SingleMonthInterestRate)
	} else {
		quotient := termMonths / cfg.BaseMonth
		remainder := termMonths % cfg.BaseMonth
		rate = decimal.NewFromInt(int64(quotient)).Mul(cfg.BaseInterestRate).
			Add(decimal.NewFromInt(int64(remainder)).Mul(cfg.SingleMonthInterestRate))
	}
	rate = rate.Round(2)

	interestAmount := rate.Div(decimal.NewFromInt(100)).Mul(principal).Round(2)
	repaymentAmount := principal.Add(interestAmount).Add(cfg.ServiceCharge)

	recurringFee := utils.FloorDiv(repaymentAmount, termMonths)
	finalPayment := repaymentAmount.Sub(recurringFee.Mul(decimal.NewFromInt(int64(termMonths - 1))))

	installments := make([]domain.Installment, 0, termMonths)
	for month := 1; month < termMonths; month++ {
		installments = append(installments, domain.Installment{
			Month:  month,
			Amount: recurringFee,
		})
	}
	installments = append(installments, domain.Installment{
		Month:  termMonths,
		Amount: finalPayment,
	})

	return &Terms{
		Rate:            rate,
		InterestAmount:  interestAmount,
		RepaymentAmount: repaymentAmount,
		RecurringFee:    recurringFee,
		FinalPayment:    finalPayment,
		Installments:    installments,
	}, nil
}
