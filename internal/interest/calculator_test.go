package interest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/coopfin/loan-engine/pkg/errors"
)

func TestComputeTerms_ShortTermRate(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name       string
		termMonths int
		wantRate   string
	}{
		{"one month", 1, "0.83"},
		{"two months", 2, "1.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := ComputeTerms(decimal.NewFromInt(10000), tt.termMonths, cfg)
			require.NoError(t, err)
			assert.True(t, terms.Rate.Equal(decimal.RequireFromString(tt.wantRate)),
				"rate = %s, want %s", terms.Rate, tt.wantRate)
		})
	}
}

func TestComputeTerms_LongTermRate(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name       string
		termMonths int
		wantRate   string
	}{
		{"exactly one block", 3, "2.5"},
		{"one block one leftover", 4, "3.33"},
		{"one block two leftover", 5, "4.17"},
		{"two blocks", 6, "5"},
		{"four blocks", 12, "10"},
		{"twenty blocks", 60, "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := ComputeTerms(decimal.NewFromInt(10000), tt.termMonths, cfg)
			require.NoError(t, err)
			assert.True(t, terms.Rate.Equal(decimal.RequireFromString(tt.wantRate)),
				"rate = %s, want %s", terms.Rate, tt.wantRate)
		})
	}
}

func TestComputeTerms_ConcreteScenario(t *testing.T) {
	// 20000 over 3 months: rate 2.5, interest 500, repayment 20800,
	// installments 6933 + 6933 + 6934
	terms, err := ComputeTerms(decimal.NewFromInt(20000), 3, DefaultConfig())
	require.NoError(t, err)

	assert.True(t, terms.Rate.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, terms.InterestAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, terms.RepaymentAmount.Equal(decimal.NewFromInt(20800)))
	assert.True(t, terms.RecurringFee.Equal(decimal.NewFromInt(6933)))
	assert.True(t, terms.FinalPayment.Equal(decimal.NewFromInt(6934)))

	require.Len(t, terms.Installments, 3)
	assert.True(t, terms.Installments[0].Amount.Equal(decimal.NewFromInt(6933)))
	assert.True(t, terms.Installments[1].Amount.Equal(decimal.NewFromInt(6933)))
	assert.True(t, terms.Installments[2].Amount.Equal(decimal.NewFromInt(6934)))

	for i, inst := range terms.Installments {
		assert.Equal(t, i+1, inst.Month)
		assert.False(t, inst.Paid)
		assert.False(t, inst.PenaltyApplied)
	}
}

func TestComputeTerms_InstallmentsSumToRepayment(t *testing.T) {
	cfg := DefaultConfig()

	principals := []int64{1, 999, 20000, 150000, 7777777}
	terms := []int{1, 2, 3, 7, 13, 36, 60}

	for _, p := range principals {
		for _, tm := range terms {
			result, err := ComputeTerms(decimal.NewFromInt(p), tm, cfg)
			require.NoError(t, err)
			require.Len(t, result.Installments, tm)

			sum := decimal.Zero
			for _, inst := range result.Installments {
				sum = sum.Add(inst.Amount)
			}
			assert.True(t, sum.Equal(result.RepaymentAmount),
				"principal=%d term=%d: installments sum %s != repayment %s", p, tm, sum, result.RepaymentAmount)
		}
	}
}

func TestComputeTerms_SingleMonthTerm(t *testing.T) {
	terms, err := ComputeTerms(decimal.NewFromInt(5000), 1, DefaultConfig())
	require.NoError(t, err)

	// The only installment is also the final one and carries the whole
	// repayment amount
	require.Len(t, terms.Installments, 1)
	assert.True(t, terms.Installments[0].Amount.Equal(terms.RepaymentAmount))
	assert.True(t, terms.FinalPayment.Equal(terms.RepaymentAmount))
}

func TestComputeTerms_InvalidInputs(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name       string
		principal  decimal.Decimal
		termMonths int
	}{
		{"zero principal", decimal.Zero, 3},
		{"negative principal", decimal.NewFromInt(-100), 3},
		{"zero term", decimal.NewFromInt(1000), 0},
		{"negative term", decimal.NewFromInt(1000), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTerms(tt.principal, tt.termMonths, cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, customError.ErrInvalidInput)
		})
	}
}
