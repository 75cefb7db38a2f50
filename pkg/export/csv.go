// Package export renders loan ledgers as downloadable tabular reports. It is
// a pure transformation; no business rules live here.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/coopfin/loan-engine/internal/domain"
)

var header = []string{
	"Full Name",
	"Member Number",
	"Amount",
	"Term (Months)",
	"Status",
	"Total Interest (%)",
	"Repayment Amount",
	"Recurring Fee",
	"Final Payment",
	"Created At",
	"Updated At",
}

// WriteCSV writes the loans as a CSV report with one row per ledger.
func WriteCSV(w io.Writer, loans []*domain.Loan) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}

	for _, loan := range loans {
		record := []string{
			loan.FullName,
			strconv.FormatInt(loan.MemberNumber, 10),
			loan.Amount.String(),
			strconv.Itoa(loan.TermMonths),
			loan.Status,
			loan.InterestRate.String(),
			loan.RepaymentAmount.String(),
			loan.RecurringFee.String(),
			loan.FinalPayment.String(),
			loan.CreatedAt.Format(time.RFC3339),
			loan.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename names the report after the range it covers, e.g.
// loan-stats-week-2026-09-01.csv.
func Filename(rng string, now time.Time) string {
	return "loan-stats-" + rng + "-" + now.Format("2006-01-02") + ".csv"
}
