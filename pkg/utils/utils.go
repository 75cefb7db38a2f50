package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthsPassed counts whole calendar months between the loan start date and
// now, ignoring the day of month. January 31 to March 1 is two months.
func MonthsPassed(startDate time.Time, now time.Time) int {
	return (now.Year()-startDate.Year())*12 + int(now.Month()) - int(startDate.Month())
}

// AnniversaryReached reports whether the monthly anniversary day of the start
// date has occurred in the current month.
func AnniversaryReached(startDate time.Time, now time.Time) bool {
	return now.Day() >= startDate.Day()
}

// FloorDiv divides amount by n and truncates to whole currency units.
func FloorDiv(amount decimal.Decimal, n int) decimal.Decimal {
	return amount.Div(decimal.NewFromInt(int64(n))).Floor()
}

// DecimalFromFloat converts float64 to decimal.Decimal
func DecimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
