package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthsPassed(t *testing.T) {
	start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"same month", time.Date(2026, time.January, 30, 0, 0, 0, 0, time.UTC), 0},
		{"next month", time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), 1},
		{"half a year", time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC), 6},
		{"year boundary", time.Date(2027, time.February, 2, 0, 0, 0, 0, time.UTC), 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsPassed(start, tt.now))
		})
	}
}

func TestAnniversaryReached(t *testing.T) {
	start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.False(t, AnniversaryReached(start, time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)))
	assert.True(t, AnniversaryReached(start, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, AnniversaryReached(start, time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC)))
}

func TestFloorDiv(t *testing.T) {
	got := FloorDiv(decimal.NewFromInt(20800), 3)
	assert.True(t, got.Equal(decimal.NewFromInt(6933)), "got %s", got)

	got = FloorDiv(decimal.NewFromInt(21000), 3)
	assert.True(t, got.Equal(decimal.NewFromInt(7000)))
}
