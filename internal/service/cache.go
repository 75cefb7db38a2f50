package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coopfin/loan-engine/internal/domain"
)

const activeLoanCacheTTL = 10 * time.Minute

// activeLoanCache is a read cache for members' approved loans, keyed by
// member number. All loan mutations invalidate the key. A nil client
// disables caching.
type activeLoanCache struct {
	client *redis.Client
}

func (c *activeLoanCache) key(memberNumber int64) string {
	return fmt.Sprintf("loan:active:%d", memberNumber)
}

func (c *activeLoanCache) Get(ctx context.Context, memberNumber int64) (*domain.Loan, bool) {
	if c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, c.key(memberNumber)).Bytes()
	if err != nil {
		return nil, false
	}

	var loan domain.Loan
	if err := json.Unmarshal(data, &loan); err != nil {
		return nil, false
	}

	return &loan, true
}

func (c *activeLoanCache) Set(ctx context.Context, loan *domain.Loan) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(loan)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, c.key(loan.MemberNumber), data, activeLoanCacheTTL).Err(); err != nil {
		slog.Warn("caching active loan", "member_number", loan.MemberNumber, "error", err)
	}
}

func (c *activeLoanCache) Invalidate(ctx context.Context, memberNumber int64) {
	if c.client == nil {
		return
	}

	if err := c.client.Del(ctx, c.key(memberNumber)).Err(); err != nil {
		slog.Warn("invalidating active loan cache", "member_number", memberNumber, "error", err)
	}
}
