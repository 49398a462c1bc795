// Package gateway provides broker gateway integration interfaces and implementations.
package gateway

import (
	"context"
	"time"

	"ibkr-trader/internal/models"
)

// Client defines the interface for broker gateway operations. Every failure
// surfaces as an error; callers branch on the error and never see a panic
// cross this boundary.
type Client interface {
	// Authenticate validates/refreshes the session and resolves the
	// account id used for order endpoints.
	Authenticate(ctx context.Context) error
	IsAuthenticated() bool
	AccountID() string

	// FetchChain resolves the underlying's put chain for one expiry.
	FetchChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error)

	// ValidateOrder performs the broker-side what-if dry run. A successful
	// validation of the identical payload is a precondition for SubmitOrder.
	ValidateOrder(ctx context.Context, order *models.Order) error
	SubmitOrder(ctx context.Context, order *models.Order) (string, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// Quoter supplies price and delta for chain contracts. The gateway does not
// compute real greeks; the data source is pluggable so a market-data feed can
// replace the static placeholder without touching the chain logic.
type Quoter interface {
	Quote(expiry time.Time, now time.Time) (last, delta float64)
}

// StaticQuoter returns fixed placeholder values keyed on days to expiry.
type StaticQuoter struct {
	ShortDatedLast float64 // quoted when DTE <= CutoverDays
	LongDatedLast  float64
	Delta          float64
	CutoverDays    int
}

// DefaultQuoter returns the static placeholder quoter.
func DefaultQuoter() *StaticQuoter {
	return &StaticQuoter{
		ShortDatedLast: 50.0,
		LongDatedLast:  55.0,
		Delta:          0.7,
		CutoverDays:    4,
	}
}

// Quote implements Quoter.
func (q *StaticQuoter) Quote(expiry, now time.Time) (float64, float64) {
	days := int(expiry.Sub(now).Hours() / 24)
	if days <= q.CutoverDays {
		return q.ShortDatedLast, q.Delta
	}
	return q.LongDatedLast, q.Delta
}
