package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "ibkr-trader/internal/errors"
	"ibkr-trader/internal/models"
)

// PaperGateway implements Client with in-memory simulation. It serves paper
// trading mode and doubles as the fake for engine tests, including failure
// injection for each step boundary.
type PaperGateway struct {
	quoter          Quoter
	referenceStrike float64
	clock           func() time.Time

	mu            sync.Mutex
	authenticated bool
	accountID     string
	orderCounter  int
	validated     map[string]bool
	submitted     []models.Order
	cancelled     []string

	// Failure injection
	FailAuth     bool
	FailChain    bool
	FailValidate bool
	FailSubmit   bool
	// FailSubmitAfter fails submissions once this many have succeeded;
	// lets tests open a position and then fail the take-profit or close.
	FailSubmitAfter int

	// ChainFunc overrides synthetic chain generation when set.
	ChainFunc func(symbol string, expiry time.Time) (*models.OptionChain, error)
}

// PaperConfig holds configuration for the paper gateway.
type PaperConfig struct {
	ReferenceStrike float64
	Quoter          Quoter
	// Clock overrides time.Now for expiry-relative quoting, for tests.
	Clock func() time.Time
}

// NewPaperGateway creates a new paper trading gateway.
func NewPaperGateway(cfg PaperConfig) *PaperGateway {
	quoter := cfg.Quoter
	if quoter == nil {
		quoter = DefaultQuoter()
	}
	strike := cfg.ReferenceStrike
	if strike == 0 {
		strike = 5950.0
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &PaperGateway{
		quoter:          quoter,
		referenceStrike: strike,
		clock:           clock,
		validated:       make(map[string]bool),
		FailSubmitAfter: -1,
	}
}

// Authenticate simulates a session handshake.
func (p *PaperGateway) Authenticate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailAuth {
		return apperrors.NewGatewayError("/sso/validate", 503, "simulated auth failure", apperrors.ErrNotAuthenticated)
	}
	p.authenticated = true
	p.accountID = "DU0000001"
	return nil
}

// IsAuthenticated reports whether Authenticate has succeeded.
func (p *PaperGateway) IsAuthenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticated
}

// AccountID returns the simulated account id.
func (p *PaperGateway) AccountID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accountID
}

// FetchChain returns a synthetic single-contract put chain at the reference
// strike, with a conid derived from the expiry date so distinct expiries get
// distinct contracts.
func (p *PaperGateway) FetchChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	p.mu.Lock()
	failChain := p.FailChain
	chainFunc := p.ChainFunc
	p.mu.Unlock()

	if failChain {
		return nil, apperrors.NewGatewayError("/iserver/secdef/info", 500, "simulated chain failure", apperrors.ErrChainUnavailable)
	}
	if chainFunc != nil {
		return chainFunc(symbol, expiry)
	}

	last, delta := p.quoter.Quote(expiry, p.clock())
	maturity := expiry.Format("20060102")
	conid := int64(expiry.Year())*10000 + int64(expiry.YearDay())
	return &models.OptionChain{
		Symbol: symbol,
		Expiry: expiry,
		Strike: p.referenceStrike,
		Contracts: []models.OptionContract{
			{
				ConID:  conid,
				Strike: p.referenceStrike,
				Right:  models.RightPut,
				Last:   last,
				Delta:  delta,
				Expiry: maturity,
			},
		},
	}, nil
}

// ValidateOrder records the what-if check so SubmitOrder can enforce the
// validate-before-submit contract.
func (p *PaperGateway) ValidateOrder(ctx context.Context, order *models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailValidate {
		return apperrors.NewOrderError(order.COID, "validate", "simulated rejection", apperrors.ErrOrderRejected)
	}
	p.validated[order.COID] = true
	return nil
}

// SubmitOrder accepts a previously validated order and returns a
// deterministic order id.
func (p *PaperGateway) SubmitOrder(ctx context.Context, order *models.Order) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailSubmit {
		return "", apperrors.NewOrderError(order.COID, "submit", "simulated rejection", apperrors.ErrOrderRejected)
	}
	if p.FailSubmitAfter >= 0 && len(p.submitted) >= p.FailSubmitAfter {
		return "", apperrors.NewOrderError(order.COID, "submit", "simulated rejection", apperrors.ErrOrderRejected)
	}
	// SubmitOrder requires a prior ValidateOrder on the identical payload.
	if !p.validated[order.COID] {
		return "", apperrors.NewOrderError(order.COID, "submit", "order was not validated", apperrors.ErrNotValidated)
	}
	p.orderCounter++
	p.submitted = append(p.submitted, *order)
	return fmt.Sprintf("PAPER-%04d", p.orderCounter), nil
}

// CancelOrder records the cancellation.
func (p *PaperGateway) CancelOrder(ctx context.Context, orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, orderID)
	return nil
}

// SubmittedOrders returns a copy of every order accepted so far.
func (p *PaperGateway) SubmittedOrders() []models.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Order, len(p.submitted))
	copy(out, p.submitted)
	return out
}

// CancelledOrders returns the ids of every cancelled order.
func (p *PaperGateway) CancelledOrders() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.cancelled))
	copy(out, p.cancelled)
	return out
}
