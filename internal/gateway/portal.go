package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "ibkr-trader/internal/errors"
	"ibkr-trader/internal/logging"
	"ibkr-trader/internal/models"
)

// PortalClient implements Client against the IBKR Client Portal REST gateway.
type PortalClient struct {
	baseURL         string
	exchange        string
	referenceStrike float64
	httpClient      *http.Client
	quoter          Quoter
	log             zerolog.Logger

	mu            sync.RWMutex
	sessionID     string
	accountID     string
	authenticated bool
}

// PortalConfig holds configuration for the Client Portal gateway.
type PortalConfig struct {
	BaseURL            string
	Exchange           string
	ReferenceStrike    float64
	Timeout            time.Duration
	InsecureSkipVerify bool
	Quoter             Quoter
	Logger             zerolog.Logger
}

// NewPortalClient creates a new Client Portal gateway client.
func NewPortalClient(cfg PortalConfig) *PortalClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	quoter := cfg.Quoter
	if quoter == nil {
		quoter = DefaultQuoter()
	}
	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &PortalClient{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		exchange:        cfg.Exchange,
		referenceStrike: cfg.ReferenceStrike,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		quoter: quoter,
		log:    cfg.Logger,
	}
}

// Authenticate validates the session, captures the session id, and resolves
// the first account id. Any non-200 or transport error fails the whole step.
func (p *PortalClient) Authenticate(ctx context.Context) error {
	if err := p.get(ctx, "/sso/validate", nil); err != nil {
		return apperrors.Wrap(err, "session validation failed")
	}

	var tickle struct {
		Session string `json:"session"`
	}
	if err := p.get(ctx, "/tickle", &tickle); err != nil {
		return apperrors.Wrap(err, "authentication failed")
	}
	if tickle.Session == "" {
		return apperrors.NewGatewayError("/tickle", 0, "no session in response", apperrors.ErrNotAuthenticated)
	}

	var accounts struct {
		Accounts []string `json:"accounts"`
	}
	if err := p.get(ctx, "/iserver/accounts", &accounts); err != nil {
		return apperrors.Wrap(err, "fetching account id failed")
	}
	if len(accounts.Accounts) == 0 {
		return apperrors.NewGatewayError("/iserver/accounts", 0, "no accounts in response", apperrors.ErrNoAccount)
	}

	p.mu.Lock()
	p.sessionID = tickle.Session
	p.accountID = accounts.Accounts[0]
	p.authenticated = true
	p.mu.Unlock()

	p.log.Info().Str("account_id", accounts.Accounts[0]).Msg("Authenticated with gateway")
	return nil
}

// IsAuthenticated reports whether a session has been established.
func (p *PortalClient) IsAuthenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.authenticated
}

// AccountID returns the resolved account id, empty before authentication.
func (p *PortalClient) AccountID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accountID
}

// secdefEntry is the contract-detail shape shared by the primary and
// fallback chain endpoints. Strike and conid arrive as either strings or
// numbers depending on the endpoint.
type secdefEntry struct {
	ConID        json.Number `json:"conid"`
	Strike       json.Number `json:"strike"`
	Right        string      `json:"right"`
	MaturityDate string      `json:"maturityDate"`
}

// FetchChain resolves the underlying conid, picks the strike nearest the
// reference strike for the expiry's month, and returns the put contracts at
// that strike for the exact expiry date.
func (p *PortalClient) FetchChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	if !p.IsAuthenticated() {
		if err := p.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	var search []struct {
		ConID json.Number `json:"conid"`
	}
	path := fmt.Sprintf("/iserver/secdef/search?symbol=%s&exchange=%s", symbol, p.exchange)
	if err := p.get(ctx, path, &search); err != nil {
		return nil, apperrors.Wrapf(err, "resolving %s conid", symbol)
	}
	if len(search) == 0 {
		return nil, apperrors.NewGatewayError(path, 0, "empty conid response", apperrors.ErrChainUnavailable)
	}
	conid := search[0].ConID.String()
	p.log.Debug().Str("symbol", symbol).Str("conid", conid).Msg("Resolved underlying conid")

	month := strings.ToUpper(expiry.Format("Jan06"))
	expDate := expiry.Format("20060102")

	var strikes struct {
		Put []float64 `json:"put"`
	}
	path = fmt.Sprintf("/iserver/secdef/strikes?conid=%s&secType=OPT&month=%s", conid, month)
	if err := p.get(ctx, path, &strikes); err != nil {
		return nil, apperrors.Wrap(err, "fetching strikes")
	}
	if len(strikes.Put) == 0 {
		return nil, apperrors.NewGatewayError(path, 0, fmt.Sprintf("no put strikes for %s", month), apperrors.ErrChainUnavailable)
	}

	strike := nearestStrike(strikes.Put, p.referenceStrike)
	if strike != p.referenceStrike {
		p.log.Debug().Float64("strike", strike).Msg("Adjusted strike to nearest available")
	}

	entries, err := p.fetchContractDetail(ctx, conid, month, strike)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	last, delta := p.quoter.Quote(expiry, now)

	chain := &models.OptionChain{
		Symbol: symbol,
		Expiry: expiry,
		Strike: strike,
	}
	for _, e := range entries {
		right := e.Right
		if right == "" {
			right = string(models.RightPut)
		}
		entryStrike, _ := e.Strike.Float64()
		if right != string(models.RightPut) || entryStrike != strike || e.MaturityDate != expDate {
			continue
		}
		oc, err := e.ConID.Int64()
		if err != nil {
			continue
		}
		chain.Contracts = append(chain.Contracts, models.OptionContract{
			ConID:  oc,
			Strike: entryStrike,
			Right:  models.OptionRight(right),
			Last:   last,
			Delta:  delta,
			Expiry: e.MaturityDate,
		})
	}
	if len(chain.Contracts) == 0 {
		return nil, apperrors.NewGatewayError("/iserver/secdef/info", 0,
			fmt.Sprintf("no contracts for %s on %s at %.1f", month, expDate, strike), apperrors.ErrChainUnavailable)
	}

	p.log.Info().
		Str("symbol", symbol).
		Str("expiry", expDate).
		Float64("strike", strike).
		Int64("conid", chain.Contracts[0].ConID).
		Msg("Fetched option chain")
	return chain, nil
}

// fetchContractDetail queries the primary contract-detail endpoint, falling
// back to the bulk secdef lookup when the primary fails.
func (p *PortalClient) fetchContractDetail(ctx context.Context, conid, month string, strike float64) ([]secdefEntry, error) {
	var entries []secdefEntry
	path := fmt.Sprintf("/iserver/secdef/info?conid=%s&secType=OPT&month=%s&right=P&strike=%g", conid, month, strike)
	if err := p.get(ctx, path, &entries); err == nil {
		return entries, nil
	} else {
		p.log.Warn().Err(err).Msg("Primary chain lookup failed, trying fallback")
	}

	var fallback struct {
		Secdef []secdefEntry `json:"secdef"`
	}
	body := map[string]interface{}{"conids": []string{conid}}
	if err := p.post(ctx, "/trsrv/secdef", body, &fallback); err != nil {
		return nil, apperrors.Wrap(err, "fallback chain lookup failed")
	}
	return fallback.Secdef, nil
}

// ValidateOrder performs the broker-side what-if check.
func (p *PortalClient) ValidateOrder(ctx context.Context, order *models.Order) error {
	acct, err := p.requireAccount()
	if err != nil {
		return apperrors.NewOrderError(order.COID, "validate", "no account id", err)
	}
	path := fmt.Sprintf("/iserver/account/%s/order/whatif", acct)
	if err := p.post(ctx, path, order, nil); err != nil {
		return apperrors.NewOrderError(order.COID, "validate", "what-if check failed", err)
	}
	p.log.Info().Str("coid", order.COID).Msg("Order validated")
	return nil
}

// SubmitOrder posts the order and returns the broker-assigned order id.
func (p *PortalClient) SubmitOrder(ctx context.Context, order *models.Order) (string, error) {
	acct, err := p.requireAccount()
	if err != nil {
		return "", apperrors.NewOrderError(order.COID, "submit", "no account id", err)
	}
	var resp []struct {
		OrderID string `json:"order_id"`
	}
	path := fmt.Sprintf("/iserver/account/%s/order", acct)
	if err := p.post(ctx, path, order, &resp); err != nil {
		return "", apperrors.NewOrderError(order.COID, "submit", "submission failed", err)
	}
	if len(resp) == 0 || resp[0].OrderID == "" {
		return "", apperrors.NewOrderError(order.COID, "submit", "unexpected response format", apperrors.ErrOrderRejected)
	}
	logging.LogOrder(p.log, string(order.OrderType), order.COID, resp[0].OrderID, order.Price)
	return resp[0].OrderID, nil
}

// CancelOrder cancels a working order by broker order id.
func (p *PortalClient) CancelOrder(ctx context.Context, orderID string) error {
	acct, err := p.requireAccount()
	if err != nil {
		return apperrors.NewOrderError("", "cancel", "no account id", err)
	}
	path := fmt.Sprintf("/iserver/account/%s/order/%s", acct, orderID)
	if err := p.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return apperrors.NewOrderError("", "cancel", "cancellation failed", err)
	}
	p.log.Info().Str("order_id", orderID).Msg("Order cancelled")
	return nil
}

func (p *PortalClient) requireAccount() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.accountID == "" {
		return "", apperrors.ErrNoAccount
	}
	return p.accountID, nil
}

func (p *PortalClient) get(ctx context.Context, path string, out interface{}) error {
	return p.do(ctx, http.MethodGet, path, nil, out)
}

func (p *PortalClient) post(ctx context.Context, path string, body, out interface{}) error {
	return p.do(ctx, http.MethodPost, path, body, out)
}

// do executes one gateway call. Timeouts and transport errors are treated
// identically to non-200 responses: a GatewayError the caller branches on.
func (p *PortalClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewGatewayError(path, 0, "encoding request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return apperrors.NewGatewayError(path, 0, "building request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	logging.LogAPICall(p.log, method, path, time.Since(start), err)
	if err != nil {
		return apperrors.NewGatewayError(path, 0, "transport failure", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewGatewayError(path, resp.StatusCode, "reading response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewGatewayError(path, resp.StatusCode, strings.TrimSpace(string(data)), nil)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return apperrors.NewGatewayError(path, resp.StatusCode, "decoding response", err)
		}
	}
	return nil
}

// nearestStrike returns the candidate closest to target, first-wins on ties.
func nearestStrike(candidates []float64, target float64) float64 {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if abs(c-target) < abs(best-target) {
			best = c
		}
	}
	return best
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
