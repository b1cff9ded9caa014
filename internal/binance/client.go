package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cryptoproxy/internal/auth"
)

// Client performs HTTP calls against the Binance REST API. Every call
// is a single attempt with no retry and no backoff; upstream
// rejections surface to the caller as *APIError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *auth.Signer
	logger     zerolog.Logger
}

// Option configures the client
type Option func(*Client)

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Binance client
func NewClient(baseURL string, signer *auth.Signer, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if signer == nil {
		return nil, fmt.Errorf("signer is required")
	}

	client := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		signer: signer,
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// GetServerTime returns the exchange's clock in epoch milliseconds
func (c *Client) GetServerTime(ctx context.Context) (int64, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v3/time", nil, false)
	if err != nil {
		return 0, fmt.Errorf("GetServerTime: %w", err)
	}

	var resp serverTimeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("GetServerTime: %w", err)
	}

	return resp.ServerTime, nil
}

// GetMinNotional fetches exchange metadata for a symbol and returns
// its minimum notional value. The current NOTIONAL filter is preferred
// and the legacy MIN_NOTIONAL name is accepted as fallback.
func (c *Client) GetMinNotional(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("symbol is required")
	}

	params := auth.NewParams().Add("symbol", symbol)

	body, err := c.do(ctx, http.MethodGet, "/api/v3/exchangeInfo", params, false)
	if err != nil {
		return decimal.Zero, fmt.Errorf("GetMinNotional: %w", err)
	}

	var info exchangeInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return decimal.Zero, fmt.Errorf("GetMinNotional: %w", err)
	}

	if len(info.Symbols) == 0 {
		return decimal.Zero, &FilterNotFoundError{Symbol: symbol}
	}

	filters := info.Symbols[0].Filters
	for _, filterType := range []string{"NOTIONAL", "MIN_NOTIONAL"} {
		for _, f := range filters {
			if f.FilterType == filterType {
				return f.MinNotional, nil
			}
		}
	}

	return decimal.Zero, &FilterNotFoundError{Symbol: symbol}
}

// GetAccountBalance returns the account's balance snapshot
func (c *Client) GetAccountBalance(ctx context.Context) ([]Balance, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v3/account", nil, true)
	if err != nil {
		return nil, fmt.Errorf("GetAccountBalance: %w", err)
	}

	var account AccountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("GetAccountBalance: %w", err)
	}

	return account.Balances, nil
}

// GetOrderStatus looks up an order by its exchange order ID
func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (*OrderResult, error) {
	if orderID == "" {
		return nil, fmt.Errorf("orderId is required")
	}

	params := auth.NewParams().Add("orderId", orderID)

	body, err := c.do(ctx, http.MethodGet, "/api/v3/order", params, true)
	if err != nil {
		return nil, fmt.Errorf("GetOrderStatus: %w", err)
	}

	var order OrderResult
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("GetOrderStatus: %w", err)
	}

	return &order, nil
}

// ExecuteTrade places an order. The parameter order built here is the
// order that gets signed and sent; do not reorder.
func (c *Client) ExecuteTrade(ctx context.Context, order OrderParams) (*OrderResult, error) {
	params := auth.NewParams().
		Add("symbol", order.Symbol).
		Add("side", order.Side).
		Add("type", order.Type)

	switch order.Type {
	case "MARKET":
		if !order.QuoteOrderQty.IsZero() {
			params.Add("quoteOrderQty", order.QuoteOrderQty.String())
		} else if !order.Quantity.IsZero() {
			params.Add("quantity", order.Quantity.String())
		}
	case "LIMIT":
		params.Add("quantity", order.Quantity.String())
		params.Add("price", order.Price.String())
		params.Add("timeInForce", "GTC")
	}

	c.logger.Debug().
		Str("symbol", order.Symbol).
		Str("side", order.Side).
		Str("type", order.Type).
		Msg("Placing order")

	body, err := c.do(ctx, http.MethodPost, "/api/v3/order", params, true)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("symbol", order.Symbol).
			Str("side", order.Side).
			Str("type", order.Type).
			Msg("Order placement failed")
		return nil, err
	}

	var result OrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("ExecuteTrade: %w", err)
	}

	c.logger.Info().
		Str("symbol", result.Symbol).
		Int64("order_id", result.OrderID).
		Str("status", result.Status).
		Str("executed_qty", result.ExecutedQty.String()).
		Msg("Order placed")

	return &result, nil
}

// do executes a single HTTP request. Binance expects all parameters in
// the query string, even for POST; signed requests get the timestamp,
// recvWindow and signature appended by the signer, and the canonical
// string used for signing is exactly the query string sent.
func (c *Client) do(ctx context.Context, method, path string, params *auth.Params, signed bool) ([]byte, error) {
	if params == nil {
		params = auth.NewParams()
	}

	if signed {
		params = c.signer.Signed(params)
	}

	requestURL := c.baseURL + path
	if params.Len() > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if signed {
		req.Header.Set("X-MBX-APIKEY", c.signer.APIKey())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}
