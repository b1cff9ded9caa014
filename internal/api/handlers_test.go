package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoproxy/internal/auth"
	"cryptoproxy/internal/binance"
	"cryptoproxy/internal/config"
	"cryptoproxy/internal/models"
	"cryptoproxy/internal/trading"
)

// fakeExchange implements trading.ExchangeClient for handler tests
type fakeExchange struct {
	serverTime     int64
	serverTimeErr  error
	minNotional    decimal.Decimal
	minNotionalErr error
	balances       []binance.Balance
	order          *binance.OrderResult
	orderErr       error
	statusOrder    *binance.OrderResult

	lastOrder binance.OrderParams
}

func (f *fakeExchange) GetServerTime(ctx context.Context) (int64, error) {
	return f.serverTime, f.serverTimeErr
}

func (f *fakeExchange) GetMinNotional(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return f.minNotional, f.minNotionalErr
}

func (f *fakeExchange) GetAccountBalance(ctx context.Context) ([]binance.Balance, error) {
	return f.balances, nil
}

func (f *fakeExchange) GetOrderStatus(ctx context.Context, orderID string) (*binance.OrderResult, error) {
	return f.statusOrder, nil
}

func (f *fakeExchange) ExecuteTrade(ctx context.Context, order binance.OrderParams) (*binance.OrderResult, error) {
	f.lastOrder = order
	return f.order, f.orderErr
}

func newTestGateway(t *testing.T, exchange *fakeExchange) *Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 3000},
		Auth: config.AuthConfig{
			JWTSecret:        "test-signing-secret",
			TokenTTL:         time.Hour,
			ServiceAPIKey:    "demo-api",
			ServiceSecretKey: "demo-secret",
		},
		Logging: config.LoggingConfig{Level: "info"},
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	require.NoError(t, err)

	tradingService := trading.NewService(exchange, zerolog.Nop())

	server, err := NewServer(cfg, tokens, tradingService, zerolog.Nop())
	require.NoError(t, err)

	return server
}

func doJSON(s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, s *Server) string {
	t.Helper()

	w := doJSON(s, http.MethodPost, "/auth/login", "", models.LoginRequest{
		APIKey:    "demo-api",
		SecretKey: "demo-secret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func testBalances() []binance.Balance {
	return []binance.Balance{
		{Asset: "EUR", Free: decimal.RequireFromString("150.75"), Locked: decimal.Zero},
		{Asset: "BTC", Free: decimal.RequireFromString("0.01"), Locked: decimal.Zero},
	}
}

func testOrder() *binance.OrderResult {
	return &binance.OrderResult{
		Symbol:       "BTCEUR",
		OrderID:      42,
		Status:       "FILLED",
		Side:         "BUY",
		Type:         "MARKET",
		ExecutedQty:  decimal.RequireFromString("0.00025"),
		TransactTime: 1617181339468,
	}
}

func TestHealth(t *testing.T) {
	server := newTestGateway(t, &fakeExchange{})

	w := doJSON(server, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)
}

func TestTestBinance(t *testing.T) {
	t.Run("reports connectivity", func(t *testing.T) {
		server := newTestGateway(t, &fakeExchange{serverTime: 1617181339468})

		w := doJSON(server, http.MethodGet, "/test-binance", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.ConnectivityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.BinanceConnected)
		assert.Equal(t, int64(1617181339468), resp.ServerTime)
	})

	t.Run("reports an unreachable exchange", func(t *testing.T) {
		server := newTestGateway(t, &fakeExchange{
			serverTimeErr: &binance.APIError{StatusCode: 503, Message: "maintenance"},
		})

		w := doJSON(server, http.MethodGet, "/test-binance", "", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp models.ConnectivityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.BinanceConnected)
	})
}

func TestLogin(t *testing.T) {
	server := newTestGateway(t, &fakeExchange{})

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		w := doJSON(server, http.MethodPost, "/auth/login", "", models.LoginRequest{
			APIKey:    "demo-api",
			SecretKey: "demo-secret",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, int64(3600), resp.ExpiresIn)
	})

	t.Run("rejects wrong credentials", func(t *testing.T) {
		w := doJSON(server, http.MethodPost, "/auth/login", "", models.LoginRequest{
			APIKey:    "demo-api",
			SecretKey: "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		w := doJSON(server, http.MethodPost, "/auth/login", "", models.LoginRequest{
			APIKey: "demo-api",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "required")
	})
}

func TestGetBalanceEndpoint(t *testing.T) {
	server := newTestGateway(t, &fakeExchange{balances: testBalances()})
	token := login(t, server)

	t.Run("requires a token", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/balance/EUR", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns the asset balance", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/balance/EUR", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.BalanceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "EUR", resp.Asset)
		assert.Equal(t, 150.75, resp.Balance)
	})

	t.Run("lowercase asset codes are normalized", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/balance/btc", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.BalanceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "BTC", resp.Asset)
		assert.Equal(t, 0.01, resp.Balance)
	})

	t.Run("unknown asset reports zero", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/balance/ZZZ", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.BalanceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Zero(t, resp.Balance)
	})
}

func TestBuyCryptoEndpoint(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		server := newTestGateway(t, &fakeExchange{})

		w := doJSON(server, http.MethodPost, "/trade/buy-crypto", "", models.BuyRequest{
			Symbol: "BTCEUR", Amount: decimal.RequireFromString("10"), QuoteAsset: "EUR",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an incomplete payload", func(t *testing.T) {
		server := newTestGateway(t, &fakeExchange{})
		token := login(t, server)

		w := doJSON(server, http.MethodPost, "/trade/buy-crypto", token, models.BuyRequest{
			Symbol: "BTCEUR",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an amount below the minimum notional", func(t *testing.T) {
		exchange := &fakeExchange{
			balances:    testBalances(),
			minNotional: decimal.RequireFromString("10"),
		}
		server := newTestGateway(t, exchange)
		token := login(t, server)

		w := doJSON(server, http.MethodPost, "/trade/buy-crypto", token, models.BuyRequest{
			Symbol: "BTCEUR", Amount: decimal.RequireFromString("5"), QuoteAsset: "EUR",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Message, "10")
		assert.Empty(t, exchange.lastOrder.Symbol, "no order should reach the exchange")
	})

	t.Run("rejects a spend exceeding the quote balance", func(t *testing.T) {
		exchange := &fakeExchange{
			balances:    testBalances(),
			minNotional: decimal.RequireFromString("10"),
		}
		server := newTestGateway(t, exchange)
		token := login(t, server)

		w := doJSON(server, http.MethodPost, "/trade/buy-crypto", token, models.BuyRequest{
			Symbol: "BTCEUR", Amount: decimal.RequireFromString("200"), QuoteAsset: "EUR",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "insufficient")
		assert.Empty(t, exchange.lastOrder.Symbol)
	})

	t.Run("places a market buy", func(t *testing.T) {
		exchange := &fakeExchange{
			balances:    testBalances(),
			minNotional: decimal.RequireFromString("10"),
			order:       testOrder(),
		}
		server := newTestGateway(t, exchange)
		token := login(t, server)

		w := doJSON(server, http.MethodPost, "/trade/buy-crypto", token, models.BuyRequest{
			Symbol: "BTCEUR", Amount: decimal.RequireFromString("50"), QuoteAsset: "EUR",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.TradeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "42", resp.OrderID)
		assert.Equal(t, "BUY", exchange.lastOrder.Side)
		assert.True(t, exchange.lastOrder.QuoteOrderQty.Equal(decimal.RequireFromString("50")))
	})

	t.Run("maps an exchange rejection to 502", func(t *testing.T) {
		exchange := &fakeExchange{
			balances:    testBalances(),
			minNotional: decimal.RequireFromString("10"),
			orderErr:    &binance.APIError{StatusCode: 400, Code: -2010, Message: "insufficient balance"},
		}
		server := newTestGateway(t, exchange)
		token := login(t, server)

		w := doJSON(server, http.MethodPost, "/trade/buy-crypto", token, models.BuyRequest{
			Symbol: "BTCEUR", Amount: decimal.RequireFromString("50"), QuoteAsset: "EUR",
		})

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestSellCryptoEndpoint(t *testing.T) {
	t.Run("rejects a sale exceeding the base balance", func(t *testing.T) {
		server := newTestGateway(t, &fakeExchange{balances: testBalances()})
		token := login(t, server)

		w := doJSON(server, http.MethodPost, "/trade/sell-crypto", token, models.SellRequest{
			Symbol: "BTCEUR", Amount: decimal.RequireFromString("1"), BaseAsset: "BTC",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "insufficient")
	})

	t.Run("places a market sell", func(t *testing.T) {
		order := testOrder()
		order.Side = "SELL"
		exchange := &fakeExchange{balances: testBalances(), order: order}
		server := newTestGateway(t, exchange)
		token := login(t, server)

		w := doJSON(server, http.MethodPost, "/trade/sell-crypto", token, models.SellRequest{
			Symbol: "BTCEUR", Amount: decimal.RequireFromString("0.005"), BaseAsset: "BTC",
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "SELL", exchange.lastOrder.Side)
		assert.True(t, exchange.lastOrder.Quantity.Equal(decimal.RequireFromString("0.005")))
	})
}

func TestCreateTradeEndpoint(t *testing.T) {
	server := newTestGateway(t, &fakeExchange{order: testOrder()})
	token := login(t, server)

	t.Run("creates a trade", func(t *testing.T) {
		w := doJSON(server, http.MethodPost, "/api/trade/create", token, trading.TradeRequest{
			Symbol:        "BTCEUR",
			Side:          "BUY",
			Type:          "MARKET",
			QuoteOrderQty: decimal.RequireFromString("10"),
		})

		require.Equal(t, http.StatusCreated, w.Code)
		var resp trading.TradeStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "42", resp.TradeID)
	})

	t.Run("rejects an invalid trade", func(t *testing.T) {
		w := doJSON(server, http.MethodPost, "/api/trade/create", token, trading.TradeRequest{
			Symbol: "BTCEUR",
			Side:   "BUY",
			Type:   "MARKET",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetTradeStatusEndpoint(t *testing.T) {
	statusOrder := testOrder()
	statusOrder.Time = 1617181339468
	server := newTestGateway(t, &fakeExchange{statusOrder: statusOrder})
	token := login(t, server)

	w := doJSON(server, http.MethodGet, "/api/trade/status/42", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp trading.TradeStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "42", resp.TradeID)
	assert.Equal(t, "FILLED", resp.Status)
}
