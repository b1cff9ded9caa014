package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cryptoproxy/internal/auth"
	"cryptoproxy/internal/binance"
	"cryptoproxy/internal/config"
	"cryptoproxy/internal/models"
	"cryptoproxy/internal/trading"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	trading *trading.Service
	tokens  *auth.TokenService
	authCfg config.AuthConfig
	logger  zerolog.Logger
}

// NewHandlers creates new handlers instance
func NewHandlers(tradingService *trading.Service, tokens *auth.TokenService, authCfg config.AuthConfig, logger zerolog.Logger) *Handlers {
	return &Handlers{
		trading: tradingService,
		tokens:  tokens,
		authCfg: authCfg,
		logger:  logger,
	}
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// TestBinance handles GET /test-binance, a connectivity probe against
// the exchange's server-time endpoint.
func (h *Handlers) TestBinance(c *gin.Context) {
	serverTime, err := h.trading.ServerTime(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Binance connectivity check failed")
		c.JSON(http.StatusInternalServerError, models.ConnectivityResponse{
			BinanceConnected: false,
			Error:            err.Error(),
			Message:          "Binance connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, models.ConnectivityResponse{
		BinanceConnected: true,
		ServerTime:       serverTime,
		Message:          "Binance connection is working",
	})
}

// Login handles POST /auth/login. It verifies the configured static
// service credentials and issues an access token on success.
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.APIKey == "" || req.SecretKey == "" {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("API key and Secret key are required"))
		return
	}

	if req.APIKey != h.authCfg.ServiceAPIKey || req.SecretKey != h.authCfg.ServiceSecretKey {
		h.logger.Warn().
			Str("api_key", config.MaskKey(req.APIKey)).
			Msg("Login attempt with invalid credentials")
		c.JSON(http.StatusUnauthorized,
			models.NewErrorResponse("Invalid credentials"))
		return
	}

	token, err := h.tokens.Issue(auth.TokenPayload{
		SubjectID: "service-account",
		Role:      "api-user",
	}, h.authCfg.TokenTTL)
	if err != nil {
		h.logger.Error().Err(err).Msg("Token issuance failed")
		c.JSON(http.StatusInternalServerError,
			models.NewErrorResponse("Authentication error"))
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: int64(h.authCfg.TokenTTL.Seconds()),
		Message:   "Authentication successful",
	})
}

// GetBalance handles GET /balance/:asset
func (h *Handlers) GetBalance(c *gin.Context) {
	asset := strings.ToUpper(c.Param("asset"))
	if asset == "" {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("You must provide an asset code (e.g. EUR, BTC, USDT)"))
		return
	}

	balance, err := h.trading.GetBalance(c.Request.Context(), asset)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve account balance")
		return
	}

	c.JSON(http.StatusOK, models.BalanceResponse{
		Success: true,
		Asset:   asset,
		Balance: balance.InexactFloat64(),
		Message: fmt.Sprintf("Available %s balance on Binance account", asset),
	})
}

// BuyCrypto handles POST /trade/buy-crypto. The quote-asset balance is
// checked before the order is attempted.
func (h *Handlers) BuyCrypto(c *gin.Context) {
	var req models.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Symbol == "" || !req.Amount.IsPositive() || req.QuoteAsset == "" {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("You must provide a crypto symbol, a positive amount, and a quote asset (e.g. EUR, USDT)"))
		return
	}

	quoteAsset := strings.ToUpper(req.QuoteAsset)

	available, err := h.trading.GetBalance(c.Request.Context(), quoteAsset)
	if err != nil {
		h.respondError(c, err, "Error while buying crypto")
		return
	}
	if req.Amount.GreaterThan(available) {
		h.respondError(c, &trading.InsufficientFundsError{
			Asset:     quoteAsset,
			Requested: req.Amount,
			Available: available,
		}, "Error while buying crypto")
		return
	}

	result, err := h.trading.BuyCrypto(c.Request.Context(), req.Symbol, req.Amount, quoteAsset)
	if err != nil {
		h.respondError(c, err, "Error while buying crypto")
		return
	}

	c.JSON(http.StatusOK, models.TradeResponse{
		Success:     true,
		OrderID:     result.TradeID,
		Type:        result.Type,
		Transaction: result,
		Message: fmt.Sprintf("Successfully bought %s %s for %s %s",
			result.ExecutedQty.String(), req.Symbol, req.Amount.String(), quoteAsset),
	})
}

// SellCrypto handles POST /trade/sell-crypto. The base-asset balance
// is checked before the order is attempted.
func (h *Handlers) SellCrypto(c *gin.Context) {
	var req models.SellRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Symbol == "" || !req.Amount.IsPositive() || req.BaseAsset == "" {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("You must provide a crypto symbol, a positive amount, and a base asset (e.g. BTC, ETH)"))
		return
	}

	baseAsset := strings.ToUpper(req.BaseAsset)

	available, err := h.trading.GetBalance(c.Request.Context(), baseAsset)
	if err != nil {
		h.respondError(c, err, "Error while selling crypto")
		return
	}
	if req.Amount.GreaterThan(available) {
		h.respondError(c, &trading.InsufficientFundsError{
			Asset:     baseAsset,
			Requested: req.Amount,
			Available: available,
		}, "Error while selling crypto")
		return
	}

	result, err := h.trading.SellCrypto(c.Request.Context(), req.Symbol, req.Amount, baseAsset)
	if err != nil {
		h.respondError(c, err, "Error while selling crypto")
		return
	}

	c.JSON(http.StatusOK, models.TradeResponse{
		Success:     true,
		OrderID:     result.TradeID,
		Type:        result.Type,
		Transaction: result,
		Message: fmt.Sprintf("Successfully sold %s %s", req.Amount.String(), baseAsset),
	})
}

// CreateTrade handles POST /api/trade/create
func (h *Handlers) CreateTrade(c *gin.Context) {
	var req trading.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse("Invalid request body"))
		return
	}

	result, err := h.trading.CreateTrade(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Error creating trade")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetTradeStatus handles GET /api/trade/status/:id
func (h *Handlers) GetTradeStatus(c *gin.Context) {
	tradeID := c.Param("id")

	status, err := h.trading.GetTradeStatus(c.Request.Context(), tradeID)
	if err != nil {
		h.respondError(c, err, "Error getting trade status")
		return
	}

	c.JSON(http.StatusOK, status)
}

// respondError maps an error to its HTTP status and writes the error
// envelope. Local guards short-circuit as 400; upstream rejections
// surface as 502 with the exchange's verdict; everything else is 500.
func (h *Handlers) respondError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError

	var validationErr *trading.ValidationError
	var amountErr *trading.InsufficientAmountError
	var fundsErr *trading.InsufficientFundsError
	var filterErr *binance.FilterNotFoundError
	var apiErr *binance.APIError

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &amountErr),
		errors.As(err, &fundsErr):
		status = http.StatusBadRequest
	case errors.As(err, &filterErr):
		status = http.StatusInternalServerError
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	} else {
		h.logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}

	// Business-rule rejections carry their own message (it names the
	// violated limit); infrastructure failures keep the generic one
	// with the cause alongside.
	resp := models.NewErrorResponse(message)
	if status == http.StatusBadRequest {
		resp.Message = err.Error()
	} else {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}
