package models

// ErrorResponse is the envelope for all failed requests
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Message: message,
	}
}

// LoginResponse is returned by POST /auth/login on success
type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	Message   string `json:"message"`
}

// BalanceResponse is returned by GET /balance/:asset
type BalanceResponse struct {
	Success bool    `json:"success"`
	Asset   string  `json:"asset"`
	Balance float64 `json:"balance"`
	Message string  `json:"message"`
}

// TradeResponse wraps a completed buy or sell
type TradeResponse struct {
	Success     bool        `json:"success"`
	OrderID     string      `json:"orderId"`
	Type        string      `json:"type"`
	Transaction interface{} `json:"transaction"`
	Message     string      `json:"message"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment,omitempty"`
}

// ConnectivityResponse is returned by GET /test-binance
type ConnectivityResponse struct {
	BinanceConnected bool   `json:"binanceConnected"`
	ServerTime       int64  `json:"serverTime,omitempty"`
	Error            string `json:"error,omitempty"`
	Message          string `json:"message"`
}
