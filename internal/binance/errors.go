package binance

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError represents a rejection from the Binance API. The original
// HTTP status and raw body are preserved so callers can surface the
// exchange's verdict unchanged.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"msg"`
	Body       string `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("binance API error %d (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("binance API error (HTTP %d): %s", e.StatusCode, e.Body)
}

// IsAuthError checks if this is an authentication error
func (e *APIError) IsAuthError() bool {
	switch e.Code {
	case -1022, -2014, -2015: // invalid signature, bad key format, bad key/IP/permissions
		return true
	}
	return false
}

// IsInsufficientBalance checks if the account lacked funds for the order
func (e *APIError) IsInsufficientBalance() bool {
	return e.Code == -2010
}

// parseAPIError builds an APIError from a non-2xx exchange response
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       strings.TrimSpace(string(body)),
	}

	// Binance errors are JSON {"code":-1121,"msg":"..."}; anything
	// else is kept as the raw body.
	var parsed struct {
		Code    int    `json:"code"`
		Message string `json:"msg"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Code != 0 {
		apiErr.Code = parsed.Code
		apiErr.Message = parsed.Message
	}

	if apiErr.Body == "" {
		apiErr.Body = "empty response"
	}

	return apiErr
}

// FilterNotFoundError indicates that exchange metadata for a symbol
// carries no notional filter, or the symbol is unknown entirely.
type FilterNotFoundError struct {
	Symbol string
}

// Error implements the error interface
func (e *FilterNotFoundError) Error() string {
	return fmt.Sprintf("minNotional filter not found for symbol %s", e.Symbol)
}
