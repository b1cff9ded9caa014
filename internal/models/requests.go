package models

import (
	"github.com/shopspring/decimal"
)

// LoginRequest carries the static service credentials exchanged for an
// access token. These are the gateway's own credentials, not the
// Binance API keys.
type LoginRequest struct {
	APIKey    string `json:"apiKey"`
	SecretKey string `json:"secretKey"`
}

// BuyRequest is the payload of POST /trade/buy-crypto. Amount is
// denominated in the quote asset.
type BuyRequest struct {
	Symbol     string          `json:"symbol"`
	Amount     decimal.Decimal `json:"amount"`
	QuoteAsset string          `json:"quoteAsset"`
}

// SellRequest is the payload of POST /trade/sell-crypto. Amount is
// denominated in the base asset.
type SellRequest struct {
	Symbol    string          `json:"symbol"`
	Amount    decimal.Decimal `json:"amount"`
	BaseAsset string          `json:"baseAsset"`
}
