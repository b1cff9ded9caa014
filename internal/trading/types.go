package trading

import (
	"github.com/shopspring/decimal"

	"cryptoproxy/internal/binance"
)

// TradeRequest describes an arbitrary well-formed trade. MARKET BUY
// orders are sized by exactly one of Quantity or QuoteOrderQty; LIMIT
// orders require Quantity and Price.
type TradeRequest struct {
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity,omitempty"`
	Price         decimal.Decimal `json:"price,omitempty"`
	QuoteOrderQty decimal.Decimal `json:"quoteOrderQty,omitempty"`
}

// TradeStatusResponse is the normalized shape trade operations return
// to HTTP callers.
type TradeStatusResponse struct {
	TradeID         string          `json:"tradeId"`
	Status          string          `json:"status"`
	Symbol          string          `json:"symbol"`
	Side            string          `json:"side"`
	Type            string          `json:"type"`
	ExecutedQty     decimal.Decimal `json:"executedQty"`
	Price           decimal.Decimal `json:"price"`
	TransactionTime int64           `json:"transactionTime"`
}

// newTradeStatus normalizes an exchange order result
func newTradeStatus(order *binance.OrderResult) *TradeStatusResponse {
	return &TradeStatusResponse{
		TradeID:         formatOrderID(order.OrderID),
		Status:          order.Status,
		Symbol:          order.Symbol,
		Side:            order.Side,
		Type:            order.Type,
		ExecutedQty:     order.ExecutedQty,
		Price:           order.Price,
		TransactionTime: order.TransactionTime(),
	}
}
