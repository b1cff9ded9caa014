package binance

import (
	"github.com/shopspring/decimal"
)

// serverTimeResponse is the payload of GET /api/v3/time
type serverTimeResponse struct {
	ServerTime int64 `json:"serverTime"`
}

// Balance represents a single asset balance in an account snapshot.
// Free and Locked arrive as decimal strings from the exchange.
type Balance struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
}

// AccountResponse is the subset of GET /api/v3/account this service
// consumes.
type AccountResponse struct {
	CanTrade    bool      `json:"canTrade"`
	AccountType string    `json:"accountType"`
	UpdateTime  int64     `json:"updateTime"`
	Balances    []Balance `json:"balances"`
}

// Fill represents a partial execution reported with an order response
type Fill struct {
	Price           decimal.Decimal `json:"price"`
	Qty             decimal.Decimal `json:"qty"`
	Commission      decimal.Decimal `json:"commission"`
	CommissionAsset string          `json:"commissionAsset"`
	TradeID         int64           `json:"tradeId"`
}

// OrderResult is the canonical shape all trade-affecting operations
// normalize into. Order placement responses carry transactTime; order
// lookups carry time instead, so both fields are mapped.
type OrderResult struct {
	Symbol       string          `json:"symbol"`
	OrderID      int64           `json:"orderId"`
	Status       string          `json:"status"`
	Side         string          `json:"side"`
	Type         string          `json:"type"`
	TimeInForce  string          `json:"timeInForce,omitempty"`
	Price        decimal.Decimal `json:"price"`
	OrigQty      decimal.Decimal `json:"origQty"`
	ExecutedQty  decimal.Decimal `json:"executedQty"`
	TransactTime int64           `json:"transactTime,omitempty"`
	Time         int64           `json:"time,omitempty"`
	Fills        []Fill          `json:"fills,omitempty"`
}

// TransactionTime returns the epoch-ms instant of the order event,
// whichever field the exchange populated.
func (o *OrderResult) TransactionTime() int64 {
	if o.TransactTime != 0 {
		return o.TransactTime
	}
	return o.Time
}

// OrderParams describes an order to be placed. For MARKET orders
// exactly one of Quantity or QuoteOrderQty sizes the order; LIMIT
// orders require Quantity and Price and are sent good-till-cancelled.
type OrderParams struct {
	Symbol        string
	Side          string // BUY or SELL
	Type          string // MARKET or LIMIT
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	QuoteOrderQty decimal.Decimal
}

// exchangeInfoResponse is the subset of GET /api/v3/exchangeInfo this
// service consumes.
type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol  string         `json:"symbol"`
	Status  string         `json:"status"`
	Filters []symbolFilter `json:"filters"`
}

type symbolFilter struct {
	FilterType  string          `json:"filterType"`
	MinNotional decimal.Decimal `json:"minNotional"`
}
