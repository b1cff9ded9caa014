package trading

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cryptoproxy/internal/binance"
)

// ExchangeClient is the exchange surface the gateway depends on
type ExchangeClient interface {
	GetServerTime(ctx context.Context) (int64, error)
	GetMinNotional(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetAccountBalance(ctx context.Context) ([]binance.Balance, error)
	GetOrderStatus(ctx context.Context, orderID string) (*binance.OrderResult, error)
	ExecuteTrade(ctx context.Context, order binance.OrderParams) (*binance.OrderResult, error)
}

// Service implements the trading business logic on top of the
// exchange client. It holds no per-request state.
type Service struct {
	client ExchangeClient
	logger zerolog.Logger
}

// NewService creates a new trading service
func NewService(client ExchangeClient, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// GetBalance returns the free balance of an asset from the latest
// account snapshot. An asset absent from the snapshot yields zero;
// callers cannot distinguish an unknown asset from a zero balance.
func (s *Service) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	balances, err := s.client.GetAccountBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	for _, b := range balances {
		if b.Asset == asset {
			return b.Free, nil
		}
	}

	return decimal.Zero, nil
}

// BuyCrypto places a MARKET BUY sized in the quote asset. The
// symbol's minimum notional is fetched fresh for every buy and the
// order is refused locally when the amount falls below it.
func (s *Service) BuyCrypto(ctx context.Context, symbol string, amount decimal.Decimal, quoteAsset string) (*TradeStatusResponse, error) {
	minNotional, err := s.client.GetMinNotional(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if amount.LessThan(minNotional) {
		s.logger.Warn().
			Str("symbol", symbol).
			Str("amount", amount.String()).
			Str("min_notional", minNotional.String()).
			Msg("Buy amount below minimum notional")
		return nil, &InsufficientAmountError{
			Symbol:    symbol,
			Minimum:   minNotional,
			Requested: amount,
		}
	}

	s.logger.Info().
		Str("symbol", symbol).
		Str("amount", amount.String()).
		Str("quote_asset", quoteAsset).
		Msg("Buying crypto")

	order, err := s.client.ExecuteTrade(ctx, binance.OrderParams{
		Symbol:        symbol,
		Side:          "BUY",
		Type:          "MARKET",
		QuoteOrderQty: amount,
	})
	if err != nil {
		return nil, err
	}

	return newTradeStatus(order), nil
}

// SellCrypto places a MARKET SELL sized in base-asset quantity. The
// minimum notional is denominated in the quote asset, so no local
// guard applies; undersized sells come back as exchange rejections.
func (s *Service) SellCrypto(ctx context.Context, symbol string, quantity decimal.Decimal, baseAsset string) (*TradeStatusResponse, error) {
	s.logger.Info().
		Str("symbol", symbol).
		Str("quantity", quantity.String()).
		Str("base_asset", baseAsset).
		Msg("Selling crypto")

	order, err := s.client.ExecuteTrade(ctx, binance.OrderParams{
		Symbol:   symbol,
		Side:     "SELL",
		Type:     "MARKET",
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}

	return newTradeStatus(order), nil
}

// CreateTrade executes an arbitrary well-formed trade request
func (s *Service) CreateTrade(ctx context.Context, req TradeRequest) (*TradeStatusResponse, error) {
	if err := validateTradeRequest(req); err != nil {
		return nil, err
	}

	order, err := s.client.ExecuteTrade(ctx, binance.OrderParams{
		Symbol:        req.Symbol,
		Side:          req.Side,
		Type:          req.Type,
		Quantity:      req.Quantity,
		Price:         req.Price,
		QuoteOrderQty: req.QuoteOrderQty,
	})
	if err != nil {
		return nil, err
	}

	return newTradeStatus(order), nil
}

// GetTradeStatus looks up an order on the exchange and translates it
// into the gateway's status shape.
func (s *Service) GetTradeStatus(ctx context.Context, tradeID string) (*TradeStatusResponse, error) {
	if tradeID == "" {
		return nil, &ValidationError{Message: "trade id is required"}
	}

	order, err := s.client.GetOrderStatus(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	status := newTradeStatus(order)
	status.TradeID = tradeID
	return status, nil
}

// ServerTime reports the exchange clock, used for connectivity checks
func (s *Service) ServerTime(ctx context.Context) (int64, error) {
	return s.client.GetServerTime(ctx)
}

func validateTradeRequest(req TradeRequest) error {
	if req.Symbol == "" {
		return &ValidationError{Message: "symbol is required"}
	}
	if req.Side != "BUY" && req.Side != "SELL" {
		return &ValidationError{Message: "side must be BUY or SELL"}
	}

	switch req.Type {
	case "MARKET":
		if req.Side == "BUY" {
			// Exactly one sizing field for a market buy.
			hasQty := !req.Quantity.IsZero()
			hasQuoteQty := !req.QuoteOrderQty.IsZero()
			if hasQty == hasQuoteQty {
				return &ValidationError{Message: "MARKET BUY requires exactly one of quantity or quoteOrderQty"}
			}
		} else if req.Quantity.IsZero() && req.QuoteOrderQty.IsZero() {
			return &ValidationError{Message: "MARKET SELL requires quantity or quoteOrderQty"}
		}
	case "LIMIT":
		if req.Quantity.IsZero() {
			return &ValidationError{Message: "LIMIT orders require quantity"}
		}
		if req.Price.IsZero() {
			return &ValidationError{Message: "LIMIT orders require price"}
		}
	default:
		return &ValidationError{Message: "type must be MARKET or LIMIT"}
	}

	return nil
}

func formatOrderID(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}
