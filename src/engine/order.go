package engine

import (
	"time"

	"github.com/google/uuid"
)

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

func (s OrderSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

func (s OrderSide) Opposite() OrderSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type OrderType string

const (
	TypeLimit  OrderType = "LIMIT"
	TypeMarket OrderType = "MARKET"
)

// OrderTypeForPrice maps the price-only convention where a non-positive
// price means "take whatever liquidity exists".
func OrderTypeForPrice(price int64) OrderType {
	if price <= 0 {
		return TypeMarket
	}
	return TypeLimit
}

type OrderStatus string

const (
	StatusAccepted    OrderStatus = "ACCEPTED"
	StatusPartialFill OrderStatus = "PARTIAL_FILL"
	StatusFilled      OrderStatus = "FILLED"
	StatusExpired     OrderStatus = "EXPIRED"
	StatusCancelled   OrderStatus = "CANCELLED"
)

// edge case: price stored as int64 ticks to avoid floating-point precision errors
type Order struct {
	ID        string
	Side      OrderSide
	Type      OrderType
	Price     int64 // ticks, ignored for MARKET
	Quantity  int64 // original quantity
	Remaining int64 // decremented by the matcher only
	Timestamp int64 // unix micros
}

type Trade struct {
	TradeID     string
	BuyOrderID  string
	SellOrderID string
	Price       int64
	Quantity    int64
	Timestamp   int64
}

func NewOrder(id string, side OrderSide, orderType OrderType, price, quantity int64) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Type:      orderType,
		Price:     price,
		Quantity:  quantity,
		Remaining: quantity,
		Timestamp: time.Now().UnixMicro(),
	}
}

func NewLimitOrder(id string, side OrderSide, price, quantity int64) *Order {
	return NewOrder(id, side, TypeLimit, price, quantity)
}

func NewMarketOrder(id string, side OrderSide, quantity int64) *Order {
	return NewOrder(id, side, TypeMarket, 0, quantity)
}

func (o *Order) IsMarket() bool {
	return o.Type == TypeMarket
}

func (o *Order) FilledQuantity() int64 {
	return o.Quantity - o.Remaining
}

// crosses reports whether o may trade against a resting level at price.
func (o *Order) crosses(price int64) bool {
	if o.IsMarket() {
		return true
	}
	if o.Side == SideBuy {
		return o.Price >= price
	}
	return o.Price <= price
}

func (o *Order) validate() error {
	if !o.Side.Valid() {
		return ErrInvalidSide
	}
	if o.Remaining <= 0 || o.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	switch o.Type {
	case TypeMarket:
	case TypeLimit:
		if o.Price <= 0 {
			return ErrInvalidPrice
		}
	default:
		return ErrInvalidType
	}
	return nil
}

func newTrade(buyID, sellID string, price, quantity int64) Trade {
	return Trade{
		TradeID:     uuid.New().String(),
		BuyOrderID:  buyID,
		SellOrderID: sellID,
		Price:       price,
		Quantity:    quantity,
		Timestamp:   time.Now().UnixMicro(),
	}
}
