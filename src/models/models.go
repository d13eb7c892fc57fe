package models

import "github.com/shopspring/decimal"

type SubmitOrderRequest struct {
	OrderID  string          `json:"order_id,omitempty"` // generated when empty
	Side     string          `json:"side"`
	Type     string          `json:"type,omitempty"` // inferred from price when empty
	Price    decimal.Decimal `json:"price"`          // number or string, e.g. "150.25"
	Quantity int64           `json:"quantity"`
}

type SubmitOrderResponse struct {
	OrderID           string      `json:"order_id"`
	Status            string      `json:"status"`
	Message           string      `json:"message,omitempty"`
	FilledQuantity    int64       `json:"filled_quantity"`
	RemainingQuantity int64       `json:"remaining_quantity"`
	DiscardedQuantity int64       `json:"discarded_quantity,omitempty"`
	Trades            []TradeInfo `json:"trades,omitempty"`
}

type TradeInfo struct {
	TradeID     string `json:"trade_id"`
	BuyOrderID  string `json:"buy_order_id"`
	SellOrderID string `json:"sell_order_id"`
	Price       string `json:"price"`
	Quantity    int64  `json:"quantity"`
	Timestamp   int64  `json:"timestamp"` // unix timestamp in microseconds
}

type CancelOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type OrderBookResponse struct {
	Symbol    string           `json:"symbol"`
	Timestamp int64            `json:"timestamp"` // unix timestamp in milliseconds
	Bids      []PriceLevelInfo `json:"bids"`      // sorted descending (highest first)
	Asks      []PriceLevelInfo `json:"asks"`      // sorted ascending (lowest first)
}

type PriceLevelInfo struct {
	Price    string             `json:"price"`
	Quantity int64              `json:"quantity"` // aggregated quantity at this price
	Count    int                `json:"count"`
	Orders   []RestingOrderInfo `json:"orders,omitempty"`
}

type RestingOrderInfo struct {
	OrderID   string `json:"order_id"`
	Quantity  int64  `json:"quantity"`
	Remaining int64  `json:"remaining"`
	Timestamp int64  `json:"timestamp"`
}

type OrderStatusResponse struct {
	OrderID        string `json:"order_id"`
	Symbol         string `json:"symbol"`
	Side           string `json:"side"`
	Price          string `json:"price"`
	Quantity       int64  `json:"quantity"`
	FilledQuantity int64  `json:"filled_quantity"`
	Remaining      int64  `json:"remaining"`
	Status         string `json:"status"`
	Timestamp      int64  `json:"timestamp"`
}

type TradesResponse struct {
	Symbol string      `json:"symbol"`
	Count  int         `json:"count"`
	Trades []TradeInfo `json:"trades"` // oldest first
}

type ClearTradesResponse struct {
	Cleared int `json:"cleared"`
}

type ClearBookResponse struct {
	Symbol  string `json:"symbol"`
	Cleared int    `json:"cleared"` // resting orders dropped
}

type HealthResponse struct {
	Status          string `json:"status"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	OrdersProcessed int64  `json:"orders_processed"`
}

type MetricsResponse struct {
	OrdersReceived         int64   `json:"orders_received"`
	OrdersMatched          int64   `json:"orders_matched"`
	OrdersRejected         int64   `json:"orders_rejected"`
	OrdersCancelled        int64   `json:"orders_cancelled"`
	OrdersInBook           int64   `json:"orders_in_book"`
	BidLevels              int     `json:"bid_levels"`
	AskLevels              int     `json:"ask_levels"`
	TradesExecuted         int64   `json:"trades_executed"`
	QueueDepth             int     `json:"queue_depth"`
	LatencyP50Ms           float64 `json:"latency_p50_ms"`
	LatencyP99Ms           float64 `json:"latency_p99_ms"`
	LatencyP999Ms          float64 `json:"latency_p999_ms"`
	ThroughputOrdersPerSec float64 `json:"throughput_orders_per_sec"`
}
