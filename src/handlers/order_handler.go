package handlers

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"limit-book/src/config"
	"limit-book/src/engine"
	"limit-book/src/models"
)

type OrderHandler struct {
	Ingress         engine.Ingress
	Matcher         *engine.Matcher
	Prices          PriceCodec
	StartTime       time.Time
	OrdersReceived  int64
	OrdersMatched   int64
	OrdersRejected  int64
	OrdersCancelled int64
	TradesExecuted  int64

	cfg          config.API
	latencies    []time.Duration
	latenciesMu  sync.RWMutex
	maxLatencies int
}

func NewOrderHandler(ingress engine.Ingress, priceScale int32, cfg config.API) *OrderHandler {
	maxLatencies := cfg.MaxLatencies
	if maxLatencies <= 0 {
		maxLatencies = 10000
	}

	return &OrderHandler{
		Ingress:      ingress,
		Matcher:      ingress.Matcher(),
		Prices:       NewPriceCodec(priceScale),
		StartTime:    time.Now(),
		cfg:          cfg,
		latencies:    make([]time.Duration, 0, maxLatencies),
		maxLatencies: maxLatencies,
	}
}

func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	var req models.SubmitOrderRequest

	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	order, err := h.buildOrder(&req)
	if err != nil {
		atomic.AddInt64(&h.OrdersRejected, 1)
		log.Warn().
			Err(err).
			Str("side", req.Side).
			Str("type", req.Type).
			Str("ip", c.IP()).
			Msg("Invalid order request")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}

	log.Info().
		Str("order_id", order.ID).
		Str("side", string(order.Side)).
		Str("type", string(order.Type)).
		Int64("price", order.Price).
		Int64("quantity", order.Quantity).
		Str("ip", c.IP()).
		Msg("Order submitted")

	atomic.AddInt64(&h.OrdersReceived, 1)

	startTime := time.Now()
	result, err := h.Ingress.Submit(c.UserContext(), order)
	h.recordLatency(time.Since(startTime))

	if err != nil {
		atomic.AddInt64(&h.OrdersRejected, 1)
		status := statusForError(err)
		event := log.Warn()
		if status == fiber.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Err(err).
			Str("order_id", order.ID).
			Int("status", status).
			Msg("Order rejected")
		return c.Status(status).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}

	response := models.SubmitOrderResponse{
		OrderID:           result.OrderID,
		Status:            string(result.Status),
		FilledQuantity:    result.FilledQuantity,
		RemainingQuantity: result.RemainingQuantity,
		DiscardedQuantity: result.DiscardedQuantity,
		Trades:            h.tradeInfos(result.Trades),
	}

	if result.FilledQuantity > 0 {
		atomic.AddInt64(&h.OrdersMatched, 1)
	}
	atomic.AddInt64(&h.TradesExecuted, int64(len(result.Trades)))

	log.Info().
		Str("order_id", result.OrderID).
		Str("status", string(result.Status)).
		Int64("filled_quantity", result.FilledQuantity).
		Int64("remaining_quantity", result.RemainingQuantity).
		Int64("discarded_quantity", result.DiscardedQuantity).
		Int("trades_count", len(result.Trades)).
		Msg("Order processed")

	switch result.Status {
	case engine.StatusAccepted:
		response.Message = "Order added to book"
		return c.Status(fiber.StatusCreated).JSON(response)
	case engine.StatusPartialFill:
		return c.Status(fiber.StatusAccepted).JSON(response)
	case engine.StatusExpired:
		response.Message = "No liquidity: market order discarded"
		return c.Status(fiber.StatusOK).JSON(response)
	default:
		return c.Status(fiber.StatusOK).JSON(response)
	}
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	cancelled, err := h.Ingress.Cancel(c.UserContext(), orderID)
	if err != nil {
		status := statusForError(err)
		log.Warn().
			Err(err).
			Str("order_id", orderID).
			Int("status", status).
			Msg("Cancel order failed")
		return c.Status(status).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}

	// edge case: unknown, filled and already cancelled orders look the same
	if !cancelled {
		log.Warn().
			Str("order_id", orderID).
			Str("ip", c.IP()).
			Msg("Cancel order: order not found")
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Order not found",
		})
	}

	atomic.AddInt64(&h.OrdersCancelled, 1)

	log.Info().
		Str("order_id", orderID).
		Str("ip", c.IP()).
		Msg("Order cancelled")

	return c.Status(fiber.StatusOK).JSON(models.CancelOrderResponse{
		OrderID: orderID,
		Status:  string(engine.StatusCancelled),
	})
}

func (h *OrderHandler) GetOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")

	order, ok := h.Matcher.GetOrder(orderID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Order not found",
		})
	}

	status := engine.StatusAccepted
	if order.Remaining < order.Quantity {
		status = engine.StatusPartialFill
	}

	return c.Status(fiber.StatusOK).JSON(models.OrderStatusResponse{
		OrderID:        order.ID,
		Symbol:         h.Matcher.Symbol,
		Side:           string(order.Side),
		Price:          h.Prices.Format(order.Price),
		Quantity:       order.Quantity,
		FilledQuantity: order.Quantity - order.Remaining,
		Remaining:      order.Remaining,
		Status:         string(status),
		Timestamp:      order.Timestamp,
	})
}

func (h *OrderHandler) GetOrderBook(c *fiber.Ctx) error {
	depth, err := strconv.Atoi(c.Query("depth", strconv.Itoa(h.cfg.DefaultDepth)))
	if err != nil || depth <= 0 {
		depth = h.cfg.DefaultDepth
	}

	// edge case: enforce maximum depth limit
	if depth > h.cfg.MaxDepth {
		depth = h.cfg.MaxDepth
	}

	withOrders := c.Query("orders", "true") != "false"

	snapshot := h.Matcher.SnapshotBook(depth)

	return c.Status(fiber.StatusOK).JSON(models.OrderBookResponse{
		Symbol:    h.Matcher.Symbol,
		Timestamp: time.Now().UnixMilli(),
		Bids:      h.levelInfos(snapshot.Bids, withOrders),
		Asks:      h.levelInfos(snapshot.Asks, withOrders),
	})
}

func (h *OrderHandler) GetTrades(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(h.cfg.TradesLimit)))
	if err != nil || limit <= 0 {
		limit = h.cfg.TradesLimit
	}

	trades := h.tradeInfos(h.Matcher.RecentTrades(limit))

	return c.Status(fiber.StatusOK).JSON(models.TradesResponse{
		Symbol: h.Matcher.Symbol,
		Count:  len(trades),
		Trades: trades,
	})
}

func (h *OrderHandler) ClearTrades(c *fiber.Ctx) error {
	cleared := h.Matcher.ClearTrades()

	log.Info().
		Int("cleared", cleared).
		Str("ip", c.IP()).
		Msg("Trade history cleared")

	return c.Status(fiber.StatusOK).JSON(models.ClearTradesResponse{
		Cleared: cleared,
	})
}

func (h *OrderHandler) ClearBook(c *fiber.Ctx) error {
	cleared := h.Matcher.ClearBook()

	log.Warn().
		Str("symbol", h.Matcher.Symbol).
		Int("cleared", cleared).
		Str("ip", c.IP()).
		Msg("Order book cleared")

	return c.Status(fiber.StatusOK).JSON(models.ClearBookResponse{
		Symbol:  h.Matcher.Symbol,
		Cleared: cleared,
	})
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	uptime := time.Since(h.StartTime).Seconds()

	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:          "healthy",
		UptimeSeconds:   int64(uptime),
		OrdersProcessed: atomic.LoadInt64(&h.OrdersReceived),
	})
}

func (h *OrderHandler) Metrics(c *fiber.Ctx) error {
	stats := h.Matcher.Stats()

	queueDepth := 0
	if p, ok := h.Ingress.(*engine.Pipeline); ok {
		queueDepth = p.Pending()
	}

	p50, p99, p999 := h.calculateLatencyPercentiles()

	return c.Status(fiber.StatusOK).JSON(models.MetricsResponse{
		OrdersReceived:         atomic.LoadInt64(&h.OrdersReceived),
		OrdersMatched:          atomic.LoadInt64(&h.OrdersMatched),
		OrdersRejected:         atomic.LoadInt64(&h.OrdersRejected),
		OrdersCancelled:        atomic.LoadInt64(&h.OrdersCancelled),
		OrdersInBook:           int64(stats.RestingOrders),
		BidLevels:              stats.BidLevels,
		AskLevels:              stats.AskLevels,
		TradesExecuted:         atomic.LoadInt64(&h.TradesExecuted),
		QueueDepth:             queueDepth,
		LatencyP50Ms:           p50,
		LatencyP99Ms:           p99,
		LatencyP999Ms:          p999,
		ThroughputOrdersPerSec: h.calculateThroughput(),
	})
}

func (h *OrderHandler) buildOrder(req *models.SubmitOrderRequest) (*engine.Order, error) {
	side := engine.OrderSide(req.Side)
	if !side.Valid() {
		return nil, &ValidationError{Message: "Invalid order: side must be BUY or SELL"}
	}

	if req.Quantity <= 0 {
		return nil, &ValidationError{Message: "Invalid order: quantity must be positive"}
	}

	orderType := engine.OrderType(req.Type)
	switch orderType {
	case "":
		// edge case: without a type a non-positive price means MARKET
		orderType = engine.OrderTypeForPrice(int64(req.Price.Sign()))
	case engine.TypeLimit, engine.TypeMarket:
	default:
		return nil, &ValidationError{Message: "Invalid order: type must be LIMIT or MARKET"}
	}

	// edge case: a MARKET order ignores any price it was sent with
	if orderType == engine.TypeMarket {
		return engine.NewOrder(req.OrderID, side, orderType, 0, req.Quantity), nil
	}

	if req.Price.Sign() <= 0 {
		return nil, &ValidationError{Message: "Invalid order: price must be positive for LIMIT orders"}
	}
	ticks, err := h.Prices.ToTicks(req.Price)
	if err != nil {
		return nil, err
	}

	return engine.NewOrder(req.OrderID, side, orderType, ticks, req.Quantity), nil
}

func (h *OrderHandler) tradeInfos(trades []engine.Trade) []models.TradeInfo {
	infos := make([]models.TradeInfo, 0, len(trades))
	for _, trade := range trades {
		infos = append(infos, models.TradeInfo{
			TradeID:     trade.TradeID,
			BuyOrderID:  trade.BuyOrderID,
			SellOrderID: trade.SellOrderID,
			Price:       h.Prices.Format(trade.Price),
			Quantity:    trade.Quantity,
			Timestamp:   trade.Timestamp,
		})
	}
	return infos
}

func (h *OrderHandler) levelInfos(levels []engine.LevelSnapshot, withOrders bool) []models.PriceLevelInfo {
	infos := make([]models.PriceLevelInfo, 0, len(levels))
	for _, level := range levels {
		info := models.PriceLevelInfo{
			Price:    h.Prices.Format(level.Price),
			Quantity: level.Quantity,
			Count:    level.Count,
		}
		if withOrders {
			info.Orders = make([]models.RestingOrderInfo, 0, len(level.Orders))
			for _, o := range level.Orders {
				info.Orders = append(info.Orders, models.RestingOrderInfo{
					OrderID:   o.ID,
					Quantity:  o.Quantity,
					Remaining: o.Remaining,
					Timestamp: o.Timestamp,
				})
			}
		}
		infos = append(infos, info)
	}
	return infos
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrDuplicateID):
		return fiber.StatusConflict
	case errors.Is(err, engine.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, engine.ErrInvalidQuantity),
		errors.Is(err, engine.ErrInvalidPrice),
		errors.Is(err, engine.ErrInvalidSide),
		errors.Is(err, engine.ErrInvalidType):
		return fiber.StatusBadRequest
	case errors.Is(err, engine.ErrShutdownInProgress),
		errors.Is(err, engine.ErrQueueFull):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *OrderHandler) recordLatency(latency time.Duration) {
	h.latenciesMu.Lock()
	defer h.latenciesMu.Unlock()

	h.latencies = append(h.latencies, latency)

	// edge case: maintain rolling window by removing oldest measurements
	if len(h.latencies) > h.maxLatencies {
		removeCount := len(h.latencies) - h.maxLatencies
		h.latencies = h.latencies[removeCount:]
	}
}

func (h *OrderHandler) calculateLatencyPercentiles() (p50, p99, p999 float64) {
	h.latenciesMu.RLock()
	latenciesCopy := make([]time.Duration, len(h.latencies))
	copy(latenciesCopy, h.latencies)
	h.latenciesMu.RUnlock()

	if len(latenciesCopy) == 0 {
		return 0, 0, 0
	}

	sort.Slice(latenciesCopy, func(i, j int) bool {
		return latenciesCopy[i] < latenciesCopy[j]
	})

	at := func(q float64) float64 {
		idx := int(float64(len(latenciesCopy)) * q)
		// edge case: ensure index is within bounds
		if idx >= len(latenciesCopy) {
			idx = len(latenciesCopy) - 1
		}
		return float64(latenciesCopy[idx].Nanoseconds()) / 1e6
	}

	return at(0.50), at(0.99), at(0.999)
}

func (h *OrderHandler) calculateThroughput() float64 {
	uptime := time.Since(h.StartTime).Seconds()
	if uptime <= 0 {
		return 0
	}

	return float64(atomic.LoadInt64(&h.OrdersReceived)) / uptime
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
