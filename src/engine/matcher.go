package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Matcher owns one instrument's book, its cancellation index and the trade
// history. A single mutex covers all three so readers never see a torn book.
type Matcher struct {
	Symbol string

	mu     sync.RWMutex
	book   *OrderBook
	trades []Trade
}

func NewMatcher(symbol string) *Matcher {
	return &Matcher{
		Symbol: symbol,
		book:   newOrderBook(),
		trades: make([]Trade, 0, 1024),
	}
}

type MatchResult struct {
	OrderID           string
	Status            OrderStatus
	FilledQuantity    int64
	RemainingQuantity int64 // resting in the book
	DiscardedQuantity int64 // unfilled MARKET remainder
	Trades            []Trade
}

// Submit matches order against the book and rests any LIMIT remainder.
// The matcher works on its own copy; the caller's order is not modified.
// An empty ID is replaced by a generated one, reported in the result.
func (m *Matcher) Submit(order *Order) (*MatchResult, error) {
	o := *order
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	o.Remaining = o.Quantity
	if o.Timestamp == 0 {
		o.Timestamp = time.Now().UnixMicro()
	}

	if err := o.validate(); err != nil {
		return nil, reject(o.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// edge case: reject ids that are still resting, no mutation
	if m.book.contains(o.ID) {
		return nil, reject(o.ID, ErrDuplicateID)
	}

	return m.match(&o), nil
}

func (m *Matcher) match(order *Order) *MatchResult {
	result := &MatchResult{
		OrderID: order.ID,
		Trades:  make([]Trade, 0),
	}

	opposite := order.Side.Opposite()

	for order.Remaining > 0 {
		level, ok := m.book.best(opposite)
		if !ok {
			break
		}
		if !order.crosses(level.price) {
			break
		}

		for order.Remaining > 0 {
			h, resting, ok := m.book.arena.front(level)
			if !ok {
				break
			}

			qty := min(order.Remaining, resting.Remaining)

			// resting order sets the execution price
			var trade Trade
			if order.Side == SideBuy {
				trade = newTrade(order.ID, resting.ID, resting.Price, qty)
			} else {
				trade = newTrade(resting.ID, order.ID, resting.Price, qty)
			}
			m.trades = append(m.trades, trade)
			result.Trades = append(result.Trades, trade)

			order.Remaining -= qty
			resting.Remaining -= qty
			level.totalQty -= qty
			result.FilledQuantity += qty

			if resting.Remaining == 0 {
				delete(m.book.index, resting.ID)
				m.book.arena.remove(h)
			}
		}

		m.book.removeLevelIfEmpty(opposite, level.price)
	}

	switch {
	case order.Remaining == 0:
		result.Status = StatusFilled
	case order.IsMarket():
		// market orders never rest; the remainder is discarded
		result.DiscardedQuantity = order.Remaining
		if result.FilledQuantity > 0 {
			result.Status = StatusPartialFill
		} else {
			result.Status = StatusExpired
		}
	default:
		result.RemainingQuantity = order.Remaining
		m.book.insertResidual(order)
		if result.FilledQuantity > 0 {
			result.Status = StatusPartialFill
		} else {
			result.Status = StatusAccepted
		}
	}

	return result
}

// Cancel removes a resting order. It reports false when the id is not resting.
func (m *Matcher) Cancel(orderID string) bool {
	_, err := m.CancelOrder(orderID)
	return err == nil
}

// CancelOrder removes a resting order and returns its final state.
func (m *Matcher) CancelOrder(orderID string) (OrderSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.book.removeResting(orderID)
	if !ok {
		return OrderSnapshot{}, ErrNotFound
	}
	return snapshotOf(order), nil
}

func (m *Matcher) GetOrder(orderID string) (OrderSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.book.lookup(orderID)
	if !ok {
		return OrderSnapshot{}, false
	}
	return snapshotOf(order), true
}

func (m *Matcher) BestBid() (price int64, quantity int64, ok bool) {
	return m.bestOf(SideBuy)
}

func (m *Matcher) BestAsk() (price int64, quantity int64, ok bool) {
	return m.bestOf(SideSell)
}

func (m *Matcher) bestOf(side OrderSide) (int64, int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	level, ok := m.book.best(side)
	if !ok {
		return 0, 0, false
	}
	return level.price, level.totalQty, true
}

// SnapshotBook copies up to depth levels per side; depth <= 0 copies all.
func (m *Matcher) SnapshotBook(depth int) BookSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.book.snapshot(depth)
}

// Trades returns the full history, oldest first.
func (m *Matcher) Trades() []Trade {
	return m.TradesSince(0)
}

// TradesSince returns trades from position offset onward.
func (m *Matcher) TradesSince(offset int) []Trade {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(m.trades) {
		return []Trade{}
	}
	out := make([]Trade, len(m.trades)-offset)
	copy(out, m.trades[offset:])
	return out
}

// RecentTrades returns the last limit trades, oldest first.
func (m *Matcher) RecentTrades(limit int) []Trade {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := 0
	if limit > 0 && len(m.trades) > limit {
		start = len(m.trades) - limit
	}
	out := make([]Trade, len(m.trades)-start)
	copy(out, m.trades[start:])
	return out
}

// ClearTrades empties the history and returns how many trades were dropped.
func (m *Matcher) ClearTrades() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.trades)
	m.trades = make([]Trade, 0, 1024)
	return n
}

// ClearBook drops every resting order on both sides and returns how many
// were removed. Trade history is kept.
func (m *Matcher) ClearBook() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.book.index)
	m.book = newOrderBook()
	return n
}

type BookStats struct {
	RestingOrders int
	BidLevels     int
	AskLevels     int
	Trades        int
}

func (m *Matcher) Stats() BookStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return BookStats{
		RestingOrders: len(m.book.index),
		BidLevels:     m.book.bids.Len(),
		AskLevels:     m.book.asks.Len(),
		Trades:        len(m.trades),
	}
}
