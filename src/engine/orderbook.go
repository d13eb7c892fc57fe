package engine

import (
	"github.com/google/btree"
)

const btreeDegree = 32

type restingRef struct {
	side  OrderSide
	price int64
	h     handle
}

// OrderBook is the resting state of one instrument. It is not safe for
// concurrent use; the Matcher serialises every access.
type OrderBook struct {
	bids  *btree.BTreeG[*priceLevel] // sorted descending (highest first)
	asks  *btree.BTreeG[*priceLevel] // sorted ascending (lowest first)
	arena orderArena
	index map[string]restingRef
}

func newOrderBook() *OrderBook {
	return &OrderBook{
		bids: btree.NewG(btreeDegree, func(a, b *priceLevel) bool {
			return a.price > b.price
		}),
		asks: btree.NewG(btreeDegree, func(a, b *priceLevel) bool {
			return a.price < b.price
		}),
		index: make(map[string]restingRef),
	}
}

func (ob *OrderBook) tree(side OrderSide) *btree.BTreeG[*priceLevel] {
	if side == SideBuy {
		return ob.bids
	}
	return ob.asks
}

func (ob *OrderBook) level(side OrderSide, price int64) (*priceLevel, bool) {
	return ob.tree(side).Get(&priceLevel{price: price})
}

func (ob *OrderBook) best(side OrderSide) (*priceLevel, bool) {
	return ob.tree(side).Min()
}

func (ob *OrderBook) contains(orderID string) bool {
	_, ok := ob.index[orderID]
	return ok
}

// insertResidual rests order at the tail of its price level and indexes it.
func (ob *OrderBook) insertResidual(order *Order) {
	if order.IsMarket() || order.Remaining <= 0 {
		invariant("cannot rest order %s type=%s remaining=%d", order.ID, order.Type, order.Remaining)
	}

	lvl, ok := ob.level(order.Side, order.Price)
	if !ok {
		lvl = newPriceLevel(order.Price)
		ob.tree(order.Side).ReplaceOrInsert(lvl)
	}

	h := ob.arena.pushBack(lvl, order)
	ob.index[order.ID] = restingRef{side: order.Side, price: order.Price, h: h}
}

// edge case: a level must never be observable while empty
func (ob *OrderBook) removeLevelIfEmpty(side OrderSide, price int64) {
	lvl, ok := ob.level(side, price)
	if !ok {
		return
	}
	if lvl.empty() {
		ob.tree(side).Delete(lvl)
	}
}

// removeResting drops a resting order by id without scanning its level.
func (ob *OrderBook) removeResting(orderID string) (*Order, bool) {
	ref, ok := ob.index[orderID]
	if !ok {
		return nil, false
	}
	if _, ok := ob.level(ref.side, ref.price); !ok {
		invariant("index entry %s points at missing level %s@%d", orderID, ref.side, ref.price)
	}

	order := ob.arena.remove(ref.h)
	delete(ob.index, orderID)
	ob.removeLevelIfEmpty(ref.side, ref.price)
	return order, true
}

func (ob *OrderBook) lookup(orderID string) (*Order, bool) {
	ref, ok := ob.index[orderID]
	if !ok {
		return nil, false
	}
	node, ok := ob.arena.get(ref.h)
	if !ok {
		invariant("index entry %s holds stale handle", orderID)
	}
	return node.order, true
}

type OrderSnapshot struct {
	ID        string
	Side      OrderSide
	Price     int64
	Quantity  int64
	Remaining int64
	Timestamp int64
}

type LevelSnapshot struct {
	Price    int64
	Quantity int64 // aggregated remaining quantity
	Count    int
	Orders   []OrderSnapshot // oldest first
}

type BookSnapshot struct {
	Bids []LevelSnapshot // best (highest) first
	Asks []LevelSnapshot // best (lowest) first
}

func snapshotOf(o *Order) OrderSnapshot {
	return OrderSnapshot{
		ID:        o.ID,
		Side:      o.Side,
		Price:     o.Price,
		Quantity:  o.Quantity,
		Remaining: o.Remaining,
		Timestamp: o.Timestamp,
	}
}

func (ob *OrderBook) snapshotSide(side OrderSide, depth int) []LevelSnapshot {
	levels := make([]LevelSnapshot, 0)
	ob.tree(side).Ascend(func(lvl *priceLevel) bool {
		if depth > 0 && len(levels) >= depth {
			return false
		}
		ls := LevelSnapshot{
			Price:    lvl.price,
			Quantity: lvl.totalQty,
			Count:    lvl.count,
			Orders:   make([]OrderSnapshot, 0, lvl.count),
		}
		ob.arena.each(lvl, func(o *Order) bool {
			ls.Orders = append(ls.Orders, snapshotOf(o))
			return true
		})
		levels = append(levels, ls)
		return true
	})
	return levels
}

func (ob *OrderBook) snapshot(depth int) BookSnapshot {
	return BookSnapshot{
		Bids: ob.snapshotSide(SideBuy, depth),
		Asks: ob.snapshotSide(SideSell, depth),
	}
}
