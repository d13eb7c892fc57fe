package engine

const nilSlot int32 = -1

// handle addresses a resting order inside an orderArena. The generation
// makes a handle to a recycled slot detectably stale.
type handle struct {
	slot int32
	gen  uint32
}

type slotNode struct {
	order *Order
	level *priceLevel
	prev  int32
	next  int32
	gen   uint32
	used  bool
}

// orderArena owns every resting order of a book. Price levels thread
// intrusive FIFO lists through it by slot index, so inserting or removing
// one order never moves another.
type orderArena struct {
	nodes []slotNode
	free  []int32
	live  int
}

type priceLevel struct {
	price    int64
	head     int32 // oldest, matched first
	tail     int32
	count    int
	totalQty int64
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{price: price, head: nilSlot, tail: nilSlot}
}

func (pl *priceLevel) empty() bool {
	return pl.count == 0
}

func (a *orderArena) alloc(order *Order, level *priceLevel) int32 {
	var slot int32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.nodes = append(a.nodes, slotNode{})
		slot = int32(len(a.nodes) - 1)
	}
	node := &a.nodes[slot]
	node.order = order
	node.level = level
	node.prev = nilSlot
	node.next = nilSlot
	node.used = true
	a.live++
	return slot
}

func (a *orderArena) get(h handle) (*slotNode, bool) {
	if h.slot < 0 || int(h.slot) >= len(a.nodes) {
		return nil, false
	}
	node := &a.nodes[h.slot]
	if !node.used || node.gen != h.gen {
		return nil, false
	}
	return node, true
}

// pushBack appends order to the tail of level. O(1).
func (a *orderArena) pushBack(level *priceLevel, order *Order) handle {
	slot := a.alloc(order, level)
	node := &a.nodes[slot]

	if level.tail == nilSlot {
		level.head = slot
	} else {
		node.prev = level.tail
		a.nodes[level.tail].next = slot
	}
	level.tail = slot
	level.count++
	level.totalQty += order.Remaining

	return handle{slot: slot, gen: node.gen}
}

// remove unlinks the order at h from its level and recycles the slot. O(1).
func (a *orderArena) remove(h handle) *Order {
	node, ok := a.get(h)
	if !ok {
		invariant("stale handle slot=%d gen=%d", h.slot, h.gen)
	}
	level := node.level

	if node.prev != nilSlot {
		a.nodes[node.prev].next = node.next
	} else {
		level.head = node.next
	}
	if node.next != nilSlot {
		a.nodes[node.next].prev = node.prev
	} else {
		level.tail = node.prev
	}
	level.count--
	level.totalQty -= node.order.Remaining

	order := node.order
	node.order = nil
	node.level = nil
	node.prev = nilSlot
	node.next = nilSlot
	node.used = false
	node.gen++
	a.free = append(a.free, h.slot)
	a.live--

	return order
}

func (a *orderArena) front(level *priceLevel) (handle, *Order, bool) {
	if level.head == nilSlot {
		return handle{}, nil, false
	}
	node := &a.nodes[level.head]
	return handle{slot: level.head, gen: node.gen}, node.order, true
}

// each walks level oldest first until fn returns false.
func (a *orderArena) each(level *priceLevel, fn func(*Order) bool) {
	for slot := level.head; slot != nilSlot; slot = a.nodes[slot].next {
		if !fn(a.nodes[slot].order) {
			return
		}
	}
}
