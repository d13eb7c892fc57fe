package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelIDs(a *orderArena, lvl *priceLevel) []string {
	ids := make([]string, 0, lvl.count)
	a.each(lvl, func(o *Order) bool {
		ids = append(ids, o.ID)
		return true
	})
	return ids
}

// TestArenaPushBackKeepsFIFO tests that orders come out in arrival order
func TestArenaPushBackKeepsFIFO(t *testing.T) {
	var a orderArena
	lvl := newPriceLevel(10000)

	a.pushBack(lvl, NewLimitOrder("a", SideBuy, 10000, 1))
	a.pushBack(lvl, NewLimitOrder("b", SideBuy, 10000, 2))
	a.pushBack(lvl, NewLimitOrder("c", SideBuy, 10000, 3))

	assert.Equal(t, []string{"a", "b", "c"}, levelIDs(&a, lvl))
	assert.Equal(t, 3, lvl.count)
	assert.Equal(t, int64(6), lvl.totalQty)

	_, front, ok := a.front(lvl)
	require.True(t, ok)
	assert.Equal(t, "a", front.ID)
}

// TestArenaHandlesSurviveOtherRemovals tests that removing one order never
// invalidates the handles of its neighbours
func TestArenaHandlesSurviveOtherRemovals(t *testing.T) {
	var a orderArena
	lvl := newPriceLevel(10000)

	ha := a.pushBack(lvl, NewLimitOrder("a", SideSell, 10000, 1))
	hb := a.pushBack(lvl, NewLimitOrder("b", SideSell, 10000, 1))
	hc := a.pushBack(lvl, NewLimitOrder("c", SideSell, 10000, 1))

	removed := a.remove(hb)
	assert.Equal(t, "b", removed.ID)
	assert.Equal(t, []string{"a", "c"}, levelIDs(&a, lvl))

	// grow the arena so the backing slice reallocates
	other := newPriceLevel(10100)
	for i := 0; i < 100; i++ {
		a.pushBack(other, NewLimitOrder("x", SideSell, 10100, 1))
	}

	nodeA, ok := a.get(ha)
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.order.ID)

	nodeC, ok := a.get(hc)
	require.True(t, ok)
	assert.Equal(t, "c", nodeC.order.ID)

	a.remove(hc)
	a.remove(ha)
	assert.True(t, lvl.empty())
	assert.Equal(t, nilSlot, lvl.head)
	assert.Equal(t, nilSlot, lvl.tail)
	assert.Equal(t, int64(0), lvl.totalQty)
}

// TestArenaStaleHandleDetected tests that a recycled slot rejects the old handle
func TestArenaStaleHandleDetected(t *testing.T) {
	var a orderArena
	lvl := newPriceLevel(10000)

	h := a.pushBack(lvl, NewLimitOrder("old", SideBuy, 10000, 1))
	a.remove(h)

	h2 := a.pushBack(lvl, NewLimitOrder("new", SideBuy, 10000, 1))
	assert.Equal(t, h.slot, h2.slot, "freed slot should be reused")
	assert.NotEqual(t, h.gen, h2.gen)

	_, ok := a.get(h)
	assert.False(t, ok)

	assert.Panics(t, func() { a.remove(h) })
}

// TestArenaRemoveHeadAndTail tests unlinking at both ends of a level
func TestArenaRemoveHeadAndTail(t *testing.T) {
	var a orderArena
	lvl := newPriceLevel(500)

	ha := a.pushBack(lvl, NewLimitOrder("a", SideBuy, 500, 1))
	a.pushBack(lvl, NewLimitOrder("b", SideBuy, 500, 1))
	hc := a.pushBack(lvl, NewLimitOrder("c", SideBuy, 500, 1))

	a.remove(ha)
	assert.Equal(t, []string{"b", "c"}, levelIDs(&a, lvl))

	a.remove(hc)
	assert.Equal(t, []string{"b"}, levelIDs(&a, lvl))

	a.pushBack(lvl, NewLimitOrder("d", SideBuy, 500, 1))
	assert.Equal(t, []string{"b", "d"}, levelIDs(&a, lvl))
	assert.Equal(t, 2, a.live)
}
