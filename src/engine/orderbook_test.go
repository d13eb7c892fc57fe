package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOrderBookInsertResidual tests resting orders and indexing them
func TestOrderBookInsertResidual(t *testing.T) {
	ob := newOrderBook()

	ob.insertResidual(NewLimitOrder("b1", SideBuy, 15050, 100))
	ob.insertResidual(NewLimitOrder("s1", SideSell, 15060, 50))

	assert.True(t, ob.contains("b1"))
	assert.True(t, ob.contains("s1"))

	order, ok := ob.lookup("b1")
	require.True(t, ok)
	assert.Equal(t, int64(100), order.Remaining)
}

// TestOrderBookBestLevels tests best bid is highest and best ask is lowest
func TestOrderBookBestLevels(t *testing.T) {
	ob := newOrderBook()

	ob.insertResidual(NewLimitOrder("b1", SideBuy, 15050, 100))
	ob.insertResidual(NewLimitOrder("b2", SideBuy, 15060, 200))
	ob.insertResidual(NewLimitOrder("b3", SideBuy, 15040, 300))
	ob.insertResidual(NewLimitOrder("s1", SideSell, 15070, 100))
	ob.insertResidual(NewLimitOrder("s2", SideSell, 15080, 200))
	ob.insertResidual(NewLimitOrder("s3", SideSell, 15065, 300))

	bid, ok := ob.best(SideBuy)
	require.True(t, ok)
	assert.Equal(t, int64(15060), bid.price)
	assert.Equal(t, int64(200), bid.totalQty)

	ask, ok := ob.best(SideSell)
	require.True(t, ok)
	assert.Equal(t, int64(15065), ask.price)
	assert.Equal(t, int64(300), ask.totalQty)
}

// TestOrderBookRemoveResting tests O(1) removal through the index
func TestOrderBookRemoveResting(t *testing.T) {
	ob := newOrderBook()

	ob.insertResidual(NewLimitOrder("a", SideBuy, 15050, 100))
	ob.insertResidual(NewLimitOrder("b", SideBuy, 15050, 200))

	order, ok := ob.removeResting("a")
	require.True(t, ok)
	assert.Equal(t, "a", order.ID)
	assert.False(t, ob.contains("a"))

	lvl, ok := ob.level(SideBuy, 15050)
	require.True(t, ok)
	assert.Equal(t, int64(200), lvl.totalQty)
	assert.Equal(t, 1, lvl.count)

	_, ok = ob.removeResting("a")
	assert.False(t, ok)
}

// TestOrderBookEmptyPriceLevelRemoval tests that empty price levels are removed
func TestOrderBookEmptyPriceLevelRemoval(t *testing.T) {
	ob := newOrderBook()

	ob.insertResidual(NewLimitOrder("a", SideSell, 15050, 100))
	_, ok := ob.level(SideSell, 15050)
	require.True(t, ok)

	_, ok = ob.removeResting("a")
	require.True(t, ok)

	_, ok = ob.level(SideSell, 15050)
	assert.False(t, ok)
	assert.Equal(t, 0, ob.asks.Len())
}

// TestOrderBookRejectsMarketResidual tests that a market order can never rest
func TestOrderBookRejectsMarketResidual(t *testing.T) {
	ob := newOrderBook()

	assert.Panics(t, func() {
		ob.insertResidual(NewMarketOrder("m", SideBuy, 10))
	})
	assert.Equal(t, 0, ob.bids.Len())
}

// TestOrderBookSnapshot tests per-level aggregation and ordering of a snapshot
func TestOrderBookSnapshot(t *testing.T) {
	ob := newOrderBook()

	ob.insertResidual(NewLimitOrder("b1", SideBuy, 15050, 100))
	ob.insertResidual(NewLimitOrder("b2", SideBuy, 15040, 200))
	ob.insertResidual(NewLimitOrder("b3", SideBuy, 15050, 50))
	ob.insertResidual(NewLimitOrder("s1", SideSell, 15070, 250))
	ob.insertResidual(NewLimitOrder("s2", SideSell, 15060, 150))

	snap := ob.snapshot(0)

	require.Len(t, snap.Bids, 2)
	assert.Equal(t, int64(15050), snap.Bids[0].Price)
	assert.Equal(t, int64(150), snap.Bids[0].Quantity)
	assert.Equal(t, 2, snap.Bids[0].Count)
	require.Len(t, snap.Bids[0].Orders, 2)
	assert.Equal(t, "b1", snap.Bids[0].Orders[0].ID)
	assert.Equal(t, "b3", snap.Bids[0].Orders[1].ID)
	assert.Equal(t, int64(15040), snap.Bids[1].Price)

	require.Len(t, snap.Asks, 2)
	assert.Equal(t, int64(15060), snap.Asks[0].Price)
	assert.Equal(t, int64(15070), snap.Asks[1].Price)
}

// TestOrderBookSnapshotDepth tests depth limiting of snapshots
func TestOrderBookSnapshotDepth(t *testing.T) {
	ob := newOrderBook()

	for i, price := range []int64{100, 101, 102, 103, 104} {
		ob.insertResidual(NewLimitOrder(string(rune('a'+i)), SideSell, price, 10))
	}

	snap := ob.snapshot(3)
	require.Len(t, snap.Asks, 3)
	assert.Equal(t, int64(100), snap.Asks[0].Price)
	assert.Equal(t, int64(102), snap.Asks[2].Price)
	assert.Empty(t, snap.Bids)
}
