package engine

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
)

// BenchmarkMatcherSubmitResting benchmarks inserting orders that never cross
func BenchmarkMatcherSubmitResting(b *testing.B) {
	m := NewMatcher("BENCH")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		price := int64(10000 - i%500)
		if _, err := m.Submit(NewLimitOrder(strconv.Itoa(i), SideBuy, price, 100)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMatcherCrossing benchmarks a resting sell followed by a buy that fills it
func BenchmarkMatcherCrossing(b *testing.B) {
	m := NewMatcher("BENCH")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := strconv.Itoa(i)
		price := int64(10000 + i%100)
		if _, err := m.Submit(NewLimitOrder("s"+id, SideSell, price, 50)); err != nil {
			b.Fatal(err)
		}
		if _, err := m.Submit(NewLimitOrder("b"+id, SideBuy, price, 50)); err != nil {
			b.Fatal(err)
		}
		if i%10000 == 0 {
			m.ClearTrades()
		}
	}
}

// BenchmarkMatcherCancel benchmarks cancelling orders spread over many levels
func BenchmarkMatcherCancel(b *testing.B) {
	m := NewMatcher("BENCH")
	for i := 0; i < b.N; i++ {
		if _, err := m.Submit(NewLimitOrder(strconv.Itoa(i), SideSell, int64(10000+i%1000), 10)); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !m.Cancel(strconv.Itoa(i)) {
			b.Fatalf("order %d not cancelled", i)
		}
	}
}

// BenchmarkPipelineSubmit benchmarks parallel producers through the async ingress
func BenchmarkPipelineSubmit(b *testing.B) {
	p := NewPipeline(NewMatcher("BENCH"), 0)
	defer func() { _ = p.Shutdown(context.Background()) }()

	var seq atomic.Int64
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			n := seq.Add(1)
			side := SideBuy
			if n%2 == 0 {
				side = SideSell
			}
			if _, err := p.Submit(ctx, NewLimitOrder(strconv.FormatInt(n, 10), side, 10000, 1)); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
