package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type commandKind uint8

const (
	cmdSubmit commandKind = iota
	cmdCancel
)

type command struct {
	kind    commandKind
	order   *Order
	orderID string
	reply   chan Reply
}

// Reply is what the executor hands back for one queued command.
type Reply struct {
	Result    *MatchResult // submit
	Cancelled bool         // cancel
	Err       error
}

// Pipeline serialises submissions from any number of goroutines onto a
// single executor goroutine that alone drives the Matcher. Cancels share
// the queue, so one submitter's submit-then-cancel is applied in order.
type Pipeline struct {
	matcher  *Matcher
	capacity int // 0 means unbounded

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []command
	stopping bool

	done      chan struct{}
	processed atomic.Uint64
}

func NewPipeline(matcher *Matcher, capacity int) *Pipeline {
	p := &Pipeline{
		matcher:  matcher,
		capacity: capacity,
		queue:    make([]command, 0, 256),
		done:     make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	go p.run()

	log.Info().
		Str("symbol", matcher.Symbol).
		Int("queue_capacity", capacity).
		Msg("Matching pipeline started")

	return p
}

func (p *Pipeline) enqueue(cmd command) error {
	p.mu.Lock()
	if p.stopping {
		p.mu.Unlock()
		return ErrShutdownInProgress
	}
	if p.capacity > 0 && len(p.queue) >= p.capacity {
		p.mu.Unlock()
		return ErrQueueFull
	}
	p.queue = append(p.queue, cmd)
	p.mu.Unlock()

	p.cond.Signal()
	return nil
}

// EnqueueOrder queues order and returns the channel its Reply arrives on.
// The order is copied, so the caller may reuse it immediately. An empty ID
// is generated here so rejections can name the order.
func (p *Pipeline) EnqueueOrder(order *Order) (<-chan Reply, error) {
	o := *order
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	reply := make(chan Reply, 1)
	if err := p.enqueue(command{kind: cmdSubmit, order: &o, reply: reply}); err != nil {
		return nil, reject(o.ID, err)
	}
	return reply, nil
}

func (p *Pipeline) EnqueueCancel(orderID string) (<-chan Reply, error) {
	reply := make(chan Reply, 1)
	if err := p.enqueue(command{kind: cmdCancel, orderID: orderID, reply: reply}); err != nil {
		return nil, err
	}
	return reply, nil
}

// Submit queues order and waits for its result. If ctx ends first the
// order stays queued and is still matched exactly once.
func (p *Pipeline) Submit(ctx context.Context, order *Order) (*MatchResult, error) {
	reply, err := p.EnqueueOrder(order)
	if err != nil {
		return nil, err
	}

	select {
	case r := <-reply:
		return r.Result, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pipeline) Cancel(ctx context.Context, orderID string) (bool, error) {
	reply, err := p.EnqueueCancel(orderID)
	if err != nil {
		return false, err
	}

	select {
	case r := <-reply:
		return r.Cancelled, r.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (p *Pipeline) run() {
	defer close(p.done)

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stopping {
			p.cond.Wait()
		}
		// stop only once the queue is drained
		if len(p.queue) == 0 {
			p.mu.Unlock()
			break
		}
		cmd := p.queue[0]
		p.queue[0] = command{}
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.execute(cmd)
	}

	log.Info().
		Str("symbol", p.matcher.Symbol).
		Uint64("processed", p.processed.Load()).
		Msg("Matching pipeline stopped")
}

func (p *Pipeline) execute(cmd command) {
	var r Reply
	switch cmd.kind {
	case cmdSubmit:
		r.Result, r.Err = p.matcher.Submit(cmd.order)
	case cmdCancel:
		r.Cancelled = p.matcher.Cancel(cmd.orderID)
	}
	p.processed.Add(1)
	cmd.reply <- r
}

// Shutdown stops intake, drains every queued command and waits for the
// executor to exit. Safe to call more than once.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	first := !p.stopping
	p.stopping = true
	pending := len(p.queue)
	p.mu.Unlock()

	if first {
		log.Info().
			Str("symbol", p.matcher.Symbol).
			Int("pending", pending).
			Msg("Matching pipeline draining")
		p.cond.Broadcast()
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending is the number of queued commands not yet executed.
func (p *Pipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Pipeline) Processed() uint64 {
	return p.processed.Load()
}

func (p *Pipeline) Matcher() *Matcher {
	return p.matcher
}
