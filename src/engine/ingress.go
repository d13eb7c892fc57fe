package engine

import (
	"context"
	"fmt"
)

type IngressMode string

const (
	IngressSync  IngressMode = "sync"
	IngressAsync IngressMode = "async"
)

// Ingress is how submitters reach a Matcher.
type Ingress interface {
	Submit(ctx context.Context, order *Order) (*MatchResult, error)
	Cancel(ctx context.Context, orderID string) (bool, error)
	Shutdown(ctx context.Context) error
	Matcher() *Matcher
}

func NewIngress(mode IngressMode, matcher *Matcher, queueCapacity int) (Ingress, error) {
	switch mode {
	case IngressSync:
		return NewDirect(matcher), nil
	case IngressAsync, "":
		return NewPipeline(matcher, queueCapacity), nil
	default:
		return nil, fmt.Errorf("unknown ingress mode %q", mode)
	}
}

// Direct runs matching on the caller's goroutine under the matcher lock.
type Direct struct {
	matcher *Matcher
}

func NewDirect(matcher *Matcher) *Direct {
	return &Direct{matcher: matcher}
}

func (d *Direct) Submit(ctx context.Context, order *Order) (*MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.matcher.Submit(order)
}

func (d *Direct) Cancel(ctx context.Context, orderID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return d.matcher.Cancel(orderID), nil
}

func (d *Direct) Shutdown(context.Context) error {
	return nil
}

func (d *Direct) Matcher() *Matcher {
	return d.matcher
}
