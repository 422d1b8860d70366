package main

import (
	"context"
	"log/slog"

	"github.com/gogpu/flipbook"
)

// inputQueue carries input callbacks to the draw callback, which owns the
// viewer. Pushes never block; input arriving while the queue is full is
// dropped.
type inputQueue struct {
	ch chan func(context.Context, *flipbook.Viewer)
}

func newInputQueue(size int) *inputQueue {
	return &inputQueue{ch: make(chan func(context.Context, *flipbook.Viewer), size)}
}

func (q *inputQueue) push(fn func(context.Context, *flipbook.Viewer)) {
	select {
	case q.ch <- fn:
	default:
		slog.Debug("input queue full, dropping input")
	}
}

func (q *inputQueue) drain(ctx context.Context, v *flipbook.Viewer) {
	for {
		select {
		case fn := <-q.ch:
			fn(ctx, v)
		default:
			return
		}
	}
}
