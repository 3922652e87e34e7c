// Package queue holds the pending-audit FIFO, decoupled from the request
// records so a backlog survives process restarts.
package queue

import "context"

// AuditQueue is a durable FIFO of audit request ids. Enqueue appends,
// Dequeue destructively pops the oldest entry. Delivery is at-least-once;
// consumers must tolerate ids whose request is no longer queued.
type AuditQueue interface {
	Enqueue(ctx context.Context, id uint) error
	// Dequeue returns ok=false when the queue is empty; callers poll.
	Dequeue(ctx context.Context) (id uint, ok bool, err error)
	Len(ctx context.Context) (int64, error)
}
