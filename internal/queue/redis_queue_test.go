package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newQueueForTest(t *testing.T) *RedisAuditQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAuditQueue(client, "audit_queue")
}

func TestQueueRoundTrip(t *testing.T) {
	q := newQueueForTest(t)
	ctx := context.Background()

	if err := q.Enqueue(ctx, 42); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	id, ok, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if !ok || id != 42 {
		t.Fatalf("expected id 42, got ok=%v id=%d", ok, id)
	}
}

func TestQueueIsFIFOAcrossSubmitters(t *testing.T) {
	q := newQueueForTest(t)
	ctx := context.Background()

	for _, id := range []uint{1, 2, 3, 4} {
		if err := q.Enqueue(ctx, id); err != nil {
			t.Fatalf("enqueue %d: %v", id, err)
		}
	}
	for _, want := range []uint{1, 2, 3, 4} {
		id, ok, err := q.Dequeue(ctx)
		if err != nil || !ok {
			t.Fatalf("dequeue: ok=%v err=%v", ok, err)
		}
		if id != want {
			t.Fatalf("FIFO violated: got %d, want %d", id, want)
		}
	}
}

func TestQueueEmptyDequeueIsNotAnError(t *testing.T) {
	q := newQueueForTest(t)

	id, ok, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("empty dequeue: %v", err)
	}
	if ok || id != 0 {
		t.Fatalf("expected empty result, got ok=%v id=%d", ok, id)
	}
}

func TestQueueLen(t *testing.T) {
	q := newQueueForTest(t)
	ctx := context.Background()

	n, err := q.Len(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected empty queue, got n=%d err=%v", n, err)
	}
	_ = q.Enqueue(ctx, 7)
	_ = q.Enqueue(ctx, 8)
	n, err = q.Len(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected length 2, got n=%d err=%v", n, err)
	}
}

func TestQueueRejectsMalformedEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	q := NewRedisAuditQueue(client, "audit_queue")

	if _, err := mr.Push("audit_queue", "not-a-number"); err != nil {
		t.Fatalf("seed malformed entry: %v", err)
	}
	if _, _, err := q.Dequeue(context.Background()); err == nil {
		t.Fatal("expected error for malformed queue entry")
	}
}
