package event

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBusClosed is returned by DQ once a closed bus has been drained.
var ErrBusClosed = errors.New("event bus closed")

type (
	Queueable interface {
		Process()
		IsProcessed() bool
		Drop()
		IsDropped() bool
		Expired() bool
		Type() string
	}

	Base struct {
		processed bool
		dropped   bool
		expireAt  time.Time
		eventType string
	}

	// Bus is a bounded FIFO between the session reader and the worker.
	Bus struct {
		q         chan Queueable
		closeOnce sync.Once
	}
)

func CreateBase(eventType string, expiresAt time.Time) *Base {
	return &Base{
		expireAt:  expiresAt,
		eventType: eventType,
	}
}

func (b *Base) Process() {
	b.processed = true
}

func (b *Base) IsProcessed() bool {
	return b.processed
}

func (b *Base) Drop() {
	b.dropped = true
}

func (b *Base) IsDropped() bool {
	return b.dropped
}

func (b *Base) Expired() bool {
	return !b.expireAt.IsZero() && time.Now().After(b.expireAt)
}

func (b *Base) Type() string {
	return b.eventType
}

func NewBus(size int) *Bus {
	return &Bus{q: make(chan Queueable, size)}
}

// NQ enqueues the event, blocking while the bus is full.
func (b *Bus) NQ(ctx context.Context, event Queueable) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case b.q <- event:
		return nil
	}
}

// DQ waits for the next event.
func (b *Bus) DQ(ctx context.Context) (Queueable, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case event, ok := <-b.q:
		if !ok {
			return nil, ErrBusClosed
		}
		return event, nil
	}
}

// Close lets the worker drain what is queued and then stop. Only the
// producer may call it, after its last NQ.
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.q) })
}

func (b *Bus) Len() int {
	return len(b.q)
}
