package event

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

const profileInterval = 5 * time.Minute

// Worker drains a Bus one event at a time, so subscribers never run
// concurrently with each other.
type Worker struct {
	bus           *Bus
	subscriptions map[string][]func(ctx context.Context, event Queueable)
	fallback      func(ctx context.Context, event Queueable)
	logger        *log.Entry
}

func NewWorker(bus *Bus) *Worker {
	return &Worker{
		bus:           bus,
		subscriptions: map[string][]func(ctx context.Context, event Queueable){},
		logger:        log.WithField("context", "event_worker"),
	}
}

// Subscribe registers fn for events of the given type.
func (w *Worker) Subscribe(eventType string, fn func(ctx context.Context, event Queueable)) {
	w.subscriptions[eventType] = append(w.subscriptions[eventType], fn)
}

// SubscribeAll registers fn for every event type without a dedicated
// subscription.
func (w *Worker) SubscribeAll(fn func(ctx context.Context, event Queueable)) {
	w.fallback = fn
}

// Run blocks until ctx is cancelled or the bus is closed and drained.
func (w *Worker) Run(ctx context.Context) error {
	profileTicker := time.NewTicker(profileInterval)
	defer profileTicker.Stop()

	w.logger.Trace("events runner go")
	for {
		event, err := w.bus.DQ(ctx)
		if errors.Is(err, ErrBusClosed) {
			w.logger.Debug("event bus drained")
			return nil
		}
		if err != nil {
			w.logger.Info("shutting down event worker by cancelled context")
			return err
		}

		if event.Expired() {
			w.logger.WithField("type", event.Type()).Debug("skip expired event")
			continue
		}

		subscribers := w.subscriptions[event.Type()]
		if len(subscribers) == 0 && w.fallback != nil {
			subscribers = append(subscribers, w.fallback)
		}
		if len(subscribers) == 0 {
			w.logger.WithField("type", event.Type()).Trace("no event subs")
			continue
		}
		for _, sub := range subscribers {
			sub(ctx, event)
			if event.IsDropped() {
				break
			}
		}

		select {
		case <-profileTicker.C:
			if qlen := w.bus.Len(); qlen > 0 {
				w.logger.Debugf("unprocessed queue length: %d", qlen)
			}
		default:
		}
	}
}
