package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iamwavecut/hrbots/internal/event"
	"github.com/iamwavecut/hrbots/internal/highrise"
)

// Listener is the inbound half of a room session.
type Listener interface {
	Listen(ctx context.Context, fn func(highrise.Event)) error
	Close() error
}

type (
	SessionOptions struct {
		EventTTL  time.Duration
		QueueSize int
	}

	// Session pumps events from a Listener through a queue into the
	// processor. It is a lifecycle component.
	Session struct {
		listener  Listener
		processor *EventProcessor
		opts      SessionOptions
		logger    *log.Entry

		cancel   context.CancelFunc
		done     chan struct{}
		err      error
		stopOnce sync.Once
	}

	roomEvent struct {
		*event.Base
		payload highrise.Event
	}
)

func NewSession(listener Listener, processor *EventProcessor, opts SessionOptions) *Session {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	return &Session{
		listener:  listener,
		processor: processor,
		opts:      opts,
		logger:    log.WithField("context", "session"),
		done:      make(chan struct{}),
	}
}

func (s *Session) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	bus := event.NewBus(s.opts.QueueSize)
	worker := event.NewWorker(bus)
	worker.SubscribeAll(func(ctx context.Context, q event.Queueable) {
		re, ok := q.(*roomEvent)
		if !ok {
			return
		}
		if err := s.processor.Process(ctx, re.payload); err != nil {
			s.logger.WithError(err).WithField("type", re.Type()).Error("cant process event")
		}
		re.Process()
	})

	// The worker runs on runCtx rather than the group context so events
	// already queued when the room drops are still handled.
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer bus.Close()
		return s.listener.Listen(gctx, func(e highrise.Event) {
			var expiresAt time.Time
			if s.opts.EventTTL > 0 {
				expiresAt = time.Now().Add(s.opts.EventTTL)
			}
			re := &roomEvent{Base: event.CreateBase(e.EventType(), expiresAt), payload: e}
			if err := bus.NQ(gctx, re); err != nil {
				s.logger.WithError(err).Debug("event not queued")
			}
		})
	})
	g.Go(func() error {
		return worker.Run(runCtx)
	})

	go func() {
		defer close(s.done)
		err := g.Wait()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		s.err = err
		if err != nil {
			s.logger.WithError(err).Warn("session ended")
		}
	}()
	return nil
}

// Done is closed once the session has ended, either by Stop or because the
// room dropped the connection.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports why the session ended. Valid after Done is closed.
func (s *Session) Err() error {
	return s.err
}

func (s *Session) Stop(ctx context.Context) error {
	var closeErr error
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		closeErr = s.listener.Close()
	})
	if s.cancel == nil {
		return closeErr
	}
	select {
	case <-s.done:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}
