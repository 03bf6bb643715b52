package bot

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
	"github.com/iamwavecut/hrbots/internal/highrise"
	"github.com/iamwavecut/hrbots/internal/infra"
	"github.com/iamwavecut/hrbots/internal/observability"
)

type EventProcessor struct {
	handlers []Handler
	tracer   trace.Tracer
	logger   *log.Entry
}

func NewEventProcessor(handlers ...Handler) *EventProcessor {
	enabled := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		if h == nil {
			continue
		}
		enabled = append(enabled, h)
	}
	return &EventProcessor{
		handlers: enabled,
		tracer:   otel.Tracer("hrbots/bot"),
		logger:   log.WithField("context", "event_processor"),
	}
}

// Process hands the event to every handler that implements the matching
// capability. A failing or panicking handler does not stop the others; all
// errors are returned joined.
func (p *EventProcessor) Process(ctx context.Context, e highrise.Event) error {
	if e == nil {
		return errors.New("event is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := p.tracer.Start(ctx, "bot.process", trace.WithAttributes(attribute.String("event.type", e.EventType())))
	defer span.End()
	done := observability.StartEventProcessing()
	observability.RecordEvent(e.EventType())

	var errs []error
	for _, h := range p.handlers {
		if err := p.dispatch(ctx, h, e); err != nil {
			errs = append(errs, errors.WithMessagef(err, "%s: %s", h.Name(), e.EventType()))
		}
	}

	err := stderrors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		done("error")
		return err
	}
	done("ok")
	return nil
}

func (p *EventProcessor) dispatch(ctx context.Context, h Handler, e highrise.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithField("handler", h.Name()).Errorf("handler panic: %v, %s", r, infra.IdentifyPanic())
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch ev := e.(type) {
	case *highrise.SessionMetadata:
		if handler, ok := h.(StartHandler); ok {
			return handler.OnStart(ctx, ev)
		}
	case *highrise.ChatEvent:
		if ev.Whisper {
			if handler, ok := h.(WhisperHandler); ok {
				return handler.OnWhisper(ctx, ev.User, ev.Message)
			}
			return nil
		}
		if handler, ok := h.(ChatHandler); ok {
			return handler.OnChat(ctx, ev.User, ev.Message)
		}
	case *highrise.UserJoinedEvent:
		if handler, ok := h.(JoinHandler); ok {
			return handler.OnUserJoin(ctx, ev.User, ev.Location)
		}
	case *highrise.UserLeftEvent:
		if handler, ok := h.(LeaveHandler); ok {
			return handler.OnUserLeave(ctx, ev.User)
		}
	case *highrise.UserMovedEvent:
		if handler, ok := h.(MoveHandler); ok {
			return handler.OnUserMove(ctx, ev.User, ev.Location)
		}
	case *highrise.EmoteEvent:
		if handler, ok := h.(EmoteHandler); ok {
			return handler.OnEmote(ctx, ev.User, ev.EmoteID, ev.Receiver)
		}
	case *highrise.ReactionEvent:
		if handler, ok := h.(ReactionHandler); ok {
			return handler.OnReaction(ctx, ev.User, ev.Reaction, ev.Receiver)
		}
	case *highrise.TipReactionEvent:
		if handler, ok := h.(TipHandler); ok {
			return handler.OnTip(ctx, ev.Sender, ev.Receiver, ev.Item)
		}
	case *highrise.ChannelEvent:
		if handler, ok := h.(ChannelHandler); ok {
			return handler.OnChannel(ctx, ev.SenderID, ev.Message, ev.Tags)
		}
	default:
		return errors.Wrapf(hrerrors.ErrUnknownEvent, "%T", e)
	}
	return nil
}
