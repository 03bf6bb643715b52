package bot_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iamwavecut/hrbots/internal/bot"
	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
	"github.com/iamwavecut/hrbots/internal/highrise"
)

type recordingHandler struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (h *recordingHandler) Name() string { return "recorder" }

func (h *recordingHandler) record(call string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
	return h.err
}

func (h *recordingHandler) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *recordingHandler) OnChat(_ context.Context, user highrise.User, message string) error {
	return h.record("chat:" + user.Username + ":" + message)
}

func (h *recordingHandler) OnWhisper(_ context.Context, user highrise.User, message string) error {
	return h.record("whisper:" + user.Username + ":" + message)
}

func (h *recordingHandler) OnUserMove(_ context.Context, user highrise.User, location highrise.Location) error {
	if _, ok := location.(highrise.AnchorPosition); ok {
		return h.record("move-anchor:" + user.Username)
	}
	return h.record("move:" + user.Username)
}

type leaveOnly struct{ left []string }

func (h *leaveOnly) Name() string { return "leave-only" }

func (h *leaveOnly) OnUserLeave(_ context.Context, user highrise.User) error {
	h.left = append(h.left, user.ID)
	return nil
}

type panicking struct{}

func (panicking) Name() string { return "panicking" }

func (panicking) OnChat(context.Context, highrise.User, string) error {
	panic("boom")
}

func TestProcessorDispatchesByCapability(t *testing.T) {
	t.Parallel()

	rec := &recordingHandler{}
	leaver := &leaveOnly{}
	p := bot.NewEventProcessor(rec, leaver, nil)
	ctx := context.Background()
	alice := highrise.User{ID: "u1", Username: "alice"}

	events := []highrise.Event{
		&highrise.ChatEvent{User: alice, Message: "hi"},
		&highrise.ChatEvent{User: alice, Message: "psst", Whisper: true},
		&highrise.UserMovedEvent{User: alice, Location: highrise.Position{X: 1}},
		&highrise.UserMovedEvent{User: alice, Location: highrise.AnchorPosition{EntityID: "chair"}},
		&highrise.UserLeftEvent{User: alice},
		&highrise.UserJoinedEvent{User: alice, Location: highrise.Position{}},
	}
	for _, e := range events {
		if err := p.Process(ctx, e); err != nil {
			t.Fatalf("process %s: %v", e.EventType(), err)
		}
	}

	want := []string{"chat:alice:hi", "whisper:alice:psst", "move:alice", "move-anchor:alice"}
	got := rec.Calls()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected calls: got %v want %v", got, want)
	}
	if len(leaver.left) != 1 || leaver.left[0] != "u1" {
		t.Fatalf("leave handler not called: %v", leaver.left)
	}
}

func TestProcessorJoinsErrorsAndRecoversPanics(t *testing.T) {
	t.Parallel()

	failure := errors.New("store down")
	rec := &recordingHandler{err: failure}
	p := bot.NewEventProcessor(panicking{}, rec)

	err := p.Process(context.Background(), &highrise.ChatEvent{User: highrise.User{ID: "u1"}, Message: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, failure) {
		t.Fatalf("handler error lost: %v", err)
	}
	if !strings.Contains(err.Error(), "panic: boom") {
		t.Fatalf("panic not reported: %v", err)
	}
	if len(rec.Calls()) != 1 {
		t.Fatalf("handler after panicking one was not called")
	}
}

func TestProcessorRejectsUnknownEvent(t *testing.T) {
	t.Parallel()

	p := bot.NewEventProcessor(&recordingHandler{})
	err := p.Process(context.Background(), &highrise.KeepaliveResponse{})
	if !errors.Is(err, hrerrors.ErrUnknownEvent) {
		t.Fatalf("expected unknown event error, got %v", err)
	}
}

type fakeListener struct {
	events []highrise.Event
	closed chan struct{}
	once   sync.Once
}

func (l *fakeListener) Listen(ctx context.Context, fn func(highrise.Event)) error {
	for _, e := range l.events {
		fn(e)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.closed:
		return hrerrors.ErrSessionClosed
	}
}

func (l *fakeListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

func TestSessionDeliversInOrderAndStops(t *testing.T) {
	t.Parallel()

	alice := highrise.User{ID: "u1", Username: "alice"}
	listener := &fakeListener{
		closed: make(chan struct{}),
		events: []highrise.Event{
			&highrise.ChatEvent{User: alice, Message: "one"},
			&highrise.ChatEvent{User: alice, Message: "two"},
			&highrise.ChatEvent{User: alice, Message: "three"},
		},
	}
	rec := &recordingHandler{}
	session := bot.NewSession(listener, bot.NewEventProcessor(rec), bot.SessionOptions{EventTTL: time.Minute, QueueSize: 8})

	ctx := context.Background()
	if err := session.Start(ctx); err != nil {
		t.Fatalf("start session: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.Calls()) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("events not delivered: %v", rec.Calls())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := strings.Join(rec.Calls(), "|"); got != "chat:alice:one|chat:alice:two|chat:alice:three" {
		t.Fatalf("unexpected order: %s", got)
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := session.Stop(stopCtx); err != nil {
		t.Fatalf("stop session: %v", err)
	}
	select {
	case <-session.Done():
	default:
		t.Fatalf("session not done after stop")
	}
}

func TestSessionEndsWhenRoomDisconnects(t *testing.T) {
	t.Parallel()

	listener := &fakeListener{closed: make(chan struct{})}
	session := bot.NewSession(listener, bot.NewEventProcessor(), bot.SessionOptions{})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start session: %v", err)
	}
	_ = listener.Close()

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not end")
	}
	if !errors.Is(session.Err(), hrerrors.ErrSessionClosed) {
		t.Fatalf("unexpected session error: %v", session.Err())
	}
}
