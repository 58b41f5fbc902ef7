package inbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/realtime"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/go-kit/log"
)

type fakeBackend struct {
	mu sync.Mutex

	profiles   map[string]types.Profile
	thread     []types.Message
	convs      []types.Conversation
	canMessage bool

	profileErr error
	threadErr  error
	sendErr    error

	// sendFn lets a test interleave events with an in-flight send.
	sendFn func(in types.SendMessage) (types.Message, error)

	sent     []types.SendMessage
	markRead []string

	markedRead chan string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		profiles:   map[string]types.Profile{},
		canMessage: true,
		markedRead: make(chan string, 8),
	}
}

func (b *fakeBackend) Profile(_ context.Context, in types.RetrieveProfile) (types.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.profileErr != nil {
		return types.Profile{}, b.profileErr
	}

	p, ok := b.profiles[in.ProfileID]
	if !ok {
		return types.Profile{}, errors.New("profile not found")
	}
	return p, nil
}

func (b *fakeBackend) Thread(_ context.Context, _ types.RetrieveThread) ([]types.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.threadErr != nil {
		return nil, b.threadErr
	}
	return b.thread, nil
}

func (b *fakeBackend) Conversations(_ context.Context) ([]types.Conversation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.convs, nil
}

func (b *fakeBackend) CanMessage(_ context.Context, _ string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canMessage, nil
}

func (b *fakeBackend) SendMessage(_ context.Context, in types.SendMessage) (types.Message, error) {
	b.mu.Lock()
	sendFn := b.sendFn
	sendErr := b.sendErr
	b.sent = append(b.sent, in)
	b.mu.Unlock()

	if sendFn != nil {
		return sendFn(in)
	}
	if sendErr != nil {
		return types.Message{}, sendErr
	}

	return types.Message{
		ID:          "srv-1",
		SenderID:    "viewer",
		RecipientID: in.RecipientID,
		Content:     in.Content,
		CreatedAt:   time.Now(),
	}, nil
}

func (b *fakeBackend) MarkThreadRead(_ context.Context, in types.MarkThreadRead) error {
	b.mu.Lock()
	b.markRead = append(b.markRead, in.CounterpartID)
	b.mu.Unlock()

	select {
	case b.markedRead <- in.CounterpartID:
	default:
	}
	return nil
}

type fakeSubscriber struct {
	mu       sync.Mutex
	handlers map[string]func(realtime.Event)
	unsubbed []string
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{handlers: map[string]func(realtime.Event){}}
}

func (s *fakeSubscriber) Sub(topic string, fn func(realtime.Event)) (func() error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[topic] = fn
	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.unsubbed = append(s.unsubbed, topic)
		delete(s.handlers, topic)
		return nil
	}, nil
}

func (s *fakeSubscriber) emit(topic string, ev realtime.Event) {
	s.mu.Lock()
	fn := s.handlers[topic]
	s.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
}

func messageEvent(t *testing.T, typ realtime.EventType, msg types.Message) realtime.Event {
	t.Helper()

	ev, err := realtime.NewEvent(typ, "messages", msg)
	if err != nil {
		t.Fatalf("encode event: %v", err)
	}
	return ev
}

func TestInbox_Mount(t *testing.T) {
	backend := newFakeBackend()
	backend.convs = []types.Conversation{
		{
			Counterpart: types.Profile{ID: "alice"},
			LastMessage: types.Message{ID: "m1", SenderID: "alice", RecipientID: "viewer", CreatedAt: time.Now()},
			UnreadCount: 1,
		},
	}

	sub := newFakeSubscriber()
	ib := New(backend, sub, log.NewNopLogger(), "viewer")

	if err := ib.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}

	if got := len(ib.Conversations()); got != 1 {
		t.Fatalf("want 1 conversation; got %d", got)
	}

	if err := ib.Mount(context.Background()); err == nil {
		t.Fatal("want error on double mount")
	}

	ib.Unmount()
	ib.Unmount() // idempotent

	if len(sub.unsubbed) != 1 {
		t.Fatalf("want exactly one unsubscribe; got %d", len(sub.unsubbed))
	}
}

func TestInbox_InsertEventFetchesNewCounterpart(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["bob"] = types.Profile{ID: "bob", Username: "bob"}

	sub := newFakeSubscriber()
	ib := New(backend, sub, log.NewNopLogger(), "viewer")

	if err := ib.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer ib.Unmount()

	msg := types.Message{ID: "m1", SenderID: "bob", RecipientID: "viewer", Content: "yo", CreatedAt: time.Now()}
	sub.emit(realtime.MessagesTopic("viewer"), messageEvent(t, realtime.EventInsert, msg))

	convs := ib.Conversations()
	if len(convs) != 1 {
		t.Fatalf("want 1 conversation; got %d", len(convs))
	}
	if convs[0].Counterpart.Username != "bob" {
		t.Errorf("want counterpart profile fetched; got %+v", convs[0].Counterpart)
	}
	if convs[0].UnreadCount != 1 {
		t.Errorf("want 1 unread; got %d", convs[0].UnreadCount)
	}
}

func TestInbox_DeleteEventDropsConversation(t *testing.T) {
	backend := newFakeBackend()
	backend.convs = []types.Conversation{
		{
			Counterpart: types.Profile{ID: "alice"},
			LastMessage: types.Message{ID: "m1", SenderID: "alice", RecipientID: "viewer", CreatedAt: time.Now()},
		},
	}

	sub := newFakeSubscriber()
	ib := New(backend, sub, log.NewNopLogger(), "viewer")

	if err := ib.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer ib.Unmount()

	msg := types.Message{ID: "m1", SenderID: "alice", RecipientID: "viewer"}
	sub.emit(realtime.MessagesTopic("viewer"), messageEvent(t, realtime.EventDelete, msg))

	if got := len(ib.Conversations()); got != 0 {
		t.Fatalf("want conversation dropped; got %d left", got)
	}
}

func TestInbox_OpenThreadClearsUnread(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}
	backend.convs = []types.Conversation{
		{
			Counterpart: types.Profile{ID: "alice"},
			LastMessage: types.Message{ID: "m1", SenderID: "alice", RecipientID: "viewer", CreatedAt: time.Now()},
			UnreadCount: 3,
		},
	}

	sub := newFakeSubscriber()
	ib := New(backend, sub, log.NewNopLogger(), "viewer")

	if err := ib.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer ib.Unmount()

	thread, err := ib.OpenThread(context.Background(), "alice")
	if err != nil {
		t.Fatalf("open thread: %v", err)
	}
	if thread.State() != ThreadReady {
		t.Fatalf("want ready thread; got %s", thread.State())
	}

	if got := ib.Conversations()[0].UnreadCount; got != 0 {
		t.Errorf("want unread cleared; got %d", got)
	}
}
