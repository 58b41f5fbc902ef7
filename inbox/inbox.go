// Package inbox is the stateful client core for direct messaging.
// It keeps an aggregated conversation list and at most one open
// thread consistent with the backend while live events stream in.
package inbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/Roberadesissai/workout-tracker-sub000/realtime"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/go-kit/log"
)

// Backend is the server surface the inbox drives. *service.Service
// satisfies it directly; tests use fakes.
type Backend interface {
	Profile(ctx context.Context, in types.RetrieveProfile) (types.Profile, error)
	Thread(ctx context.Context, in types.RetrieveThread) ([]types.Message, error)
	Conversations(ctx context.Context) ([]types.Conversation, error)
	CanMessage(ctx context.Context, recipientID string) (bool, error)
	SendMessage(ctx context.Context, in types.SendMessage) (types.Message, error)
	MarkThreadRead(ctx context.Context, in types.MarkThreadRead) error
}

// Subscriber hands out broker subscriptions. *realtime.Broker
// satisfies it.
type Subscriber interface {
	Sub(topic string, fn func(realtime.Event)) (func() error, error)
}

type Inbox struct {
	backend Backend
	sub     Subscriber
	logger  log.Logger

	viewerID string

	mu     sync.Mutex
	list   *ConversationList
	thread *Thread
	unsub  func() error
}

func New(backend Backend, sub Subscriber, logger log.Logger, viewerID string) *Inbox {
	return &Inbox{
		backend:  backend,
		sub:      sub,
		logger:   logger,
		viewerID: viewerID,
		list:     NewConversationList(viewerID),
	}
}

// Mount loads the conversation list and starts consuming the
// viewer's message stream. Mounting twice without an Unmount in
// between is an error; the stream subscription is single-owner.
func (ib *Inbox) Mount(ctx context.Context) error {
	ib.mu.Lock()
	defer ib.mu.Unlock()

	if ib.unsub != nil {
		return fmt.Errorf("inbox already mounted")
	}

	convs, err := ib.backend.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("fetch conversations: %w", err)
	}

	ib.list.Reset(convs)

	unsub, err := ib.sub.Sub(realtime.MessagesTopic(ib.viewerID), func(ev realtime.Event) {
		ib.handleEvent(ctx, ev)
	})
	if err != nil {
		return fmt.Errorf("subscribe to message stream: %w", err)
	}

	ib.unsub = unsub
	return nil
}

// Unmount releases the stream subscription. Safe to call more than
// once; only the first call unsubscribes.
func (ib *Inbox) Unmount() {
	ib.mu.Lock()
	unsub := ib.unsub
	ib.unsub = nil
	thread := ib.thread
	ib.thread = nil
	ib.mu.Unlock()

	if thread != nil {
		thread.Close()
	}

	if unsub != nil {
		if err := unsub(); err != nil {
			_ = ib.logger.Log("err", fmt.Errorf("unsubscribe inbox: %w", err))
		}
	}
}

// OpenThread switches the active thread to the given counterpart,
// closing the previous one. It blocks until the thread's fetches
// land or fail.
func (ib *Inbox) OpenThread(ctx context.Context, counterpartID string) (*Thread, error) {
	ib.mu.Lock()
	if ib.thread != nil {
		ib.thread.Close()
	}

	thread := NewThread(ib.backend, ib.viewerID, counterpartID)
	thread.onRead = func(counterpartID string) {
		ib.list.ClearUnread(counterpartID)
	}
	ib.thread = thread
	ib.mu.Unlock()

	if err := thread.Open(ctx); err != nil {
		return nil, err
	}

	ib.list.ClearUnread(counterpartID)
	return thread, nil
}

// CloseThread closes the active thread, if any.
func (ib *Inbox) CloseThread() {
	ib.mu.Lock()
	thread := ib.thread
	ib.thread = nil
	ib.mu.Unlock()

	if thread != nil {
		thread.Close()
	}
}

// Conversations is a snapshot of the aggregated list.
func (ib *Inbox) Conversations() []types.Conversation {
	return ib.list.Snapshot()
}

func (ib *Inbox) handleEvent(ctx context.Context, ev realtime.Event) {
	if ev.Table != "messages" {
		return
	}

	msg, err := realtime.DecodeRow[types.Message](ev)
	if err != nil {
		_ = ib.logger.Log("err", fmt.Errorf("decode inbox event: %w", err))
		return
	}

	ib.mu.Lock()
	thread := ib.thread
	ib.mu.Unlock()

	if thread != nil {
		thread.ApplyEvent(ctx, ev.Type, msg)
	}

	switch ev.Type {
	case realtime.EventInsert:
		counterpartID := msg.CounterpartOf(ib.viewerID)

		// A fresh counterpart needs its profile before the list can
		// show the conversation.
		var profile types.Profile
		if !ib.list.Has(counterpartID) {
			var err error
			profile, err = ib.backend.Profile(ctx, types.RetrieveProfile{ProfileID: counterpartID})
			if err != nil {
				_ = ib.logger.Log("err", fmt.Errorf("fetch counterpart profile: %w", err))
				return
			}
		}

		ib.list.ApplyInsert(msg, profile)
		ib.markOpenThreadRead(msg, thread)
	case realtime.EventUpdate:
		ib.list.ApplyUpdate(msg)
	case realtime.EventDelete:
		ib.list.Drop(msg.CounterpartOf(ib.viewerID))
	}
}

// markOpenThreadRead keeps the list's unread count at zero for the
// pair the viewer is looking at.
func (ib *Inbox) markOpenThreadRead(msg types.Message, thread *Thread) {
	if thread == nil || msg.RecipientID != ib.viewerID {
		return
	}

	if thread.CounterpartID() == msg.SenderID && thread.State() != ThreadClosed {
		ib.list.ClearUnread(msg.SenderID)
	}
}
