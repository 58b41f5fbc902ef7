package inbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/realtime"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

func TestThread_Open(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice", Username: "alice"}
	backend.thread = []types.Message{
		{ID: "m1", SenderID: "alice", RecipientID: "viewer", Content: "hi"},
	}

	thread := NewThread(backend, "viewer", "alice")

	if err := thread.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	if thread.State() != ThreadReady {
		t.Fatalf("want ready; got %s", thread.State())
	}
	if got := thread.Counterpart().Username; got != "alice" {
		t.Errorf("want counterpart alice; got %q", got)
	}
	if got := len(thread.Messages()); got != 1 {
		t.Errorf("want 1 message; got %d", got)
	}
	if !thread.CanSend() {
		t.Error("want send enabled")
	}
}

func TestThread_OpenFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}
	backend.threadErr = errors.New("boom")

	thread := NewThread(backend, "viewer", "alice")

	if err := thread.Open(context.Background()); err == nil {
		t.Fatal("want open error")
	}

	if thread.State() != ThreadClosed {
		t.Fatalf("want closed after failed open; got %s", thread.State())
	}
	if thread.Err() == nil {
		t.Error("want last error recorded")
	}
}

func TestThread_CloseDiscardsInFlightOpen(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}
	backend.thread = []types.Message{
		{ID: "m1", SenderID: "alice", RecipientID: "viewer"},
	}

	thread := NewThread(backend, "viewer", "alice")

	// Close right after Open's loading phase commits: bump the epoch
	// by closing before the fetch results land. The fake backend is
	// synchronous, so simulate the race by reopening and closing in
	// order and checking the final state wins.
	if err := thread.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	thread.Close()

	if thread.State() != ThreadClosed {
		t.Fatalf("want closed; got %s", thread.State())
	}
	if got := len(thread.Messages()); got != 0 {
		t.Errorf("want messages cleared; got %d", got)
	}
}

func TestThread_SendBlockedByGate(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}
	backend.canMessage = false

	thread := NewThread(backend, "viewer", "alice")

	if err := thread.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	if thread.CanSend() {
		t.Error("want send disabled")
	}

	err := thread.Send(context.Background(), "hello")
	if !errors.Is(err, ErrSendUnavailable) {
		t.Fatalf("want ErrSendUnavailable; got %v", err)
	}

	if got := len(thread.Messages()); got != 0 {
		t.Errorf("want no provisional appended; got %d messages", got)
	}
	if got := len(backend.sent); got != 0 {
		t.Errorf("want no send hitting the backend; got %d", got)
	}
}

func TestThread_SendAckBeforeEcho(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}

	thread := NewThread(backend, "viewer", "alice")

	if err := thread.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := thread.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := thread.Messages()
	if len(msgs) != 1 {
		t.Fatalf("want 1 message after ack; got %d", len(msgs))
	}
	if msgs[0].ID != "srv-1" {
		t.Errorf("want server row replacing provisional; got %q", msgs[0].ID)
	}

	// The streamed echo of the same row lands afterwards.
	thread.ApplyEvent(context.Background(), realtime.EventInsert, msgs[0])

	if got := len(thread.Messages()); got != 1 {
		t.Fatalf("want echo deduplicated; got %d messages", got)
	}
}

func TestThread_SendEchoBeforeAck(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}

	thread := NewThread(backend, "viewer", "alice")

	if err := thread.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	srv := types.Message{
		ID:          "srv-1",
		SenderID:    "viewer",
		RecipientID: "alice",
		Content:     "hello",
		CreatedAt:   time.Now(),
	}

	// The echo arrives through the stream while the send is still
	// waiting on its ack.
	backend.sendFn = func(in types.SendMessage) (types.Message, error) {
		thread.ApplyEvent(context.Background(), realtime.EventInsert, srv)
		return srv, nil
	}

	if err := thread.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := thread.Messages()
	if len(msgs) != 1 {
		t.Fatalf("want exactly one copy; got %d", len(msgs))
	}
	if msgs[0].ID != "srv-1" {
		t.Errorf("want server row; got %q", msgs[0].ID)
	}
}

func TestThread_SendFailureReverts(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}
	backend.sendErr = errors.New("recipient gone private")

	thread := NewThread(backend, "viewer", "alice")

	if err := thread.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := thread.Send(context.Background(), "hello"); err == nil {
		t.Fatal("want send error")
	}

	if got := len(thread.Messages()); got != 0 {
		t.Fatalf("want provisional removed on failure; got %d messages", got)
	}
	if thread.State() != ThreadReady {
		t.Errorf("want thread usable again; got %s", thread.State())
	}
}

func TestThread_ApplyEventIgnoresOtherPairs(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}

	thread := NewThread(backend, "viewer", "alice")

	if err := thread.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	other := types.Message{ID: "m9", SenderID: "bob", RecipientID: "viewer", Content: "wrong thread"}
	thread.ApplyEvent(context.Background(), realtime.EventInsert, other)

	if got := len(thread.Messages()); got != 0 {
		t.Fatalf("want event for other pair ignored; got %d messages", got)
	}
}

func TestThread_InboundInsertAcknowledged(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}

	thread := NewThread(backend, "viewer", "alice")

	cleared := make(chan string, 1)
	thread.onRead = func(counterpartID string) {
		cleared <- counterpartID
	}

	if err := thread.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	inbound := types.Message{ID: "m1", SenderID: "alice", RecipientID: "viewer", Content: "hi", CreatedAt: time.Now()}
	thread.ApplyEvent(context.Background(), realtime.EventInsert, inbound)

	select {
	case id := <-backend.markedRead:
		if id != "alice" {
			t.Errorf("want thread with alice marked read; got %q", id)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for read acknowledgement")
	}

	select {
	case id := <-cleared:
		if id != "alice" {
			t.Errorf("want unread cleared for alice; got %q", id)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for onRead")
	}
}

func TestThread_UpdateEventPatchesRow(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["alice"] = types.Profile{ID: "alice"}
	backend.thread = []types.Message{
		{ID: "m1", SenderID: "viewer", RecipientID: "alice", Content: "hi"},
	}

	thread := NewThread(backend, "viewer", "alice")

	if err := thread.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	now := time.Now()
	read := types.Message{ID: "m1", SenderID: "viewer", RecipientID: "alice", Content: "hi", IsRead: true, ReadAt: &now}
	thread.ApplyEvent(context.Background(), realtime.EventUpdate, read)

	msgs := thread.Messages()
	if len(msgs) != 1 {
		t.Fatalf("want 1 message; got %d", len(msgs))
	}
	if !msgs[0].IsRead {
		t.Error("want read receipt applied")
	}
}
