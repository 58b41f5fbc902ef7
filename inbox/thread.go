package inbox

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/realtime"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/nicolasparada/go-errs"
	"golang.org/x/sync/errgroup"
)

type ThreadState string

const (
	ThreadClosed  ThreadState = "closed"
	ThreadLoading ThreadState = "loading"
	ThreadReady   ThreadState = "ready"
	ThreadSending ThreadState = "sending"
)

// ErrSendUnavailable means the composer should be disabled: either
// the thread is not ready or the relationship gate is closed. A send
// attempt in that state changes nothing.
var ErrSendUnavailable = errs.PermissionDeniedError("send unavailable")

// echoMatchWindow bounds business-key echo matching. A streamed copy
// of an optimistic send is recognized by sender, recipient and
// content only when its timestamp lands near the provisional one.
const echoMatchWindow = 2 * time.Minute

// Thread is the state machine behind one open chat view. It loads
// the counterpart profile, the message history and the send
// permission together, then keeps the message list consistent while
// events and optimistic sends interleave. Every message appears at
// most once regardless of whether the server ack or the streamed
// echo lands first.
type Thread struct {
	backend Backend

	viewerID      string
	counterpartID string

	// onRead fires after inbound messages get acknowledged, so the
	// owner can settle unread counters.
	onRead func(counterpartID string)

	mu          sync.Mutex
	state       ThreadState
	epoch       uint64
	counterpart types.Profile
	msgs        []types.Message
	canMessage  bool
	provisional map[string]struct{}
	lastErr     error
}

func NewThread(backend Backend, viewerID, counterpartID string) *Thread {
	return &Thread{
		backend:       backend,
		viewerID:      viewerID,
		counterpartID: counterpartID,
		state:         ThreadClosed,
		provisional:   map[string]struct{}{},
	}
}

// Open fetches the counterpart profile, the history and the send
// permission concurrently and commits them together. A Close or
// re-Open racing the fetches wins: a stale Open discards its results
// instead of clobbering newer state.
func (t *Thread) Open(ctx context.Context) error {
	t.mu.Lock()
	t.epoch++
	epoch := t.epoch
	t.state = ThreadLoading
	t.msgs = nil
	t.lastErr = nil
	clear(t.provisional)
	t.mu.Unlock()

	var (
		counterpart types.Profile
		msgs        []types.Message
		canMessage  bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counterpart, err = t.backend.Profile(gctx, types.RetrieveProfile{ProfileID: t.counterpartID})
		return err
	})
	g.Go(func() error {
		var err error
		msgs, err = t.backend.Thread(gctx, types.RetrieveThread{CounterpartID: t.counterpartID})
		return err
	})
	g.Go(func() error {
		var err error
		canMessage, err = t.backend.CanMessage(gctx, t.counterpartID)
		return err
	})

	err := g.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.epoch != epoch || t.state != ThreadLoading {
		return nil
	}

	if err != nil {
		t.state = ThreadClosed
		t.lastErr = err
		return err
	}

	t.counterpart = counterpart
	t.msgs = msgs
	t.canMessage = canMessage
	t.state = ThreadReady
	return nil
}

// Close invalidates in-flight fetches and sends.
func (t *Thread) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.epoch++
	t.state = ThreadClosed
	t.msgs = nil
	clear(t.provisional)
}

func (t *Thread) State() ThreadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Thread) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

func (t *Thread) CounterpartID() string {
	return t.counterpartID
}

func (t *Thread) Counterpart() types.Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counterpart
}

func (t *Thread) Messages() []types.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.msgs)
}

// CanSend reports whether a send would go through right now.
func (t *Thread) CanSend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == ThreadReady && t.canMessage
}

// Send appends an optimistic copy, ships the message and reconciles
// the server row against the provisional one. On failure the
// provisional copy is removed again.
func (t *Thread) Send(ctx context.Context, content string) error {
	t.mu.Lock()
	if t.state != ThreadReady || !t.canMessage {
		t.mu.Unlock()
		return ErrSendUnavailable
	}

	key, err := gonanoid.New()
	if err != nil {
		t.mu.Unlock()
		return err
	}

	pending := types.Message{
		ID:          "pending-" + key,
		SenderID:    t.viewerID,
		RecipientID: t.counterpartID,
		Content:     strings.TrimSpace(content),
		CreatedAt:   time.Now(),
	}
	t.msgs = append(t.msgs, pending)
	t.provisional[pending.ID] = struct{}{}
	t.state = ThreadSending
	epoch := t.epoch
	t.mu.Unlock()

	msg, err := t.backend.SendMessage(ctx, types.SendMessage{
		RecipientID: t.counterpartID,
		Content:     content,
	})

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.epoch != epoch {
		// Thread was closed or reopened mid-send; nothing to patch.
		return err
	}

	if t.state == ThreadSending {
		t.state = ThreadReady
	}

	if err != nil {
		t.removeLocked(pending.ID)
		delete(t.provisional, pending.ID)
		return err
	}

	delete(t.provisional, pending.ID)

	// The streamed echo may have landed before the ack. Keep exactly
	// one copy, preferring the server row.
	if t.indexLocked(msg.ID) >= 0 {
		t.removeLocked(pending.ID)
		return nil
	}

	t.replaceLocked(pending.ID, msg)
	return nil
}

// ApplyEvent folds a live change into the open thread. Events for
// other pairs, or arriving while the thread is closed or loading,
// are ignored.
func (t *Thread) ApplyEvent(ctx context.Context, typ realtime.EventType, msg types.Message) {
	if msg.CounterpartOf(t.viewerID) != t.counterpartID || !msg.Involves(t.viewerID) {
		return
	}

	t.mu.Lock()

	if t.state != ThreadReady && t.state != ThreadSending {
		t.mu.Unlock()
		return
	}

	switch typ {
	case realtime.EventInsert:
		t.applyInsertLocked(msg)
	case realtime.EventUpdate:
		if i := t.indexLocked(msg.ID); i >= 0 {
			t.msgs[i] = msg
		}
	case realtime.EventDelete:
		t.removeLocked(msg.ID)
	}

	inbound := typ == realtime.EventInsert && msg.SenderID == t.counterpartID && !msg.IsRead
	t.mu.Unlock()

	// Viewer is looking at the thread, so inbound messages are read
	// immediately.
	if inbound {
		go t.acknowledge(ctx)
	}
}

func (t *Thread) applyInsertLocked(msg types.Message) {
	if i := t.indexLocked(msg.ID); i >= 0 {
		t.msgs[i] = msg
		return
	}

	// An echo of an optimistic send replaces the provisional copy
	// in place of appending a second one.
	if msg.SenderID == t.viewerID {
		for id := range t.provisional {
			i := t.indexLocked(id)
			if i < 0 {
				continue
			}

			p := t.msgs[i]
			if p.RecipientID == msg.RecipientID && p.Content == msg.Content &&
				absDuration(msg.CreatedAt.Sub(p.CreatedAt)) < echoMatchWindow {
				t.msgs[i] = msg
				delete(t.provisional, id)
				return
			}
		}
	}

	t.msgs = append(t.msgs, msg)
}

func (t *Thread) acknowledge(ctx context.Context) {
	err := t.backend.MarkThreadRead(ctx, types.MarkThreadRead{CounterpartID: t.counterpartID})
	if err != nil {
		return
	}

	if t.onRead != nil {
		t.onRead(t.counterpartID)
	}
}

func (t *Thread) indexLocked(msgID string) int {
	return slices.IndexFunc(t.msgs, func(m types.Message) bool { return m.ID == msgID })
}

func (t *Thread) removeLocked(msgID string) {
	if i := t.indexLocked(msgID); i >= 0 {
		t.msgs = slices.Delete(t.msgs, i, i+1)
	}
}

func (t *Thread) replaceLocked(msgID string, msg types.Message) {
	if i := t.indexLocked(msgID); i >= 0 {
		t.msgs[i] = msg
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
