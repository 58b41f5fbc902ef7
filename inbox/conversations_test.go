package inbox

import (
	"testing"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

var listBase = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func listMsg(id, senderID, recipientID string, read bool, offset time.Duration) types.Message {
	return types.Message{
		ID:          id,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     "hey",
		IsRead:      read,
		CreatedAt:   listBase.Add(offset),
	}
}

func TestConversationList_ResetSorts(t *testing.T) {
	l := NewConversationList("viewer")
	l.Reset([]types.Conversation{
		{Counterpart: types.Profile{ID: "alice"}, LastMessage: listMsg("m1", "alice", "viewer", true, 0)},
		{Counterpart: types.Profile{ID: "bob"}, LastMessage: listMsg("m2", "bob", "viewer", true, time.Minute)},
	})

	got := l.Snapshot()
	if got[0].Counterpart.ID != "bob" || got[1].Counterpart.ID != "alice" {
		t.Errorf("want newest first; got %q then %q", got[0].Counterpart.ID, got[1].Counterpart.ID)
	}
}

func TestConversationList_ApplyInsert(t *testing.T) {
	l := NewConversationList("viewer")

	// New counterpart with an inbound unread message.
	m1 := listMsg("m1", "alice", "viewer", false, 0)
	l.ApplyInsert(m1, types.Profile{ID: "alice"})

	got := l.Snapshot()
	if len(got) != 1 {
		t.Fatalf("want 1 conversation; got %d", len(got))
	}
	if got[0].UnreadCount != 1 {
		t.Errorf("want 1 unread; got %d", got[0].UnreadCount)
	}

	// Reapplying the same message changes nothing.
	l.ApplyInsert(m1, types.Profile{})
	if got := l.Snapshot()[0].UnreadCount; got != 1 {
		t.Errorf("want duplicate insert ignored; got %d unread", got)
	}

	// A newer inbound message bumps the thread and the counter.
	m2 := listMsg("m2", "alice", "viewer", false, time.Minute)
	l.ApplyInsert(m2, types.Profile{})

	got = l.Snapshot()
	if got[0].LastMessage.ID != "m2" {
		t.Errorf("want last message bumped; got %q", got[0].LastMessage.ID)
	}
	if got[0].UnreadCount != 2 {
		t.Errorf("want 2 unread; got %d", got[0].UnreadCount)
	}

	// The viewer's own message bumps the thread without counting.
	m3 := listMsg("m3", "viewer", "alice", false, 2*time.Minute)
	l.ApplyInsert(m3, types.Profile{})

	got = l.Snapshot()
	if got[0].LastMessage.ID != "m3" {
		t.Errorf("want last message bumped; got %q", got[0].LastMessage.ID)
	}
	if got[0].UnreadCount != 2 {
		t.Errorf("want unread unchanged by own message; got %d", got[0].UnreadCount)
	}
}

func TestConversationList_InsertReordersThreads(t *testing.T) {
	l := NewConversationList("viewer")
	l.Reset([]types.Conversation{
		{Counterpart: types.Profile{ID: "alice"}, LastMessage: listMsg("m2", "alice", "viewer", true, time.Minute)},
		{Counterpart: types.Profile{ID: "bob"}, LastMessage: listMsg("m1", "bob", "viewer", true, 0)},
	})

	l.ApplyInsert(listMsg("m3", "bob", "viewer", false, 2*time.Minute), types.Profile{})

	got := l.Snapshot()
	if got[0].Counterpart.ID != "bob" {
		t.Errorf("want bob bumped to the top; got %q", got[0].Counterpart.ID)
	}
}

func TestConversationList_ApplyUpdate(t *testing.T) {
	l := NewConversationList("viewer")

	m1 := listMsg("m1", "alice", "viewer", false, 0)
	l.ApplyInsert(m1, types.Profile{ID: "alice"})

	// Read receipt for the inbound message settles one unread and
	// patches the visible row.
	now := listBase.Add(time.Minute)
	read := m1
	read.IsRead = true
	read.ReadAt = &now
	l.ApplyUpdate(read)

	got := l.Snapshot()
	if got[0].UnreadCount != 0 {
		t.Errorf("want unread settled; got %d", got[0].UnreadCount)
	}
	if !got[0].LastMessage.IsRead {
		t.Error("want last message patched with read receipt")
	}

	// Updates for unknown counterparts are ignored.
	l.ApplyUpdate(listMsg("m9", "ghost", "viewer", true, 0))
	if got := len(l.Snapshot()); got != 1 {
		t.Errorf("want unknown counterpart ignored; got %d conversations", got)
	}
}

func TestConversationList_EqualTimestampsTieBreak(t *testing.T) {
	l := NewConversationList("viewer")
	l.Reset([]types.Conversation{
		{Counterpart: types.Profile{ID: "bob"}, LastMessage: listMsg("m2", "bob", "viewer", true, 0)},
		{Counterpart: types.Profile{ID: "alice"}, LastMessage: listMsg("m1", "alice", "viewer", true, 0)},
	})

	got := l.Snapshot()
	if got[0].Counterpart.ID != "alice" || got[1].Counterpart.ID != "bob" {
		t.Errorf("want counterpart ID tie break; got %q then %q", got[0].Counterpart.ID, got[1].Counterpart.ID)
	}
}

func TestConversationList_Drop(t *testing.T) {
	l := NewConversationList("viewer")
	l.ApplyInsert(listMsg("m1", "alice", "viewer", false, 0), types.Profile{ID: "alice"})

	l.Drop("alice")
	if got := len(l.Snapshot()); got != 0 {
		t.Fatalf("want conversation dropped; got %d", got)
	}

	// Dropping again is a no-op.
	l.Drop("alice")
}
