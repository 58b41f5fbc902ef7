package inbox

import (
	"slices"
	"sync"

	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

// ConversationList is the live-patched inbox listing: one entry per
// counterpart, ordered by last activity, newest first. Entries with
// equal timestamps order by counterpart ID so the listing is
// deterministic across refreshes.
type ConversationList struct {
	viewerID string

	mu    sync.Mutex
	convs []types.Conversation
}

func NewConversationList(viewerID string) *ConversationList {
	return &ConversationList{viewerID: viewerID}
}

// Reset replaces the whole list, typically from a fresh aggregate
// fetch.
func (l *ConversationList) Reset(convs []types.Conversation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.convs = slices.Clone(convs)
	l.sort()
}

func (l *ConversationList) Snapshot() []types.Conversation {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.convs)
}

func (l *ConversationList) Has(counterpartID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.indexOf(counterpartID) >= 0
}

// ApplyInsert bumps the counterpart's conversation with a new last
// message. The profile is only needed for a counterpart not yet in
// the list. Reapplying the same message is a no-op.
func (l *ConversationList) ApplyInsert(msg types.Message, profile types.Profile) {
	l.mu.Lock()
	defer l.mu.Unlock()

	inbound := msg.RecipientID == l.viewerID && !msg.IsRead

	i := l.indexOf(msg.CounterpartOf(l.viewerID))
	if i < 0 {
		conv := types.Conversation{
			Counterpart: profile,
			LastMessage: msg,
		}
		if inbound {
			conv.UnreadCount = 1
		}

		l.convs = append(l.convs, conv)
		l.sort()
		return
	}

	if l.convs[i].LastMessage.ID == msg.ID {
		return
	}

	if !msg.CreatedAt.Before(l.convs[i].LastMessage.CreatedAt) {
		l.convs[i].LastMessage = msg
	}

	if inbound {
		l.convs[i].UnreadCount++
	}

	l.sort()
}

// ApplyUpdate patches the conversation whose last message changed,
// usually a read receipt. A read receipt for an inbound message also
// settles one unread.
func (l *ConversationList) ApplyUpdate(msg types.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(msg.CounterpartOf(l.viewerID))
	if i < 0 {
		return
	}

	if l.convs[i].LastMessage.ID == msg.ID {
		l.convs[i].LastMessage = msg
	}

	if msg.RecipientID == l.viewerID && msg.IsRead && l.convs[i].UnreadCount > 0 {
		l.convs[i].UnreadCount--
	}
}

// ClearUnread zeroes the counter, for when the viewer opens the
// thread.
func (l *ConversationList) ClearUnread(counterpartID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(counterpartID); i >= 0 {
		l.convs[i].UnreadCount = 0
	}
}

// Drop removes the conversation entirely, for when a block wipes the
// pair's history.
func (l *ConversationList) Drop(counterpartID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(counterpartID); i >= 0 {
		l.convs = slices.Delete(l.convs, i, i+1)
	}
}

func (l *ConversationList) indexOf(counterpartID string) int {
	return slices.IndexFunc(l.convs, func(c types.Conversation) bool {
		return c.Counterpart.ID == counterpartID
	})
}

func (l *ConversationList) sort() {
	slices.SortStableFunc(l.convs, func(a, b types.Conversation) int {
		if !a.LastMessage.CreatedAt.Equal(b.LastMessage.CreatedAt) {
			if a.LastMessage.CreatedAt.After(b.LastMessage.CreatedAt) {
				return -1
			}
			return 1
		}

		if a.Counterpart.ID < b.Counterpart.ID {
			return -1
		}
		if a.Counterpart.ID > b.Counterpart.ID {
			return 1
		}
		return 0
	})
}
