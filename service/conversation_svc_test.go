package service

import (
	"reflect"
	"testing"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

var aggBase = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func aggMsg(id, senderID, recipientID string, read bool, offset time.Duration) types.Message {
	return types.Message{
		ID:          id,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     "hey",
		IsRead:      read,
		CreatedAt:   aggBase.Add(offset),
	}
}

func Test_aggregateConversations(t *testing.T) {
	profiles := map[string]types.Profile{
		"alice": {ID: "alice", Username: "alice"},
		"bob":   {ID: "bob", Username: "bob"},
	}

	tt := []struct {
		name     string
		msgs     []types.Message
		profiles map[string]types.Profile
		want     []types.Conversation
	}{
		{
			name: "empty",
			want: []types.Conversation{},
		},
		{
			name: "single_outbound",
			msgs: []types.Message{
				aggMsg("m1", "viewer", "alice", false, 0),
			},
			profiles: profiles,
			want: []types.Conversation{
				{
					Counterpart: profiles["alice"],
					LastMessage: aggMsg("m1", "viewer", "alice", false, 0),
				},
			},
		},
		{
			name: "unread_inbound_counted",
			msgs: []types.Message{
				aggMsg("m3", "alice", "viewer", false, 3*time.Minute),
				aggMsg("m2", "alice", "viewer", false, 2*time.Minute),
				aggMsg("m1", "alice", "viewer", true, time.Minute),
			},
			profiles: profiles,
			want: []types.Conversation{
				{
					Counterpart: profiles["alice"],
					LastMessage: aggMsg("m3", "alice", "viewer", false, 3*time.Minute),
					UnreadCount: 2,
				},
			},
		},
		{
			name: "own_unread_not_counted",
			msgs: []types.Message{
				aggMsg("m2", "viewer", "alice", false, 2*time.Minute),
				aggMsg("m1", "alice", "viewer", false, time.Minute),
			},
			profiles: profiles,
			want: []types.Conversation{
				{
					Counterpart: profiles["alice"],
					LastMessage: aggMsg("m2", "viewer", "alice", false, 2*time.Minute),
					UnreadCount: 1,
				},
			},
		},
		{
			name: "newest_thread_first",
			msgs: []types.Message{
				aggMsg("m3", "bob", "viewer", true, 3*time.Minute),
				aggMsg("m2", "viewer", "alice", false, 2*time.Minute),
				aggMsg("m1", "alice", "viewer", true, time.Minute),
			},
			profiles: profiles,
			want: []types.Conversation{
				{
					Counterpart: profiles["bob"],
					LastMessage: aggMsg("m3", "bob", "viewer", true, 3*time.Minute),
				},
				{
					Counterpart: profiles["alice"],
					LastMessage: aggMsg("m2", "viewer", "alice", false, 2*time.Minute),
				},
			},
		},
		{
			name: "equal_timestamps_order_by_counterpart_id",
			msgs: []types.Message{
				aggMsg("m2", "bob", "viewer", true, 0),
				aggMsg("m1", "alice", "viewer", true, 0),
			},
			profiles: profiles,
			want: []types.Conversation{
				{
					Counterpart: profiles["alice"],
					LastMessage: aggMsg("m1", "alice", "viewer", true, 0),
				},
				{
					Counterpart: profiles["bob"],
					LastMessage: aggMsg("m2", "bob", "viewer", true, 0),
				},
			},
		},
		{
			name: "missing_profile_dropped",
			msgs: []types.Message{
				aggMsg("m2", "ghost", "viewer", false, 2*time.Minute),
				aggMsg("m1", "alice", "viewer", true, time.Minute),
			},
			profiles: profiles,
			want: []types.Conversation{
				{
					Counterpart: profiles["alice"],
					LastMessage: aggMsg("m1", "alice", "viewer", true, time.Minute),
				},
			},
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := aggregateConversations("viewer", tc.msgs, tc.profiles)
			if !reflect.DeepEqual(tc.want, got) {
				t.Errorf("want %+v; got %+v", tc.want, got)
			}
		})
	}
}
