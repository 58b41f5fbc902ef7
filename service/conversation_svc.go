package service

import (
	"context"
	"slices"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/minio"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/nicolasparada/go-errs"
)

// Conversations derives the inbox from raw message rows: one entry
// per counterpart, newest thread first.
func (svc *Service) Conversations(ctx context.Context) ([]types.Conversation, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated
	}

	msgs, err := svc.Cockroach.MessagesForViewer(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	var counterpartIDs []string
	for _, msg := range msgs {
		cid := msg.CounterpartOf(user.ID)
		if !slices.Contains(counterpartIDs, cid) {
			counterpartIDs = append(counterpartIDs, cid)
		}
	}

	profiles, err := svc.Cockroach.ProfilesByIDs(ctx, counterpartIDs)
	if err != nil {
		return nil, err
	}

	out := aggregateConversations(user.ID, msgs, profiles)
	for i := range out {
		out[i].Counterpart.SetAvatarURL(svc.mediaURLPrefix + minio.BucketAvatars + "/")
	}

	return out, nil
}

// aggregateConversations folds messages into one conversation per
// counterpart in a single walk. Messages must be ordered newest
// first: the first row seen per counterpart is the thread's last
// message, and every unread inbound row counts toward the unread
// total regardless of position. Counterparts with no profile row are
// dropped.
func aggregateConversations(viewerID string, msgs []types.Message, profiles map[string]types.Profile) []types.Conversation {
	byCounterpart := map[string]int{}
	out := []types.Conversation{}

	for _, msg := range msgs {
		cid := msg.CounterpartOf(viewerID)

		i, seen := byCounterpart[cid]
		if !seen {
			profile, ok := profiles[cid]
			if !ok {
				continue
			}

			out = append(out, types.Conversation{
				Counterpart: profile,
				LastMessage: msg,
			})
			i = len(out) - 1
			byCounterpart[cid] = i
		}

		if msg.RecipientID == viewerID && !msg.IsRead {
			out[i].UnreadCount++
		}
	}

	slices.SortStableFunc(out, func(a, b types.Conversation) int {
		if !a.LastMessage.CreatedAt.Equal(b.LastMessage.CreatedAt) {
			if a.LastMessage.CreatedAt.After(b.LastMessage.CreatedAt) {
				return -1
			}
			return 1
		}

		// Equal timestamps order by counterpart ID so the listing is
		// deterministic.
		if a.Counterpart.ID < b.Counterpart.ID {
			return -1
		}
		if a.Counterpart.ID > b.Counterpart.ID {
			return 1
		}
		return 0
	})

	return out
}
