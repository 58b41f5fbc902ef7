package cockroach

import (
	"context"
	"fmt"
	"strings"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/jackc/pgx/v5"
)

var messageColumns = [...]string{
	"messages.id",
	"messages.sender_id",
	"messages.recipient_id",
	"messages.content",
	"messages.media_url",
	"messages.workout_id",
	"messages.achievement_id",
	"messages.is_read",
	"messages.read_at",
	"messages.created_at",
}

var messageColumnsStr = strings.Join(messageColumns[:], ", ")

func (c *Cockroach) CreateMessage(ctx context.Context, in types.SendMessage, mediaURL *string) (types.Message, error) {
	var out types.Message

	query := `
		INSERT INTO messages (id, sender_id, recipient_id, content, media_url, workout_id, achievement_id)
		VALUES (@message_id, @sender_id, @recipient_id, @content, @media_url, @workout_id, @achievement_id)
		RETURNING ` + messageColumnsStr + `
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"message_id":     id.Generate(),
		"sender_id":      in.LoggedInUserID(),
		"recipient_id":   in.RecipientID,
		"content":        in.Content,
		"media_url":      mediaURL,
		"workout_id":     in.WorkoutID,
		"achievement_id": in.AchievementID,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert message: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Message])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted message: %w", err)
	}

	return out, nil
}

// Thread returns the full bidirectional history between the viewer
// and a counterpart, oldest first.
func (c *Cockroach) Thread(ctx context.Context, viewerID, counterpartID string) ([]types.Message, error) {
	query := `
		SELECT ` + messageColumnsStr + `
		FROM messages
		WHERE (messages.sender_id = @viewer_id AND messages.recipient_id = @counterpart_id)
			OR (messages.sender_id = @counterpart_id AND messages.recipient_id = @viewer_id)
		ORDER BY messages.created_at ASC, messages.id ASC
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"viewer_id":      viewerID,
		"counterpart_id": counterpartID,
	})
	if err != nil {
		return nil, fmt.Errorf("sql select thread: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Message])
	if err != nil {
		return nil, fmt.Errorf("sql collect thread: %w", err)
	}

	return out, nil
}

// MessagesForViewer returns every message the viewer sent or
// received, newest first. It is the conversation aggregation input.
func (c *Cockroach) MessagesForViewer(ctx context.Context, viewerID string) ([]types.Message, error) {
	query := `
		SELECT ` + messageColumnsStr + `
		FROM messages
		WHERE messages.sender_id = @viewer_id OR messages.recipient_id = @viewer_id
		ORDER BY messages.created_at DESC, messages.id DESC
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"viewer_id": viewerID,
	})
	if err != nil {
		return nil, fmt.Errorf("sql select viewer messages: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Message])
	if err != nil {
		return nil, fmt.Errorf("sql collect viewer messages: %w", err)
	}

	return out, nil
}

// MarkThreadRead flips is_read on every unread inbound message of the
// pair and stamps read_at in the same write, keeping the two fields
// consistent. It returns the updated rows for read-receipt fan-out.
func (c *Cockroach) MarkThreadRead(ctx context.Context, viewerID, counterpartID string) ([]types.Message, error) {
	query := `
		UPDATE messages
		SET is_read = true, read_at = now()
		WHERE recipient_id = @viewer_id
			AND sender_id = @counterpart_id
			AND is_read = false
		RETURNING ` + messageColumnsStr + `
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"viewer_id":      viewerID,
		"counterpart_id": counterpartID,
	})
	if err != nil {
		return nil, fmt.Errorf("sql mark thread read: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Message])
	if err != nil {
		return nil, fmt.Errorf("sql collect read messages: %w", err)
	}

	return out, nil
}

// ThreadWithReadReceipts runs the history fetch and the batch
// mark-read as one transaction so the caller observes them together.
func (c *Cockroach) ThreadWithReadReceipts(ctx context.Context, viewerID, counterpartID string) (msgs, read []types.Message, err error) {
	err = c.db.RunTx(ctx, func(ctx context.Context) error {
		read, err = c.MarkThreadRead(ctx, viewerID, counterpartID)
		if err != nil {
			return err
		}

		msgs, err = c.Thread(ctx, viewerID, counterpartID)
		return err
	})
	return msgs, read, err
}
