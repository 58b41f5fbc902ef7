package cockroach

import (
	"context"
	"fmt"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	crdbpgx "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"
)

// BlockCleanup reports what a block removed so callers can fan the
// deletions out to live subscribers.
type BlockCleanup struct {
	Block           types.Block
	DeletedMessages []types.Message
}

// CreateBlock inserts the block and deletes all messages and follows
// between the pair, both directions, in one retried transaction. The
// three-part cleanup is atomic: a block either fully lands or not at
// all.
func (c *Cockroach) CreateBlock(ctx context.Context, blockerID, blockedID string) (BlockCleanup, error) {
	var out BlockCleanup

	err := crdbpgx.ExecuteTx(ctx, c.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO blocked_users (id, blocker_id, blocked_id)
			VALUES (@block_id, @blocker_id, @blocked_id)
			RETURNING blocked_users.id, blocked_users.blocker_id, blocked_users.blocked_id, blocked_users.created_at
		`, pgx.StrictNamedArgs{
			"block_id":   id.Generate(),
			"blocker_id": blockerID,
			"blocked_id": blockedID,
		})
		if err != nil {
			return fmt.Errorf("sql insert block: %w", err)
		}

		out.Block, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Block])
		if err != nil {
			return fmt.Errorf("sql collect inserted block: %w", err)
		}

		rows, err = tx.Query(ctx, `
			DELETE FROM messages
			WHERE (sender_id = @blocker_id AND recipient_id = @blocked_id)
				OR (sender_id = @blocked_id AND recipient_id = @blocker_id)
			RETURNING `+messageColumnsStr+`
		`, pgx.StrictNamedArgs{
			"blocker_id": blockerID,
			"blocked_id": blockedID,
		})
		if err != nil {
			return fmt.Errorf("sql delete pair messages: %w", err)
		}

		out.DeletedMessages, err = pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Message])
		if err != nil {
			return fmt.Errorf("sql collect deleted pair messages: %w", err)
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM follows
			WHERE (follower_id = @blocker_id AND following_id = @blocked_id)
				OR (follower_id = @blocked_id AND following_id = @blocker_id)
		`, pgx.StrictNamedArgs{
			"blocker_id": blockerID,
			"blocked_id": blockedID,
		})
		if err != nil {
			return fmt.Errorf("sql delete pair follows: %w", err)
		}

		return nil
	})
	if err != nil {
		return out, err
	}

	if err := c.refreshFollowCounts(ctx, blockerID, blockedID); err != nil {
		return out, err
	}

	return out, nil
}

func (c *Cockroach) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	_, err := c.db.Exec(ctx, `
		DELETE FROM blocked_users
		WHERE blocker_id = @blocker_id AND blocked_id = @blocked_id
	`, pgx.StrictNamedArgs{
		"blocker_id": blockerID,
		"blocked_id": blockedID,
	})
	if err != nil {
		return fmt.Errorf("sql delete block: %w", err)
	}

	return nil
}

// BlockedEitherWay reports whether either user blocked the other.
func (c *Cockroach) BlockedEitherWay(ctx context.Context, userA, userB string) (bool, error) {
	var blocked bool
	err := c.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blocked_users
			WHERE (blocker_id = @user_a AND blocked_id = @user_b)
				OR (blocker_id = @user_b AND blocked_id = @user_a)
		)
	`, pgx.StrictNamedArgs{
		"user_a": userA,
		"user_b": userB,
	}).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("sql check blocked either way: %w", err)
	}

	return blocked, nil
}

func (c *Cockroach) BlockedUsers(ctx context.Context, blockerID string) ([]types.Block, error) {
	rows, err := c.db.Query(ctx, `
		SELECT blocked_users.id, blocked_users.blocker_id, blocked_users.blocked_id, blocked_users.created_at
		FROM blocked_users
		WHERE blocked_users.blocker_id = @blocker_id
		ORDER BY blocked_users.created_at DESC
	`, pgx.StrictNamedArgs{
		"blocker_id": blockerID,
	})
	if err != nil {
		return nil, fmt.Errorf("sql select blocked users: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Block])
	if err != nil {
		return nil, fmt.Errorf("sql collect blocked users: %w", err)
	}

	return out, nil
}
