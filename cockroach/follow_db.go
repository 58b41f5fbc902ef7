package cockroach

import (
	"context"
	"fmt"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/jackc/pgx/v5"
	"github.com/nicolasparada/go-db"
	"github.com/nicolasparada/go-errs"
)

var ErrFollowNotFound = errs.NotFoundError("follow not found")

// FollowBetween returns the single relationship row for the pair, or
// ErrFollowNotFound. At most one row exists per (follower, following).
func (c *Cockroach) FollowBetween(ctx context.Context, followerID, followingID string) (types.Follow, error) {
	var out types.Follow

	const q = `
		SELECT follows.id, follows.follower_id, follows.following_id, follows.status, follows.created_at, follows.updated_at
		FROM follows
		WHERE follows.follower_id = @follower_id AND follows.following_id = @following_id
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"follower_id":  followerID,
		"following_id": followingID,
	})
	if err != nil {
		return out, fmt.Errorf("sql select follow: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Follow])
	if db.IsNotFoundError(err) {
		return out, ErrFollowNotFound
	}

	if err != nil {
		return out, fmt.Errorf("sql collect follow: %w", err)
	}

	return out, nil
}

// CreateFollow inserts a fresh relationship row. Re-following after a
// cancel always creates a new row, never revives the old id.
func (c *Cockroach) CreateFollow(ctx context.Context, followerID, followingID string, status types.FollowStatus) (types.Follow, error) {
	var out types.Follow
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		const q = `
			INSERT INTO follows (id, follower_id, following_id, status)
			VALUES (@follow_id, @follower_id, @following_id, @status)
			RETURNING follows.id, follows.follower_id, follows.following_id, follows.status, follows.created_at, follows.updated_at
		`

		rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
			"follow_id":    id.Generate(),
			"follower_id":  followerID,
			"following_id": followingID,
			"status":       status,
		})
		if err != nil {
			return fmt.Errorf("sql insert follow: %w", err)
		}

		out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Follow])
		if isUniqueViolation(err) {
			return errs.ConflictError("already following")
		}

		if err != nil {
			return fmt.Errorf("sql collect inserted follow: %w", err)
		}

		return c.refreshFollowCounts(ctx, followerID, followingID)
	})
}

// AcceptFollow promotes pending→accepted. The only status mutation a
// relationship row ever sees.
func (c *Cockroach) AcceptFollow(ctx context.Context, followerID, followingID string) error {
	return c.db.RunTx(ctx, func(ctx context.Context) error {
		res, err := c.db.Exec(ctx, `
			UPDATE follows
			SET status = @accepted, updated_at = now()
			WHERE follower_id = @follower_id
				AND following_id = @following_id
				AND status = @pending
		`, pgx.StrictNamedArgs{
			"follower_id":  followerID,
			"following_id": followingID,
			"accepted":     types.FollowStatusAccepted,
			"pending":      types.FollowStatusPending,
		})
		if err != nil {
			return fmt.Errorf("sql accept follow: %w", err)
		}

		if res.RowsAffected() == 0 {
			return errs.NotFoundError("follow request not found")
		}

		return c.refreshFollowCounts(ctx, followerID, followingID)
	})
}

// DeleteFollow covers unfollow, cancel-request and reject-request:
// all three return the pair to "no relationship".
func (c *Cockroach) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	return c.db.RunTx(ctx, func(ctx context.Context) error {
		_, err := c.db.Exec(ctx, `
			DELETE FROM follows
			WHERE follower_id = @follower_id AND following_id = @following_id
		`, pgx.StrictNamedArgs{
			"follower_id":  followerID,
			"following_id": followingID,
		})
		if err != nil {
			return fmt.Errorf("sql delete follow: %w", err)
		}

		return c.refreshFollowCounts(ctx, followerID, followingID)
	})
}

// FollowRequests lists incoming pending requests for the user.
func (c *Cockroach) FollowRequests(ctx context.Context, userID string) ([]types.Follow, error) {
	const q = `
		SELECT follows.id, follows.follower_id, follows.following_id, follows.status, follows.created_at, follows.updated_at
		FROM follows
		WHERE follows.following_id = @user_id AND follows.status = @pending
		ORDER BY follows.created_at DESC
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"user_id": userID,
		"pending": types.FollowStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("sql select follow requests: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Follow])
	if err != nil {
		return nil, fmt.Errorf("sql collect follow requests: %w", err)
	}

	return out, nil
}
