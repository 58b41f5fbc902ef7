package cockroach

import (
	"context"
	"fmt"
	"strings"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/jackc/pgx/v5"
	"github.com/nicolasparada/go-db"
	"github.com/nicolasparada/go-errs"
)

var progressPostColumns = [...]string{
	"progress_posts.id",
	"progress_posts.user_id",
	"progress_posts.content",
	"progress_posts.photo_url",
	"progress_posts.premium_only",
	"progress_posts.reactions_count",
	"progress_posts.comments_count",
	"progress_posts.created_at",
}

var progressPostColumnsStr = strings.Join(progressPostColumns[:], ", ")

func (c *Cockroach) CreateProgressPost(ctx context.Context, in types.CreateProgressPost, photoURL *string) (types.ProgressPost, error) {
	var out types.ProgressPost

	query := `
		INSERT INTO progress_posts (id, user_id, content, photo_url, premium_only)
		VALUES (@post_id, @user_id, @content, @photo_url, @premium_only)
		RETURNING ` + progressPostColumnsStr + `
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"post_id":      id.Generate(),
		"user_id":      in.LoggedInUserID(),
		"content":      in.Content,
		"photo_url":    photoURL,
		"premium_only": in.PremiumOnly,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert progress post: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.ProgressPost])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted progress post: %w", err)
	}

	return out, nil
}

// ProgressPosts hides premium-only updates from viewers without a
// subscription to the author. The author always sees their own.
func (c *Cockroach) ProgressPosts(ctx context.Context, in types.ListProgressPosts) (types.Page[types.ProgressPost], error) {
	var out types.Page[types.ProgressPost]

	query := `
		SELECT ` + progressPostColumnsStr + `,
			to_json(profiles) AS user
		FROM progress_posts
		INNER JOIN profiles ON profiles.id = progress_posts.user_id
		WHERE (
			NOT progress_posts.premium_only
			OR progress_posts.user_id = @viewer_id
			OR EXISTS (
				SELECT 1 FROM progress_subscriptions
				WHERE progress_subscriptions.subscriber_id = @viewer_id
					AND progress_subscriptions.creator_id = progress_posts.user_id
			)
		)
	`
	args := pgx.NamedArgs{
		"viewer_id": in.LoggedInUserID(),
	}

	if in.CreatorID != nil {
		query += ` AND progress_posts.user_id = @creator_id`
		args["creator_id"] = *in.CreatorID
	}

	pageArgs, err := ParsePageArgs(in.PageArgs)
	if err != nil {
		return out, err
	}

	query = addPageFilter(query, "progress_posts", "created_at", args, pageArgs)
	query = addPageOrder(query, "progress_posts", "created_at", pageArgs)
	query = addPageLimit(query, args, pageArgs)

	rows, err := c.db.Query(ctx, query, args)
	if err != nil {
		return out, fmt.Errorf("sql select progress posts: %w", err)
	}

	out.Items, err = pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.ProgressPost])
	if err != nil {
		return out, fmt.Errorf("sql collect progress posts: %w", err)
	}

	if err := applyPageInfo(&out, pageArgs, func(p types.ProgressPost) Cursor {
		return Cursor{ID: p.ID, CreatedAt: p.CreatedAt}
	}); err != nil {
		return out, err
	}

	return out, nil
}

// CanViewProgressPost reports whether the viewer passes the premium
// gate for a single progress post.
func (c *Cockroach) CanViewProgressPost(ctx context.Context, viewerID, progressPostID string) (bool, error) {
	var ok bool
	err := c.db.QueryRow(ctx, `
		SELECT (
			NOT progress_posts.premium_only
			OR progress_posts.user_id = @viewer_id
			OR EXISTS (
				SELECT 1 FROM progress_subscriptions
				WHERE progress_subscriptions.subscriber_id = @viewer_id
					AND progress_subscriptions.creator_id = progress_posts.user_id
			)
		)
		FROM progress_posts
		WHERE progress_posts.id = @post_id
	`, pgx.StrictNamedArgs{
		"viewer_id": viewerID,
		"post_id":   progressPostID,
	}).Scan(&ok)
	if db.IsNotFoundError(err) {
		return false, errs.NotFoundError("progress post not found")
	}

	if err != nil {
		return false, fmt.Errorf("sql check progress post visibility: %w", err)
	}

	return ok, nil
}

func (c *Cockroach) ToggleProgressReaction(ctx context.Context, in types.ToggleProgressReaction) (*string, error) {
	var out *string
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		var current *string
		err := c.db.QueryRow(ctx, `
			SELECT emoji FROM progress_reactions
			WHERE progress_post_id = @post_id AND user_id = @user_id
		`, pgx.StrictNamedArgs{
			"post_id": in.ProgressPostID,
			"user_id": in.LoggedInUserID(),
		}).Scan(&current)
		if err != nil && !db.IsNotFoundError(err) {
			return fmt.Errorf("sql select current progress reaction: %w", err)
		}

		if current != nil && *current == in.Emoji {
			_, err := c.db.Exec(ctx, `
				DELETE FROM progress_reactions
				WHERE progress_post_id = @post_id AND user_id = @user_id
			`, pgx.StrictNamedArgs{
				"post_id": in.ProgressPostID,
				"user_id": in.LoggedInUserID(),
			})
			if err != nil {
				return fmt.Errorf("sql delete progress reaction: %w", err)
			}

			out = nil
			return c.refreshProgressPostCounts(ctx, in.ProgressPostID)
		}

		_, err = c.db.Exec(ctx, `
			UPSERT INTO progress_reactions (progress_post_id, user_id, emoji)
			VALUES (@post_id, @user_id, @emoji)
		`, pgx.StrictNamedArgs{
			"post_id": in.ProgressPostID,
			"user_id": in.LoggedInUserID(),
			"emoji":   in.Emoji,
		})
		if err != nil {
			return fmt.Errorf("sql upsert progress reaction: %w", err)
		}

		emoji := in.Emoji
		out = &emoji
		return c.refreshProgressPostCounts(ctx, in.ProgressPostID)
	})
}

func (c *Cockroach) CreateProgressComment(ctx context.Context, in types.CreateProgressComment) (types.Comment, error) {
	var out types.Comment
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO progress_comments (id, progress_post_id, user_id, content)
			VALUES (@comment_id, @post_id, @user_id, @content)
			RETURNING progress_comments.id,
				progress_comments.progress_post_id AS post_id,
				progress_comments.user_id,
				progress_comments.content,
				progress_comments.created_at
		`

		rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
			"comment_id": id.Generate(),
			"post_id":    in.ProgressPostID,
			"user_id":    in.LoggedInUserID(),
			"content":    in.Content,
		})
		if err != nil {
			return fmt.Errorf("sql insert progress comment: %w", err)
		}

		out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Comment])
		if err != nil {
			return fmt.Errorf("sql collect inserted progress comment: %w", err)
		}

		return c.refreshProgressPostCounts(ctx, in.ProgressPostID)
	})
}

func (c *Cockroach) CreateProgressSubscription(ctx context.Context, in types.SubscribeToCreator) (types.ProgressSubscription, error) {
	var out types.ProgressSubscription

	query := `
		INSERT INTO progress_subscriptions (id, subscriber_id, creator_id)
		VALUES (@sub_id, @subscriber_id, @creator_id)
		RETURNING progress_subscriptions.id,
			progress_subscriptions.subscriber_id,
			progress_subscriptions.creator_id,
			progress_subscriptions.created_at
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"sub_id":        id.Generate(),
		"subscriber_id": in.LoggedInUserID(),
		"creator_id":    in.CreatorID,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert progress subscription: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.ProgressSubscription])
	if isUniqueViolation(err) {
		return out, errs.ConflictError("already subscribed")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect inserted progress subscription: %w", err)
	}

	return out, nil
}

func (c *Cockroach) refreshProgressPostCounts(ctx context.Context, progressPostID string) error {
	_, err := c.db.Exec(ctx, `
		UPDATE progress_posts
		SET reactions_count = (SELECT COUNT(*) FROM progress_reactions WHERE progress_post_id = @post_id),
			comments_count = (SELECT COUNT(*) FROM progress_comments WHERE progress_post_id = @post_id)
		WHERE id = @post_id
	`, pgx.StrictNamedArgs{
		"post_id": progressPostID,
	})
	if err != nil {
		return fmt.Errorf("sql refresh progress post counts: %w", err)
	}

	return nil
}
