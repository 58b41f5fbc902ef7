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

var postColumns = [...]string{
	"posts.id",
	"posts.user_id",
	"posts.content",
	"posts.media_url",
	"posts.workout_id",
	"posts.reactions_count",
	"posts.comments_count",
	"posts.created_at",
	"posts.updated_at",
}

var postColumnsStr = strings.Join(postColumns[:], ", ")

func (c *Cockroach) CreatePost(ctx context.Context, in types.CreatePost, mediaURL *string) (types.Post, error) {
	var out types.Post

	query := `
		INSERT INTO posts (id, user_id, content, media_url, workout_id)
		VALUES (@post_id, @user_id, @content, @media_url, @workout_id)
		RETURNING ` + postColumnsStr + `
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"post_id":    id.Generate(),
		"user_id":    in.LoggedInUserID(),
		"content":    in.Content,
		"media_url":  mediaURL,
		"workout_id": in.WorkoutID,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert post: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Post])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted post: %w", err)
	}

	return out, nil
}

// Posts lists the viewer-visible feed: content from public profiles,
// the viewer's own posts and accepted followees. Single-author listings
// go through the same visibility filter.
func (c *Cockroach) Posts(ctx context.Context, in types.ListPosts) (types.Page[types.Post], error) {
	var out types.Page[types.Post]

	query := `
		SELECT ` + postColumnsStr + `,
			to_json(profiles) AS user,
			(
				SELECT reactions.emoji FROM reactions
				WHERE reactions.post_id = posts.id AND reactions.user_id = @viewer_id
			) AS viewer_reaction
		FROM posts
		INNER JOIN profiles ON profiles.id = posts.user_id
		WHERE (
			NOT profiles.is_profile_private
			OR posts.user_id = @viewer_id
			OR EXISTS (
				SELECT 1 FROM follows
				WHERE follows.follower_id = @viewer_id
					AND follows.following_id = posts.user_id
					AND follows.status = 'accepted'
			)
		)
	`
	args := pgx.NamedArgs{
		"viewer_id": in.LoggedInUserID(),
	}

	if in.UserID != nil {
		query += ` AND posts.user_id = @author_id`
		args["author_id"] = *in.UserID
	}

	pageArgs, err := ParsePageArgs(in.PageArgs)
	if err != nil {
		return out, err
	}

	query = addPageFilter(query, "posts", "created_at", args, pageArgs)
	query = addPageOrder(query, "posts", "created_at", pageArgs)
	query = addPageLimit(query, args, pageArgs)

	rows, err := c.db.Query(ctx, query, args)
	if err != nil {
		return out, fmt.Errorf("sql select posts: %w", err)
	}

	out.Items, err = pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Post])
	if err != nil {
		return out, fmt.Errorf("sql collect posts: %w", err)
	}

	if err := applyPageInfo(&out, pageArgs, func(p types.Post) Cursor {
		return Cursor{ID: p.ID, CreatedAt: p.CreatedAt}
	}); err != nil {
		return out, err
	}

	return out, nil
}

// ToggleReaction sets, swaps or removes the viewer's reaction and
// returns the resulting emoji (nil when removed).
func (c *Cockroach) ToggleReaction(ctx context.Context, in types.ToggleReaction) (*string, error) {
	var out *string
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		var current *string
		err := c.db.QueryRow(ctx, `
			SELECT emoji FROM reactions
			WHERE post_id = @post_id AND user_id = @user_id
		`, pgx.StrictNamedArgs{
			"post_id": in.PostID,
			"user_id": in.LoggedInUserID(),
		}).Scan(&current)
		if err != nil && !db.IsNotFoundError(err) {
			return fmt.Errorf("sql select current reaction: %w", err)
		}

		if current != nil && *current == in.Emoji {
			_, err := c.db.Exec(ctx, `
				DELETE FROM reactions
				WHERE post_id = @post_id AND user_id = @user_id
			`, pgx.StrictNamedArgs{
				"post_id": in.PostID,
				"user_id": in.LoggedInUserID(),
			})
			if err != nil {
				return fmt.Errorf("sql delete reaction: %w", err)
			}

			out = nil
			return c.refreshPostCounts(ctx, in.PostID)
		}

		_, err = c.db.Exec(ctx, `
			UPSERT INTO reactions (post_id, user_id, emoji)
			VALUES (@post_id, @user_id, @emoji)
		`, pgx.StrictNamedArgs{
			"post_id": in.PostID,
			"user_id": in.LoggedInUserID(),
			"emoji":   in.Emoji,
		})
		if err != nil {
			return fmt.Errorf("sql upsert reaction: %w", err)
		}

		emoji := in.Emoji
		out = &emoji
		return c.refreshPostCounts(ctx, in.PostID)
	})
}

func (c *Cockroach) CreateComment(ctx context.Context, in types.CreateComment) (types.Comment, error) {
	var out types.Comment
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO comments (id, post_id, user_id, content)
			VALUES (@comment_id, @post_id, @user_id, @content)
			RETURNING comments.id, comments.post_id, comments.user_id, comments.content, comments.created_at
		`

		rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
			"comment_id": id.Generate(),
			"post_id":    in.PostID,
			"user_id":    in.LoggedInUserID(),
			"content":    in.Content,
		})
		if err != nil {
			return fmt.Errorf("sql insert comment: %w", err)
		}

		out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Comment])
		if err != nil {
			return fmt.Errorf("sql collect inserted comment: %w", err)
		}

		return c.refreshPostCounts(ctx, in.PostID)
	})
}

func (c *Cockroach) Comments(ctx context.Context, in types.ListComments) (types.Page[types.Comment], error) {
	var out types.Page[types.Comment]

	query := `
		SELECT comments.id, comments.post_id, comments.user_id, comments.content, comments.created_at,
			to_json(profiles) AS user
		FROM comments
		INNER JOIN profiles ON profiles.id = comments.user_id
		WHERE comments.post_id = @post_id
	`
	args := pgx.NamedArgs{
		"post_id": in.PostID,
	}

	pageArgs, err := ParsePageArgs(in.PageArgs)
	if err != nil {
		return out, err
	}

	query = addPageFilter(query, "comments", "created_at", args, pageArgs)
	query = addPageOrder(query, "comments", "created_at", pageArgs)
	query = addPageLimit(query, args, pageArgs)

	rows, err := c.db.Query(ctx, query, args)
	if err != nil {
		return out, fmt.Errorf("sql select comments: %w", err)
	}

	out.Items, err = pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Comment])
	if err != nil {
		return out, fmt.Errorf("sql collect comments: %w", err)
	}

	if err := applyPageInfo(&out, pageArgs, func(cm types.Comment) Cursor {
		return Cursor{ID: cm.ID, CreatedAt: cm.CreatedAt}
	}); err != nil {
		return out, err
	}

	return out, nil
}

func (c *Cockroach) PostExists(ctx context.Context, postID string) error {
	var exists bool
	err := c.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)
	`, postID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sql check post exists: %w", err)
	}

	if !exists {
		return errs.NotFoundError("post not found")
	}

	return nil
}

func (c *Cockroach) refreshPostCounts(ctx context.Context, postID string) error {
	_, err := c.db.Exec(ctx, `
		UPDATE posts
		SET reactions_count = (SELECT COUNT(*) FROM reactions WHERE post_id = @post_id),
			comments_count = (SELECT COUNT(*) FROM comments WHERE post_id = @post_id),
			updated_at = now()
		WHERE id = @post_id
	`, pgx.StrictNamedArgs{
		"post_id": postID,
	})
	if err != nil {
		return fmt.Errorf("sql refresh post counts: %w", err)
	}

	return nil
}
