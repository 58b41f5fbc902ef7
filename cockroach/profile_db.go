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

var profileColumns = [...]string{
	"profiles.id",
	"profiles.username",
	"profiles.display_name",
	"profiles.avatar",
	"profiles.is_profile_private",
	"profiles.is_premium",
	"profiles.is_online",
	"profiles.last_seen",
	"profiles.followers_count",
	"profiles.following_count",
	"profiles.created_at",
	"profiles.updated_at",
}

var profileColumnsStr = strings.Join(profileColumns[:], ", ")

const profileRelationshipSQL = `
	CASE WHEN @logged_in_user_id::VARCHAR IS NOT NULL THEN
		JSON_BUILD_OBJECT(
			'isMe', profiles.id = @logged_in_user_id,
			'followedByYou', EXISTS(SELECT 1 FROM follows WHERE follower_id = @logged_in_user_id AND following_id = profiles.id AND status = 'accepted'),
			'followsYou', EXISTS(SELECT 1 FROM follows WHERE follower_id = profiles.id AND following_id = @logged_in_user_id AND status = 'accepted'),
			'pendingOutgoing', EXISTS(SELECT 1 FROM follows WHERE follower_id = @logged_in_user_id AND following_id = profiles.id AND status = 'pending'),
			'pendingIncoming', EXISTS(SELECT 1 FROM follows WHERE follower_id = profiles.id AND following_id = @logged_in_user_id AND status = 'pending'),
			'blockedByYou', EXISTS(SELECT 1 FROM blocked_users WHERE blocker_id = @logged_in_user_id AND blocked_id = profiles.id)
		)
	ELSE
		JSON_BUILD_OBJECT(
			'isMe', false,
			'followedByYou', false,
			'followsYou', false,
			'pendingOutgoing', false,
			'pendingIncoming', false,
			'blockedByYou', false
		)
	END AS relationship
`

func (c *Cockroach) CreateProfile(ctx context.Context, in types.CreateProfile) (types.Profile, error) {
	var out types.Profile

	query := `
		INSERT INTO profiles (id, username, display_name)
		VALUES (@profile_id, @username, @display_name)
		RETURNING ` + profileColumnsStr + `
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"profile_id":   id.Generate(),
		"username":     in.Username,
		"display_name": in.DisplayName,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert profile: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Profile])
	if isUniqueViolation(err) {
		return out, errs.ConflictError("username taken")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect inserted profile: %w", err)
	}

	return out, nil
}

func (c *Cockroach) Profile(ctx context.Context, in types.RetrieveProfile) (types.Profile, error) {
	var out types.Profile

	query := `
		SELECT ` + profileColumnsStr + `, ` + profileRelationshipSQL + `
		FROM profiles
		WHERE profiles.id = @profile_id
	`

	rows, err := c.db.Query(ctx, query, pgx.NamedArgs{
		"profile_id":        in.ProfileID,
		"logged_in_user_id": nullableString(in.LoggedInUserID()),
	})
	if err != nil {
		return out, fmt.Errorf("sql select profile: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Profile])
	if db.IsNotFoundError(err) {
		return out, errs.NotFoundError("profile not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect selected profile: %w", err)
	}

	return out, nil
}

func (c *Cockroach) ProfileFromUsername(ctx context.Context, in types.RetrieveProfileFromUsername) (types.Profile, error) {
	var out types.Profile

	query := `
		SELECT ` + profileColumnsStr + `, ` + profileRelationshipSQL + `
		FROM profiles
		WHERE LOWER(profiles.username) = LOWER(@username)
	`

	rows, err := c.db.Query(ctx, query, pgx.NamedArgs{
		"username":          in.Username,
		"logged_in_user_id": nullableString(in.LoggedInUserID()),
	})
	if err != nil {
		return out, fmt.Errorf("sql select profile by username: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Profile])
	if db.IsNotFoundError(err) {
		return out, errs.NotFoundError("profile not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect selected profile by username: %w", err)
	}

	return out, nil
}

// ProfilesByIDs batch-fetches profiles keyed by id. Missing ids are
// simply absent from the result map.
func (c *Cockroach) ProfilesByIDs(ctx context.Context, ids []string) (map[string]types.Profile, error) {
	out := make(map[string]types.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT ` + profileColumnsStr + `
		FROM profiles
		WHERE profiles.id = ANY(@profile_ids)
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"profile_ids": ids,
	})
	if err != nil {
		return nil, fmt.Errorf("sql select profiles by ids: %w", err)
	}

	profiles, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Profile])
	if err != nil {
		return nil, fmt.Errorf("sql collect profiles by ids: %w", err)
	}

	for _, p := range profiles {
		out[p.ID] = p
	}

	return out, nil
}

func (c *Cockroach) UpdateProfile(ctx context.Context, in types.UpdateProfile) (types.Profile, error) {
	var out types.Profile

	query := `
		UPDATE profiles
		SET display_name = COALESCE(@display_name, display_name),
			is_profile_private = COALESCE(@is_profile_private, is_profile_private),
			is_premium = COALESCE(@is_premium, is_premium),
			updated_at = now()
		WHERE id = @profile_id
		RETURNING ` + profileColumnsStr + `
	`

	rows, err := c.db.Query(ctx, query, pgx.NamedArgs{
		"profile_id":         in.LoggedInUserID(),
		"display_name":       in.DisplayName,
		"is_profile_private": in.IsProfilePrivate,
		"is_premium":         in.IsPremium,
	})
	if err != nil {
		return out, fmt.Errorf("sql update profile: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Profile])
	if db.IsNotFoundError(err) {
		return out, errs.NotFoundError("profile not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect updated profile: %w", err)
	}

	return out, nil
}

func (c *Cockroach) UpdateUserAvatar(ctx context.Context, in types.UpdateUserAvatar) error {
	_, err := c.db.Exec(ctx, `
		UPDATE profiles
		SET avatar = @avatar, updated_at = now()
		WHERE id = @profile_id
	`, pgx.StrictNamedArgs{
		"profile_id": in.UserID,
		"avatar":     in.Avatar.Path,
	})
	if err != nil {
		return fmt.Errorf("sql update profile avatar: %w", err)
	}

	return nil
}

// SetPresence writes the viewer's own presence fields and returns the
// updated row so callers can fan it out to subscribers.
func (c *Cockroach) SetPresence(ctx context.Context, userID string, online bool) (types.Profile, error) {
	var out types.Profile

	query := `
		UPDATE profiles
		SET is_online = @is_online, last_seen = now(), updated_at = now()
		WHERE id = @profile_id
		RETURNING ` + profileColumnsStr + `
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"profile_id": userID,
		"is_online":  online,
	})
	if err != nil {
		return out, fmt.Errorf("sql update presence: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Profile])
	if db.IsNotFoundError(err) {
		return out, errs.NotFoundError("profile not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect updated presence: %w", err)
	}

	return out, nil
}

func (c *Cockroach) refreshFollowCounts(ctx context.Context, userIDs ...string) error {
	for _, userID := range userIDs {
		_, err := c.db.Exec(ctx, `
			UPDATE profiles
			SET followers_count = (SELECT COUNT(*) FROM follows WHERE following_id = @profile_id AND status = 'accepted'),
				following_count = (SELECT COUNT(*) FROM follows WHERE follower_id = @profile_id AND status = 'accepted'),
				updated_at = now()
			WHERE id = @profile_id
		`, pgx.StrictNamedArgs{
			"profile_id": userID,
		})
		if err != nil {
			return fmt.Errorf("sql refresh follow counts: %w", err)
		}
	}

	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
