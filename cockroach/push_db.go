package cockroach

import (
	"context"
	"fmt"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/jackc/pgx/v5"
)

func (c *Cockroach) CreatePushSubscription(ctx context.Context, in types.RegisterPushSubscription) (types.PushSubscription, error) {
	var out types.PushSubscription

	// Endpoints are unique per browser; re-registering refreshes the
	// keys and reassigns the endpoint to the current user.
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth)
		VALUES (@sub_id, @user_id, @endpoint, @p256dh, @auth)
		ON CONFLICT (endpoint) DO UPDATE
		SET user_id = excluded.user_id, p256dh = excluded.p256dh, auth = excluded.auth
		RETURNING push_subscriptions.id,
			push_subscriptions.user_id,
			push_subscriptions.endpoint,
			push_subscriptions.p256dh,
			push_subscriptions.auth,
			push_subscriptions.created_at
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"sub_id":   id.Generate(),
		"user_id":  in.LoggedInUserID(),
		"endpoint": in.Endpoint,
		"p256dh":   in.P256dh,
		"auth":     in.Auth,
	})
	if err != nil {
		return out, fmt.Errorf("sql upsert push subscription: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.PushSubscription])
	if err != nil {
		return out, fmt.Errorf("sql collect upserted push subscription: %w", err)
	}

	return out, nil
}

func (c *Cockroach) PushSubscriptions(ctx context.Context, userID string) ([]types.PushSubscription, error) {
	query := `
		SELECT push_subscriptions.id,
			push_subscriptions.user_id,
			push_subscriptions.endpoint,
			push_subscriptions.p256dh,
			push_subscriptions.auth,
			push_subscriptions.created_at
		FROM push_subscriptions
		WHERE push_subscriptions.user_id = $1
	`

	rows, err := c.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sql select push subscriptions: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.PushSubscription])
	if err != nil {
		return nil, fmt.Errorf("sql collect push subscriptions: %w", err)
	}

	return out, nil
}

// DeletePushSubscription removes a dead endpoint, typically after the
// push service reports the subscription gone.
func (c *Cockroach) DeletePushSubscription(ctx context.Context, endpoint string) error {
	_, err := c.db.Exec(ctx, `DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint)
	if err != nil {
		return fmt.Errorf("sql delete push subscription: %w", err)
	}

	return nil
}
