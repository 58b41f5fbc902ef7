package types

import (
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/validator"
)

type PushSubscription struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userID"`
	Endpoint  string    `db:"endpoint" json:"endpoint"`
	P256dh    string    `db:"p256dh" json:"p256dh"`
	Auth      string    `db:"auth" json:"auth"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type RegisterPushSubscription struct {
	Endpoint string
	P256dh   string
	Auth     string

	loggedInUserID string
}

func (in *RegisterPushSubscription) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in RegisterPushSubscription) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *RegisterPushSubscription) Validate() error {
	v := validator.New()

	if in.Endpoint == "" {
		v.AddError("Endpoint", "Endpoint is required")
	}
	if in.P256dh == "" {
		v.AddError("P256dh", "P256dh key is required")
	}
	if in.Auth == "" {
		v.AddError("Auth", "Auth secret is required")
	}

	return v.AsError()
}
