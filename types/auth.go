package types

import (
	"strings"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/validator"
)

type TokenOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthOutput struct {
	Profile   Profile   `json:"profile"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Login struct {
	Username string `json:"username"`
}

func (in *Login) Validate() error {
	v := validator.New()

	in.Username = strings.TrimSpace(in.Username)

	if in.Username == "" {
		v.AddError("Username", "Username is required")
	}
	if !ValidUsername(in.Username) {
		v.AddError("Username", "Username is invalid")
	}

	return v.AsError()
}
