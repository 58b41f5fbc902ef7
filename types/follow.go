package types

import (
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/validator"
)

type FollowStatus string

const (
	FollowStatusPending  FollowStatus = "pending"
	FollowStatusAccepted FollowStatus = "accepted"
)

// Follow holds at most one row per (follower, following) pair.
// Rejection is deletion; no row persists in a rejected state.
type Follow struct {
	ID          string       `db:"id" json:"id"`
	FollowerID  string       `db:"follower_id" json:"followerID"`
	FollowingID string       `db:"following_id" json:"followingID"`
	Status      FollowStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

type FollowUser struct {
	TargetID string

	loggedInUserID string
}

func (in *FollowUser) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in FollowUser) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *FollowUser) Validate() error {
	return validateTargetID(in.TargetID)
}

type UnfollowUser struct {
	TargetID string

	loggedInUserID string
}

func (in *UnfollowUser) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in UnfollowUser) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *UnfollowUser) Validate() error {
	return validateTargetID(in.TargetID)
}

// AcceptFollowRequest promotes an incoming pending request to
// accepted. Only the request's target may do this.
type AcceptFollowRequest struct {
	FollowerID string

	loggedInUserID string
}

func (in *AcceptFollowRequest) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in AcceptFollowRequest) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *AcceptFollowRequest) Validate() error {
	return validateTargetID(in.FollowerID)
}

// RejectFollowRequest deletes an incoming pending request.
type RejectFollowRequest struct {
	FollowerID string

	loggedInUserID string
}

func (in *RejectFollowRequest) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in RejectFollowRequest) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *RejectFollowRequest) Validate() error {
	return validateTargetID(in.FollowerID)
}

func validateTargetID(targetID string) error {
	v := validator.New()

	if targetID == "" {
		v.AddError("TargetID", "Target user ID is required")
	}
	if !id.Valid(targetID) {
		v.AddError("TargetID", "Target user ID is invalid")
	}

	return v.AsError()
}
