package types

import "time"

// Block removal of content is handled store-side: creating a block
// also deletes all messages and follows between the pair, both
// directions, in the same transaction.
type Block struct {
	ID        string    `db:"id" json:"id"`
	BlockerID string    `db:"blocker_id" json:"blockerID"`
	BlockedID string    `db:"blocked_id" json:"blockedID"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type BlockUser struct {
	TargetID string

	loggedInUserID string
}

func (in *BlockUser) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in BlockUser) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *BlockUser) Validate() error {
	return validateTargetID(in.TargetID)
}

type UnblockUser struct {
	TargetID string

	loggedInUserID string
}

func (in *UnblockUser) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in UnblockUser) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *UnblockUser) Validate() error {
	return validateTargetID(in.TargetID)
}
