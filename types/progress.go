package types

import (
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/validator"
)

// ProgressPost shares workout progress with the community.
// Premium-only posts are visible to the author and to users holding
// an active subscription to the author.
type ProgressPost struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"userID"`
	Content        string    `db:"content" json:"content"`
	PhotoURL       *string   `db:"photo_url" json:"photoURL"`
	PremiumOnly    bool      `db:"premium_only" json:"premiumOnly"`
	ReactionsCount int       `db:"reactions_count" json:"reactionsCount"`
	CommentsCount  int       `db:"comments_count" json:"commentsCount"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`

	User *Profile `db:"user,omitempty" json:"user,omitempty"`
}

type ProgressSubscription struct {
	ID           string    `db:"id" json:"id"`
	SubscriberID string    `db:"subscriber_id" json:"subscriberID"`
	CreatorID    string    `db:"creator_id" json:"creatorID"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type CreateProgressPost struct {
	Content     string
	PremiumOnly bool
	Photo       io.ReadSeeker

	loggedInUserID string
}

func (in *CreateProgressPost) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in CreateProgressPost) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *CreateProgressPost) Validate() error {
	v := validator.New()

	in.Content = strings.TrimSpace(in.Content)

	if in.Content == "" && in.Photo == nil {
		v.AddError("Content", "Content is required")
	}
	if utf8.RuneCountInString(in.Content) > 2000 {
		v.AddError("Content", "Content must be at most 2000 characters")
	}

	return v.AsError()
}

type ListProgressPosts struct {
	// CreatorID limits the listing to a single author when set.
	CreatorID *string
	PageArgs  PageArgs

	loggedInUserID string
}

func (in *ListProgressPosts) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in ListProgressPosts) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *ListProgressPosts) Validate() error {
	v := validator.New()

	if in.CreatorID != nil && !id.Valid(*in.CreatorID) {
		v.AddError("CreatorID", "Creator ID is invalid")
	}
	if err := in.PageArgs.Validate(); err != nil {
		v.AddError("PageArgs", err.Error())
	}

	return v.AsError()
}

type ToggleProgressReaction struct {
	ProgressPostID string
	Emoji          string

	loggedInUserID string
}

func (in *ToggleProgressReaction) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in ToggleProgressReaction) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *ToggleProgressReaction) Validate() error {
	v := validator.New()

	if in.ProgressPostID == "" {
		v.AddError("ProgressPostID", "Progress post ID is required")
	}
	if !id.Valid(in.ProgressPostID) {
		v.AddError("ProgressPostID", "Progress post ID is invalid")
	}
	if in.Emoji == "" {
		v.AddError("Emoji", "Emoji is required")
	}

	return v.AsError()
}

type CreateProgressComment struct {
	ProgressPostID string
	Content        string

	loggedInUserID string
}

func (in *CreateProgressComment) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in CreateProgressComment) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *CreateProgressComment) Validate() error {
	v := validator.New()

	in.Content = strings.TrimSpace(in.Content)

	if in.ProgressPostID == "" {
		v.AddError("ProgressPostID", "Progress post ID is required")
	}
	if !id.Valid(in.ProgressPostID) {
		v.AddError("ProgressPostID", "Progress post ID is invalid")
	}
	if in.Content == "" {
		v.AddError("Content", "Content is required")
	}
	if utf8.RuneCountInString(in.Content) > 1000 {
		v.AddError("Content", "Content must be at most 1000 characters")
	}

	return v.AsError()
}

type SubscribeToCreator struct {
	CreatorID string

	loggedInUserID string
}

func (in *SubscribeToCreator) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in SubscribeToCreator) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *SubscribeToCreator) Validate() error {
	return validateTargetID(in.CreatorID)
}
