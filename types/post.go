package types

import (
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/validator"
)

type Post struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"userID"`
	Content        string    `db:"content" json:"content"`
	MediaURL       *string   `db:"media_url" json:"mediaURL"`
	WorkoutID      *string   `db:"workout_id" json:"workoutID"`
	ReactionsCount int       `db:"reactions_count" json:"reactionsCount"`
	CommentsCount  int       `db:"comments_count" json:"commentsCount"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`

	User *Profile `db:"user,omitempty" json:"user,omitempty"`
	// ViewerReaction is the viewer's current reaction emoji, if any.
	ViewerReaction *string `db:"viewer_reaction" json:"viewerReaction"`
}

type Reaction struct {
	PostID    string    `db:"post_id" json:"postID"`
	UserID    string    `db:"user_id" json:"userID"`
	Emoji     string    `db:"emoji" json:"emoji"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Comment struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"postID"`
	UserID    string    `db:"user_id" json:"userID"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	User *Profile `db:"user,omitempty" json:"user,omitempty"`
}

type CreatePost struct {
	Content   string
	WorkoutID *string
	Media     io.ReadSeeker

	loggedInUserID string
}

func (in *CreatePost) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in CreatePost) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *CreatePost) Validate() error {
	v := validator.New()

	in.Content = strings.TrimSpace(in.Content)

	if in.Content == "" && in.Media == nil {
		v.AddError("Content", "Content is required")
	}
	if utf8.RuneCountInString(in.Content) > 2000 {
		v.AddError("Content", "Content must be at most 2000 characters")
	}
	if in.WorkoutID != nil && !id.Valid(*in.WorkoutID) {
		v.AddError("WorkoutID", "Workout ID is invalid")
	}

	return v.AsError()
}

type ListPosts struct {
	// UserID limits the feed to a single author when set.
	UserID   *string
	PageArgs PageArgs

	loggedInUserID string
}

func (in *ListPosts) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in ListPosts) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *ListPosts) Validate() error {
	v := validator.New()

	if in.UserID != nil && !id.Valid(*in.UserID) {
		v.AddError("UserID", "User ID is invalid")
	}
	if err := in.PageArgs.Validate(); err != nil {
		v.AddError("PageArgs", err.Error())
	}

	return v.AsError()
}

type ToggleReaction struct {
	PostID string
	Emoji  string

	loggedInUserID string
}

func (in *ToggleReaction) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in ToggleReaction) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *ToggleReaction) Validate() error {
	v := validator.New()

	if in.PostID == "" {
		v.AddError("PostID", "Post ID is required")
	}
	if !id.Valid(in.PostID) {
		v.AddError("PostID", "Post ID is invalid")
	}
	if in.Emoji == "" {
		v.AddError("Emoji", "Emoji is required")
	}

	return v.AsError()
}

type CreateComment struct {
	PostID  string
	Content string

	loggedInUserID string
}

func (in *CreateComment) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in CreateComment) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *CreateComment) Validate() error {
	v := validator.New()

	in.Content = strings.TrimSpace(in.Content)

	if in.PostID == "" {
		v.AddError("PostID", "Post ID is required")
	}
	if !id.Valid(in.PostID) {
		v.AddError("PostID", "Post ID is invalid")
	}
	if in.Content == "" {
		v.AddError("Content", "Content is required")
	}
	if utf8.RuneCountInString(in.Content) > 1000 {
		v.AddError("Content", "Content must be at most 1000 characters")
	}

	return v.AsError()
}

type ListComments struct {
	PostID   string
	PageArgs PageArgs

	loggedInUserID string
}

func (in *ListComments) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in ListComments) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *ListComments) Validate() error {
	v := validator.New()

	if in.PostID == "" {
		v.AddError("PostID", "Post ID is required")
	}
	if !id.Valid(in.PostID) {
		v.AddError("PostID", "Post ID is invalid")
	}
	if err := in.PageArgs.Validate(); err != nil {
		v.AddError("PageArgs", err.Error())
	}

	return v.AsError()
}
