package types

import (
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/validator"
)

// MediaPlaceholderContent is stored as the message body
// when a message carries an attachment and no text.
const MediaPlaceholderContent = "Sent an image"

const maxMessageLength = 1000

// Message is immutable once created except for the read receipt:
// is_read flips false→true exactly once, recipient-side, and read_at
// is set in the same write.
type Message struct {
	ID            string     `db:"id" json:"id"`
	SenderID      string     `db:"sender_id" json:"senderID"`
	RecipientID   string     `db:"recipient_id" json:"recipientID"`
	Content       string     `db:"content" json:"content"`
	MediaURL      *string    `db:"media_url" json:"mediaURL"`
	WorkoutID     *string    `db:"workout_id" json:"workoutID"`
	AchievementID *string    `db:"achievement_id" json:"achievementID"`
	IsRead        bool       `db:"is_read" json:"isRead"`
	ReadAt        *time.Time `db:"read_at" json:"readAt"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

// CounterpartOf returns the other participant relative to the viewer.
func (m Message) CounterpartOf(viewerID string) string {
	if m.SenderID == viewerID {
		return m.RecipientID
	}
	return m.SenderID
}

func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

type SendMessage struct {
	RecipientID   string
	Content       string
	WorkoutID     *string
	AchievementID *string
	Media         io.ReadSeeker

	loggedInUserID string
}

func (in *SendMessage) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in SendMessage) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *SendMessage) Validate() error {
	v := validator.New()

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" && in.Media != nil {
		in.Content = MediaPlaceholderContent
	}

	if in.RecipientID == "" {
		v.AddError("RecipientID", "Recipient ID is required")
	}
	if !id.Valid(in.RecipientID) {
		v.AddError("RecipientID", "Recipient ID is invalid")
	}

	if in.Content == "" {
		v.AddError("Content", "Content is required")
	}
	if utf8.RuneCountInString(in.Content) > maxMessageLength {
		v.AddError("Content", "Content must be at most 1000 characters")
	}

	if in.WorkoutID != nil && !id.Valid(*in.WorkoutID) {
		v.AddError("WorkoutID", "Workout ID is invalid")
	}
	if in.AchievementID != nil && !id.Valid(*in.AchievementID) {
		v.AddError("AchievementID", "Achievement ID is invalid")
	}

	return v.AsError()
}

// RetrieveThread fetches the full bidirectional history with a
// counterpart, oldest first, marking inbound unread rows as read.
type RetrieveThread struct {
	CounterpartID string

	loggedInUserID string
}

func (in *RetrieveThread) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in RetrieveThread) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *RetrieveThread) Validate() error {
	v := validator.New()

	if in.CounterpartID == "" {
		v.AddError("CounterpartID", "Counterpart ID is required")
	}
	if !id.Valid(in.CounterpartID) {
		v.AddError("CounterpartID", "Counterpart ID is invalid")
	}

	return v.AsError()
}

type MarkThreadRead struct {
	CounterpartID string

	loggedInUserID string
}

func (in *MarkThreadRead) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in MarkThreadRead) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *MarkThreadRead) Validate() error {
	v := validator.New()

	if in.CounterpartID == "" {
		v.AddError("CounterpartID", "Counterpart ID is required")
	}
	if !id.Valid(in.CounterpartID) {
		v.AddError("CounterpartID", "Counterpart ID is invalid")
	}

	return v.AsError()
}
