package types

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/ptr"
	"github.com/Roberadesissai/workout-tracker-sub000/validator"
	"github.com/hako/durafmt"
)

type Profile struct {
	ID               string    `db:"id" json:"id"`
	Username         string    `db:"username" json:"username"`
	DisplayName      *string   `db:"display_name" json:"displayName"`
	Avatar           *string   `db:"avatar" json:"avatar"`
	IsProfilePrivate bool      `db:"is_profile_private" json:"isProfilePrivate"`
	IsPremium        bool      `db:"is_premium" json:"isPremium"`
	IsOnline         bool      `db:"is_online" json:"isOnline"`
	LastSeen         time.Time `db:"last_seen" json:"lastSeen"`
	FollowersCount   int       `db:"followers_count" json:"followersCount"`
	FollowingCount   int       `db:"following_count" json:"followingCount"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`

	Relationship *ProfileRelationship `db:"relationship,omitempty" json:"relationship,omitempty"`
}

// Name is the display name preference: the custom display name
// when set, the username otherwise.
func (p Profile) Name() string {
	return ptr.Or(p.DisplayName, p.Username)
}

// SetAvatarURL turns the stored object path into a public URL.
func (p *Profile) SetAvatarURL(prefix string) {
	if p.Avatar == nil || strings.HasPrefix(*p.Avatar, prefix) {
		return
	}

	url := prefix + *p.Avatar
	p.Avatar = &url
}

// LastSeenText renders presence for display. Online profiles
// report "online"; everything else is a humanized delta.
func (p Profile) LastSeenText(now time.Time) string {
	if p.IsOnline {
		return "online"
	}

	if p.LastSeen.IsZero() {
		return "offline"
	}

	d := durafmt.Parse(now.Sub(p.LastSeen).Truncate(time.Minute)).LimitFirstN(1)
	return "last seen " + d.String() + " ago"
}

type ProfileRelationship struct {
	IsMe            bool `json:"isMe"`
	FollowedByYou   bool `json:"followedByYou"`
	FollowsYou      bool `json:"followsYou"`
	PendingOutgoing bool `json:"pendingOutgoing"`
	PendingIncoming bool `json:"pendingIncoming"`
	BlockedByYou    bool `json:"blockedByYou"`
}

var reUsername = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,17}$`)

func ValidUsername(s string) bool {
	return reUsername.MatchString(s)
}

type CreateProfile struct {
	Username    string
	DisplayName *string
}

func (in *CreateProfile) Validate() error {
	v := validator.New()

	in.Username = strings.TrimSpace(in.Username)

	if in.Username == "" {
		v.AddError("Username", "Username is required")
	}
	if !ValidUsername(in.Username) {
		v.AddError("Username", "Username is invalid")
	}
	if in.DisplayName != nil && utf8.RuneCountInString(*in.DisplayName) > 50 {
		v.AddError("DisplayName", "Display name must be at most 50 characters")
	}

	return v.AsError()
}

type RetrieveProfile struct {
	ProfileID string

	loggedInUserID string
}

func (in *RetrieveProfile) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in RetrieveProfile) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *RetrieveProfile) Validate() error {
	v := validator.New()

	if in.ProfileID == "" {
		v.AddError("ProfileID", "Profile ID is required")
	}
	if !id.Valid(in.ProfileID) {
		v.AddError("ProfileID", "Profile ID is invalid")
	}

	return v.AsError()
}

type RetrieveProfileFromUsername struct {
	Username string

	loggedInUserID string
}

func (in *RetrieveProfileFromUsername) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in RetrieveProfileFromUsername) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *RetrieveProfileFromUsername) Validate() error {
	v := validator.New()

	if in.Username == "" {
		v.AddError("Username", "Username is required")
	}
	if !ValidUsername(in.Username) {
		v.AddError("Username", "Username is invalid")
	}

	return v.AsError()
}

type UpdateProfile struct {
	DisplayName      *string
	IsProfilePrivate *bool
	IsPremium        *bool

	loggedInUserID string
}

func (in *UpdateProfile) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in UpdateProfile) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *UpdateProfile) Validate() error {
	v := validator.New()

	if in.DisplayName != nil {
		trimmed := strings.TrimSpace(*in.DisplayName)
		in.DisplayName = &trimmed
		if utf8.RuneCountInString(trimmed) > 50 {
			v.AddError("DisplayName", "Display name must be at most 50 characters")
		}
	}

	return v.AsError()
}

type UpdateUserAvatar struct {
	UserID string
	Avatar Attachment
}
