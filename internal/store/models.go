package store

import (
	"time"

	"huddle/api/internal/rbac"
)

// ReactThumbsUp is the only reaction kind currently supported.
const ReactThumbsUp = 1

// User is an account record. Users are created at registration and never
// deleted; the session registry, not this record, tracks the active token.
type User struct {
	ID              int64
	Email           string
	PasswordHash    string
	NameFirst       string
	NameLast        string
	Handle          string
	Permission      rbac.Permission
	ProfileImageURL string
	ResetCode       string
}

// Channel holds its member sets and its message log. Members and Owners keep
// insertion order: the oldest remaining member is the one promoted when the
// owner set empties. A channel with no members does not exist.
type Channel struct {
	ID      int64
	Name    string
	Public  bool
	Owners  []int64
	Members []int64

	Messages []*Message

	// Standup state: the window deadline and the accumulated note buffer.
	StandupFinish time.Time
	StandupNotes  string
}

// Message ids come from a global counter shared across channels and are never
// reused, even after removal.
type Message struct {
	ID        int64
	ChannelID int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time
	Pinned    bool
	Reactors  []int64
}

// UserProfile is the public view of a user.
type UserProfile struct {
	ID              int64  `json:"u_id"`
	Email           string `json:"email"`
	NameFirst       string `json:"name_first"`
	NameLast        string `json:"name_last"`
	Handle          string `json:"handle_str"`
	ProfileImageURL string `json:"profile_img_url"`
}

// MemberProfile is the member entry carried by channel details.
type MemberProfile struct {
	ID              int64  `json:"u_id"`
	NameFirst       string `json:"name_first"`
	NameLast        string `json:"name_last"`
	ProfileImageURL string `json:"profile_img_url"`
}

// ChannelSummary is a channel listing entry, in creation order.
type ChannelSummary struct {
	ID   int64  `json:"channel_id"`
	Name string `json:"name"`
}

// ChannelDetails is the membership view of a single channel.
type ChannelDetails struct {
	Name         string          `json:"name"`
	OwnerMembers []MemberProfile `json:"owner_members"`
	AllMembers   []MemberProfile `json:"all_members"`
}

// ReactView is a message's reaction slot annotated for the requesting user.
type ReactView struct {
	ReactID           int     `json:"react_id"`
	UserIDs           []int64 `json:"u_ids"`
	IsThisUserReacted bool    `json:"is_this_user_reacted"`
}

// MessageView is a message as returned to callers.
type MessageView struct {
	ID        int64       `json:"message_id"`
	ChannelID int64       `json:"channel_id"`
	AuthorID  int64       `json:"u_id"`
	Text      string      `json:"message"`
	CreatedAt time.Time   `json:"time_created"`
	Pinned    bool        `json:"is_pinned"`
	Reacts    []ReactView `json:"reacts"`
}

// MessagePage is one page of a reverse-chronological read. End is -1 when no
// further page exists.
type MessagePage struct {
	Messages []MessageView `json:"messages"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
}
