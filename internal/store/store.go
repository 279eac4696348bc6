// Package store owns the shared in-memory dataset: users, channels and
// per-channel message logs, keyed by id with insertion order preserved for
// listings. Every exported method acquires the dataset mutex for its whole
// duration, so each operation is atomic with respect to every other caller,
// request handler and background timer alike.
package store

import (
	"sync"

	apperrors "huddle/api/pkg/errors"
)

// Dataset is the single shared store. Construct with New and pass by
// reference; there is no package-level instance.
type Dataset struct {
	mu sync.Mutex

	users     map[int64]*User
	userOrder []int64

	channels     map[int64]*Channel
	channelOrder []int64

	// messageIndex maps message id to its record for O(1) lookup; the record's
	// ChannelID locates the owning log.
	messageIndex map[int64]*Message

	nextUserID    int64
	nextChannelID int64
	messageSeq    int64
}

func New() *Dataset {
	d := &Dataset{}
	d.resetLocked()
	return d
}

// Reset discards all users, channels, messages and standup state and re-arms
// the id counters. Timers already scheduled against the old contents fire as
// silent no-ops.
func (d *Dataset) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

func (d *Dataset) resetLocked() {
	d.users = make(map[int64]*User)
	d.userOrder = nil
	d.channels = make(map[int64]*Channel)
	d.channelOrder = nil
	d.messageIndex = make(map[int64]*Message)
	d.nextUserID = 0
	d.nextChannelID = 0
	d.messageSeq = 0
}

// guard helpers, callers hold d.mu

func (d *Dataset) isMemberLocked(ch *Channel, userID int64) bool {
	return containsID(ch.Members, userID)
}

func (d *Dataset) isOwnerLocked(ch *Channel, userID int64) bool {
	return containsID(ch.Owners, userID)
}

func (d *Dataset) isGlobalOwnerLocked(userID int64) bool {
	user, ok := d.users[userID]
	return ok && user.Permission.GlobalOwner()
}

// elevatedLocked is the recurring authorization bar for owner-only actions:
// channel owner or global owner.
func (d *Dataset) elevatedLocked(ch *Channel, userID int64) bool {
	return d.isOwnerLocked(ch, userID) || d.isGlobalOwnerLocked(userID)
}

// RequireMember checks channel existence and the user's membership without
// mutating anything. Deferred sends validate at schedule time with this, then
// land through AppendReserved.
func (d *Dataset) RequireMember(userID, channelID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch, ok := d.channels[channelID]
	if !ok {
		return apperrors.NotFound("channel does not exist")
	}
	if !d.isMemberLocked(ch, userID) {
		return apperrors.Forbidden("user is not a member of the channel")
	}
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func (d *Dataset) memberProfileLocked(userID int64) MemberProfile {
	user, ok := d.users[userID]
	if !ok {
		return MemberProfile{ID: userID}
	}
	return MemberProfile{
		ID:              user.ID,
		NameFirst:       user.NameFirst,
		NameLast:        user.NameLast,
		ProfileImageURL: user.ProfileImageURL,
	}
}

func (d *Dataset) messageViewLocked(m *Message, viewerID int64) MessageView {
	reactors := make([]int64, len(m.Reactors))
	copy(reactors, m.Reactors)
	return MessageView{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.AuthorID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		Pinned:    m.Pinned,
		Reacts: []ReactView{{
			ReactID:           ReactThumbsUp,
			UserIDs:           reactors,
			IsThisUserReacted: containsID(m.Reactors, viewerID),
		}},
	}
}
