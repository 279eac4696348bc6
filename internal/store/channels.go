package store

import (
	"fmt"

	apperrors "huddle/api/pkg/errors"
)

// CreateChannel makes a new channel with the creator as sole owner and member.
// Channel ids are monotonic and never reused, so an id stays dead after its
// channel is deleted.
func (d *Dataset) CreateChannel(ownerID int64, name string, public bool) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[ownerID]; !ok {
		return 0, apperrors.NotFound("user does not exist")
	}

	d.nextChannelID++
	ch := &Channel{
		ID:      d.nextChannelID,
		Name:    name,
		Public:  public,
		Owners:  []int64{ownerID},
		Members: []int64{ownerID},
	}
	d.channels[ch.ID] = ch
	d.channelOrder = append(d.channelOrder, ch.ID)
	return ch.ID, nil
}

// ChannelsFor lists the channels the user belongs to, in creation order.
func (d *Dataset) ChannelsFor(userID int64) []ChannelSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	var list []ChannelSummary
	for _, id := range d.channelOrder {
		ch := d.channels[id]
		if d.isMemberLocked(ch, userID) {
			list = append(list, ChannelSummary{ID: ch.ID, Name: ch.Name})
		}
	}
	return list
}

// AllChannels lists every channel in creation order, regardless of caller.
func (d *Dataset) AllChannels() []ChannelSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	var list []ChannelSummary
	for _, id := range d.channelOrder {
		ch := d.channels[id]
		list = append(list, ChannelSummary{ID: ch.ID, Name: ch.Name})
	}
	return list
}

// memberChannelIDsLocked returns the ids of every channel userID belongs to.
func (d *Dataset) memberChannelIDsLocked(userID int64) []int64 {
	var ids []int64
	for _, id := range d.channelOrder {
		if d.isMemberLocked(d.channels[id], userID) {
			ids = append(ids, id)
		}
	}
	return ids
}

// MemberChannelIDs is the exported form of the reachable-channel set, used by
// the search facade to scope index queries.
func (d *Dataset) MemberChannelIDs(userID int64) []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.memberChannelIDsLocked(userID)
}

// Invite adds target to the channel immediately. Inviting an existing member
// is a no-op; a target holding global owner rights also becomes a channel
// owner on entry.
func (d *Dataset) Invite(actorID, channelID, targetID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return apperrors.NotFound("channel does not exist")
	}
	if !d.isMemberLocked(ch, actorID) {
		return apperrors.Forbidden(fmt.Sprintf("user %d is not a member of the channel", actorID))
	}
	if _, ok := d.users[targetID]; !ok {
		return apperrors.NotFound(fmt.Sprintf("user %d does not exist", targetID))
	}

	if d.isMemberLocked(ch, targetID) {
		return nil
	}
	if d.isGlobalOwnerLocked(targetID) {
		ch.Owners = append(ch.Owners, targetID)
	}
	ch.Members = append(ch.Members, targetID)
	return nil
}

// Join adds the actor to a channel. Private channels admit global owners only;
// global owners also gain channel ownership on entry.
func (d *Dataset) Join(actorID, channelID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return apperrors.NotFound("channel does not exist")
	}
	if d.isMemberLocked(ch, actorID) {
		return nil
	}
	if !ch.Public && !d.isGlobalOwnerLocked(actorID) {
		return apperrors.Forbidden("channel is private")
	}
	if d.isGlobalOwnerLocked(actorID) {
		ch.Owners = append(ch.Owners, actorID)
	}
	ch.Members = append(ch.Members, actorID)
	return nil
}

// Leave removes the actor from the channel, then restores the membership
// invariants in order: an emptied channel is deleted; a sole remaining member
// becomes sole owner; an emptied owner set promotes the oldest member.
func (d *Dataset) Leave(actorID, channelID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return apperrors.NotFound("channel does not exist")
	}
	if !d.isMemberLocked(ch, actorID) {
		return apperrors.Forbidden(fmt.Sprintf("user %d is not a member of the channel", actorID))
	}

	ch.Members = removeID(ch.Members, actorID)
	ch.Owners = removeID(ch.Owners, actorID)

	switch {
	case len(ch.Members) == 0:
		d.deleteChannelLocked(ch)
	case len(ch.Members) == 1:
		ch.Owners = []int64{ch.Members[0]}
	case len(ch.Owners) == 0:
		ch.Owners = append(ch.Owners, ch.Members[0])
	}
	return nil
}

func (d *Dataset) deleteChannelLocked(ch *Channel) {
	for _, m := range ch.Messages {
		delete(d.messageIndex, m.ID)
	}
	delete(d.channels, ch.ID)
	d.channelOrder = removeID(d.channelOrder, ch.ID)
}

// AddOwner grants channel ownership to target. Requires elevated rights.
func (d *Dataset) AddOwner(actorID, channelID, targetID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return apperrors.NotFound("channel does not exist")
	}
	if _, ok := d.users[targetID]; !ok {
		return apperrors.NotFound(fmt.Sprintf("user %d does not exist", targetID))
	}
	if d.isOwnerLocked(ch, targetID) {
		return apperrors.InvalidArg("user to add as owner is already an owner")
	}
	if !d.elevatedLocked(ch, actorID) {
		return apperrors.Forbidden("user is not a channel owner or a global owner")
	}
	ch.Owners = append(ch.Owners, targetID)
	return nil
}

// RemoveOwner revokes channel ownership from target. Requires elevated rights.
func (d *Dataset) RemoveOwner(actorID, channelID, targetID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return apperrors.NotFound("channel does not exist")
	}
	if _, ok := d.users[targetID]; !ok {
		return apperrors.NotFound(fmt.Sprintf("user %d does not exist", targetID))
	}
	if !d.isOwnerLocked(ch, targetID) {
		return apperrors.InvalidArg("user to remove is not an owner")
	}
	if !d.elevatedLocked(ch, actorID) {
		return apperrors.Forbidden("user is not a channel owner or a global owner")
	}
	ch.Owners = removeID(ch.Owners, targetID)
	return nil
}

// Details returns the channel's name and member profiles. Requires membership.
func (d *Dataset) Details(actorID, channelID int64) (ChannelDetails, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return ChannelDetails{}, apperrors.NotFound("channel does not exist")
	}
	if !d.isMemberLocked(ch, actorID) {
		return ChannelDetails{}, apperrors.Forbidden(fmt.Sprintf("user %d is not a member of the channel", actorID))
	}

	details := ChannelDetails{
		Name:         ch.Name,
		OwnerMembers: make([]MemberProfile, 0, len(ch.Owners)),
		AllMembers:   make([]MemberProfile, 0, len(ch.Members)),
	}
	for _, id := range ch.Owners {
		details.OwnerMembers = append(details.OwnerMembers, d.memberProfileLocked(id))
	}
	for _, id := range ch.Members {
		details.AllMembers = append(details.AllMembers, d.memberProfileLocked(id))
	}
	return details, nil
}
