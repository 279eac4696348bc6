package store

import (
	"time"

	apperrors "huddle/api/pkg/errors"
)

// StartStandup opens the channel's collection window, recording its deadline.
// Only one window can be open per channel at a time.
func (d *Dataset) StartStandup(actorID, channelID int64, finish, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return apperrors.NotFound("channel does not exist")
	}
	if !d.isMemberLocked(ch, actorID) {
		return apperrors.Forbidden("user is not a member of the channel")
	}
	if now.Before(ch.StandupFinish) {
		return apperrors.InvalidArg("standup is currently active")
	}
	ch.StandupFinish = finish
	return nil
}

// StandupStatus reports whether a window is open and, if so, its deadline.
func (d *Dataset) StandupStatus(actorID, channelID int64, now time.Time) (bool, time.Time, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return false, time.Time{}, apperrors.NotFound("channel does not exist")
	}
	if !d.isMemberLocked(ch, actorID) {
		return false, time.Time{}, apperrors.Forbidden("user is not a member of the channel")
	}
	if now.Before(ch.StandupFinish) {
		return true, ch.StandupFinish, nil
	}
	return false, time.Time{}, nil
}

// AddStandupNote buffers one "handle: line" entry into the channel's open
// window. Line validation happens in the caller; the window must be open.
func (d *Dataset) AddStandupNote(actorID, channelID int64, line string, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return apperrors.NotFound("channel does not exist")
	}
	if !d.isMemberLocked(ch, actorID) {
		return apperrors.Forbidden("user is not a member of the channel")
	}
	if !now.Before(ch.StandupFinish) {
		return apperrors.InvalidArg("no standup currently active")
	}

	entry := d.users[actorID].Handle + ": " + line
	if ch.StandupNotes == "" {
		ch.StandupNotes = entry
	} else {
		ch.StandupNotes += "\n" + entry
	}
	return nil
}

// FlushStandup closes the window: a non-empty buffer becomes one ordinary
// message authored by the user who started the standup, timestamped at the
// deadline. An empty buffer, or a channel deleted since scheduling, produces
// nothing. Returns the stored message, if any, so callers can index it.
func (d *Dataset) FlushStandup(channelID, starterID int64, finish time.Time) (MessageView, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return MessageView{}, false
	}
	notes := ch.StandupNotes
	ch.StandupNotes = ""
	if notes == "" {
		return MessageView{}, false
	}

	d.messageSeq++
	m := &Message{
		ID:        d.messageSeq,
		ChannelID: channelID,
		AuthorID:  starterID,
		Text:      notes,
		CreatedAt: finish,
	}
	ch.Messages = append(ch.Messages, m)
	d.messageIndex[m.ID] = m
	return d.messageViewLocked(m, starterID), true
}
