package store

import (
	"strings"
	"time"

	apperrors "huddle/api/pkg/errors"
)

// pageSize is the fixed number of messages per read.
const pageSize = 50

// Append stores a new message at the tail of the channel's log and returns its
// id. Requires membership; text validation is the caller's job.
func (d *Dataset) Append(authorID, channelID int64, text string, now time.Time) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return 0, apperrors.NotFound("channel does not exist")
	}
	if !d.isMemberLocked(ch, authorID) {
		return 0, apperrors.Forbidden("user is not a member of the channel")
	}

	d.messageSeq++
	m := &Message{
		ID:        d.messageSeq,
		ChannelID: channelID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: now,
	}
	ch.Messages = append(ch.Messages, m)
	d.messageIndex[m.ID] = m
	return m.ID, nil
}

// ReserveMessageID hands out the next message id without storing anything.
// Deferred sends reserve their id at schedule time so ids stay monotonic in
// scheduling order.
func (d *Dataset) ReserveMessageID() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messageSeq++
	return d.messageSeq
}

// AppendReserved lands a message whose id was reserved earlier. If the target
// channel no longer exists the message is dropped silently: the timer has no
// caller left to report to. Reports whether the message was stored.
func (d *Dataset) AppendReserved(m Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[m.ChannelID]
	if !ok {
		return false
	}
	stored := m
	ch.Messages = append(ch.Messages, &stored)
	d.messageIndex[stored.ID] = &stored
	return true
}

// Page reads up to 50 messages newest-first, starting start messages back from
// the most recent. End is start+50, or -1 when no further page exists.
func (d *Dataset) Page(viewerID, channelID int64, start int) (MessagePage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.channels[channelID]
	if !ok {
		return MessagePage{}, apperrors.NotFound("channel does not exist")
	}
	if !d.isMemberLocked(ch, viewerID) {
		return MessagePage{}, apperrors.Forbidden("user is not a member of the channel")
	}
	total := len(ch.Messages)
	if start > total {
		return MessagePage{}, apperrors.InvalidArg("start greater than number of messages")
	}

	end := start + pageSize
	if end > total {
		end = -1
	}

	count := total - start
	if count > pageSize {
		count = pageSize
	}
	page := MessagePage{Start: start, End: end, Messages: make([]MessageView, 0, count)}
	for i := 0; i < count; i++ {
		m := ch.Messages[total-1-start-i]
		page.Messages = append(page.Messages, d.messageViewLocked(m, viewerID))
	}
	return page, nil
}

// Remove deletes a message. The actor must be the author or hold elevated
// rights in the message's channel.
func (d *Dataset) Remove(actorID, messageID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.messageIndex[messageID]
	if !ok {
		return apperrors.NotFound("message does not exist")
	}
	ch := d.channels[m.ChannelID]
	if m.AuthorID != actorID && !d.elevatedLocked(ch, actorID) {
		return apperrors.Forbidden("message not sent by user, and user not channel or global owner")
	}

	for i, existing := range ch.Messages {
		if existing.ID == messageID {
			ch.Messages = append(ch.Messages[:i], ch.Messages[i+1:]...)
			break
		}
	}
	delete(d.messageIndex, messageID)
	return nil
}

// Edit replaces a message's text and resets its timestamp. Same authorization
// as Remove, plus the actor must be a channel member. Editing to empty text is
// handled by the caller, which delegates to Remove.
func (d *Dataset) Edit(actorID, messageID int64, text string, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.messageIndex[messageID]
	if !ok {
		return apperrors.NotFound("message does not exist")
	}
	ch := d.channels[m.ChannelID]
	if !d.isMemberLocked(ch, actorID) {
		return apperrors.Forbidden("user is not a member of the channel")
	}
	if m.AuthorID != actorID && !d.elevatedLocked(ch, actorID) {
		return apperrors.Forbidden("message not sent by user, and user not channel or global owner")
	}

	m.Text = text
	m.CreatedAt = now
	return nil
}

// React records the actor's reaction. Reacting twice is an error.
func (d *Dataset) React(actorID, messageID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.messageIndex[messageID]
	if !ok {
		return apperrors.NotFound("message does not exist")
	}
	if !d.isMemberLocked(d.channels[m.ChannelID], actorID) {
		return apperrors.Forbidden("user is not a member of the channel")
	}
	if containsID(m.Reactors, actorID) {
		return apperrors.InvalidArg("message already reacted")
	}
	m.Reactors = append(m.Reactors, actorID)
	return nil
}

// Unreact withdraws the actor's reaction. Unreacting without an active
// reaction is an error.
func (d *Dataset) Unreact(actorID, messageID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.messageIndex[messageID]
	if !ok {
		return apperrors.NotFound("message does not exist")
	}
	if !d.isMemberLocked(d.channels[m.ChannelID], actorID) {
		return apperrors.Forbidden("user is not a member of the channel")
	}
	if !containsID(m.Reactors, actorID) {
		return apperrors.InvalidArg("message already unreacted")
	}
	m.Reactors = removeID(m.Reactors, actorID)
	return nil
}

// Pin marks a message pinned. Requires elevated rights in the channel.
func (d *Dataset) Pin(actorID, messageID int64) error {
	return d.setPinned(actorID, messageID, true)
}

// Unpin clears a message's pin flag. Requires elevated rights in the channel.
func (d *Dataset) Unpin(actorID, messageID int64) error {
	return d.setPinned(actorID, messageID, false)
}

func (d *Dataset) setPinned(actorID, messageID int64, pinned bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.messageIndex[messageID]
	if !ok {
		return apperrors.NotFound("message does not exist")
	}
	ch := d.channels[m.ChannelID]
	if !d.isMemberLocked(ch, actorID) {
		return apperrors.Forbidden("user is not a member of the channel")
	}
	if !d.elevatedLocked(ch, actorID) {
		return apperrors.Forbidden("user is not a channel or global owner")
	}
	if m.Pinned == pinned {
		if pinned {
			return apperrors.InvalidArg("message already pinned")
		}
		return apperrors.InvalidArg("message already unpinned")
	}
	m.Pinned = pinned
	return nil
}

// Message returns a copy of a single message, annotated for the viewer.
func (d *Dataset) Message(viewerID, messageID int64) (MessageView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.messageIndex[messageID]
	if !ok {
		return MessageView{}, apperrors.NotFound("message does not exist")
	}
	return d.messageViewLocked(m, viewerID), nil
}

// SearchMessages scans every channel the viewer belongs to for messages
// containing query, in channel-creation then log order.
func (d *Dataset) SearchMessages(viewerID int64, query string) []MessageView {
	d.mu.Lock()
	defer d.mu.Unlock()

	var results []MessageView
	for _, channelID := range d.memberChannelIDsLocked(viewerID) {
		for _, m := range d.channels[channelID].Messages {
			if strings.Contains(m.Text, query) {
				results = append(results, d.messageViewLocked(m, viewerID))
			}
		}
	}
	return results
}
