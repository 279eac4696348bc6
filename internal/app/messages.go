package app

import (
	"context"
	"time"
	"unicode/utf8"

	"huddle/api/internal/store"
	apperrors "huddle/api/pkg/errors"
)

const maxMessageLen = 1000

// SendMessage posts a message to a channel and returns its id. An empty text
// is silently dropped and reports id 0; clients send bare keypresses and
// erroring on them breaks typing indicators. Hooks get first claim on the
// text; a hook error is posted as the message body rather than failing the
// send.
func (s *Service) SendMessage(ctx context.Context, token string, channelID int64, text string) (int64, error) {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return 0, apperrors.InvalidArg("message is more than 1000 characters")
	}
	if text == "" {
		return 0, nil
	}

	for _, hook := range s.hooks {
		if !hook.Match(text) {
			continue
		}
		out, err := hook.Handle(userID, channelID, text)
		if err != nil {
			text = err.Error()
		} else {
			text = out
		}
		break
	}
	if text == "" {
		return 0, nil
	}

	id, err := s.data.Append(userID, channelID, text, time.Now())
	if err != nil {
		return 0, err
	}
	s.indexMessage(userID, id)
	return id, nil
}

// SendMessageLater schedules a message for a future instant. The id is
// reserved immediately so callers can refer to the message before it lands;
// the message itself appears at sendAt, timestamped sendAt. A channel deleted
// in the meantime swallows the delivery.
func (s *Service) SendMessageLater(ctx context.Context, token string, channelID int64, text string, sendAt time.Time) (int64, error) {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return 0, err
	}
	if n := utf8.RuneCountInString(text); n < 1 || n > maxMessageLen {
		return 0, apperrors.InvalidArg("message is more than 1000 characters")
	}
	if sendAt.Before(time.Now()) {
		return 0, apperrors.InvalidArg("time sent is a time in the past")
	}
	if err := s.data.RequireMember(userID, channelID); err != nil {
		return 0, err
	}

	id := s.data.ReserveMessageID()
	msg := store.Message{
		ID:        id,
		ChannelID: channelID,
		AuthorID:  userID,
		Text:      text,
		CreatedAt: sendAt,
	}
	time.AfterFunc(time.Until(sendAt), func() {
		if s.data.AppendReserved(msg) {
			s.indexMessage(userID, id)
		}
	})
	return id, nil
}

// Messages reads one page of a channel's log, newest first.
func (s *Service) Messages(ctx context.Context, token string, channelID int64, start int) (store.MessagePage, error) {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return store.MessagePage{}, err
	}
	if start < 0 {
		return store.MessagePage{}, apperrors.InvalidArg("start must not be negative")
	}
	return s.data.Page(userID, channelID, start)
}

// EditMessage replaces a message's text. Editing to an empty string removes
// the message instead.
func (s *Service) EditMessage(ctx context.Context, token string, messageID int64, text string) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return apperrors.InvalidArg("message is more than 1000 characters")
	}
	if text == "" {
		if err := s.data.Remove(userID, messageID); err != nil {
			return err
		}
		s.search.DeleteMessage(messageID)
		return nil
	}
	if err := s.data.Edit(userID, messageID, text, time.Now()); err != nil {
		return err
	}
	s.indexMessage(userID, messageID)
	return nil
}

// RemoveMessage deletes a message.
func (s *Service) RemoveMessage(ctx context.Context, token string, messageID int64) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if err := s.data.Remove(userID, messageID); err != nil {
		return err
	}
	s.search.DeleteMessage(messageID)
	return nil
}

// ReactMessage records the caller's reaction of the given kind.
func (s *Service) ReactMessage(ctx context.Context, token string, messageID int64, reactID int) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if reactID != store.ReactThumbsUp {
		return apperrors.InvalidArg("react_id is not a valid react")
	}
	return s.data.React(userID, messageID)
}

// UnreactMessage withdraws the caller's reaction of the given kind.
func (s *Service) UnreactMessage(ctx context.Context, token string, messageID int64, reactID int) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if reactID != store.ReactThumbsUp {
		return apperrors.InvalidArg("react_id is not a valid react")
	}
	return s.data.Unreact(userID, messageID)
}

// PinMessage marks a message as pinned.
func (s *Service) PinMessage(ctx context.Context, token string, messageID int64) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	return s.data.Pin(userID, messageID)
}

// UnpinMessage clears a message's pin.
func (s *Service) UnpinMessage(ctx context.Context, token string, messageID int64) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	return s.data.Unpin(userID, messageID)
}

func (s *Service) indexMessage(viewerID, messageID int64) {
	view, err := s.data.Message(viewerID, messageID)
	if err != nil {
		return
	}
	s.search.IndexMessage(view)
}
