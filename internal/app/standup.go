package app

import (
	"context"
	"time"
	"unicode/utf8"

	apperrors "huddle/api/pkg/errors"
)

// StartStandup opens a standup window on the channel and schedules its flush.
// At the deadline the buffered notes become one message authored by the
// caller, timestamped at the deadline. Returns the deadline.
func (s *Service) StartStandup(ctx context.Context, token string, channelID int64, length time.Duration) (time.Time, error) {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return time.Time{}, err
	}
	if length <= 0 {
		return time.Time{}, apperrors.InvalidArg("standup length must be positive")
	}
	for _, hook := range s.hooks {
		if hook.Busy(channelID) {
			return time.Time{}, apperrors.InvalidArg("an activity is already running in this channel")
		}
	}

	now := time.Now()
	finish := now.Add(length)
	if err := s.data.StartStandup(userID, channelID, finish, now); err != nil {
		return time.Time{}, err
	}
	time.AfterFunc(length, func() {
		if view, ok := s.data.FlushStandup(channelID, userID, finish); ok {
			s.search.IndexMessage(view)
		}
	})
	return finish, nil
}

// StandupActive reports whether the channel has an open standup window and,
// if so, when it closes.
func (s *Service) StandupActive(ctx context.Context, token string, channelID int64) (bool, time.Time, error) {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return false, time.Time{}, err
	}
	return s.data.StandupStatus(userID, channelID, time.Now())
}

// SendStandup buffers one line into the channel's open standup window. Lines
// carrying another activity's command syntax are refused; they belong to that
// activity, not the summary.
func (s *Service) SendStandup(ctx context.Context, token string, channelID int64, line string) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if n := utf8.RuneCountInString(line); n < 1 || n > maxMessageLen {
		return apperrors.InvalidArg("message is more than 1000 characters")
	}
	for _, hook := range s.hooks {
		if hook.Match(line) {
			return apperrors.InvalidArg("command messages cannot be sent to a standup")
		}
	}
	return s.data.AddStandupNote(userID, channelID, line, time.Now())
}
