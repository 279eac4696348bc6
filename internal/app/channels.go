package app

import (
	"context"
	"unicode/utf8"

	"huddle/api/internal/store"
	apperrors "huddle/api/pkg/errors"
)

const maxChannelNameLen = 20

// CreateChannel makes a channel owned by the caller.
func (s *Service) CreateChannel(ctx context.Context, token, name string, public bool) (int64, error) {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(name) > maxChannelNameLen {
		return 0, apperrors.InvalidArg("name is more than 20 characters long")
	}
	return s.data.CreateChannel(userID, name, public)
}

// ListChannels lists the channels the caller belongs to.
func (s *Service) ListChannels(ctx context.Context, token string) ([]store.ChannelSummary, error) {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.data.ChannelsFor(userID), nil
}

// ListAllChannels lists every channel, including private ones the caller
// cannot join.
func (s *Service) ListAllChannels(ctx context.Context, token string) ([]store.ChannelSummary, error) {
	if _, err := s.resolve(ctx, token); err != nil {
		return nil, err
	}
	return s.data.AllChannels(), nil
}

// Invite adds another user to a channel the caller belongs to.
func (s *Service) Invite(ctx context.Context, token string, channelID, targetID int64) error {
	actorID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	return s.data.Invite(actorID, channelID, targetID)
}

// Join adds the caller to a channel.
func (s *Service) Join(ctx context.Context, token string, channelID int64) error {
	actorID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	return s.data.Join(actorID, channelID)
}

// Leave removes the caller from a channel.
func (s *Service) Leave(ctx context.Context, token string, channelID int64) error {
	actorID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	return s.data.Leave(actorID, channelID)
}

// AddOwner grants channel ownership to another member.
func (s *Service) AddOwner(ctx context.Context, token string, channelID, targetID int64) error {
	actorID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	return s.data.AddOwner(actorID, channelID, targetID)
}

// RemoveOwner revokes channel ownership.
func (s *Service) RemoveOwner(ctx context.Context, token string, channelID, targetID int64) error {
	actorID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	return s.data.RemoveOwner(actorID, channelID, targetID)
}

// ChannelDetails returns a channel's name and member lists.
func (s *Service) ChannelDetails(ctx context.Context, token string, channelID int64) (store.ChannelDetails, error) {
	actorID, err := s.resolve(ctx, token)
	if err != nil {
		return store.ChannelDetails{}, err
	}
	return s.data.Details(actorID, channelID)
}
