package app

import (
	"context"
	"unicode/utf8"

	"huddle/api/internal/rbac"
	"huddle/api/internal/store"
	apperrors "huddle/api/pkg/errors"
)

// Profile returns the public profile of any registered user.
func (s *Service) Profile(ctx context.Context, token string, userID int64) (store.UserProfile, error) {
	if _, err := s.resolve(ctx, token); err != nil {
		return store.UserProfile{}, err
	}
	user, err := s.data.UserByID(userID)
	if err != nil {
		return store.UserProfile{}, err
	}
	return store.UserProfile{
		ID:              user.ID,
		Email:           user.Email,
		NameFirst:       user.NameFirst,
		NameLast:        user.NameLast,
		Handle:          user.Handle,
		ProfileImageURL: user.ProfileImageURL,
	}, nil
}

// AllUsers lists every registered user in registration order.
func (s *Service) AllUsers(ctx context.Context, token string) ([]store.UserProfile, error) {
	if _, err := s.resolve(ctx, token); err != nil {
		return nil, err
	}
	return s.data.Users(), nil
}

// SetName updates the caller's first and last name.
func (s *Service) SetName(ctx context.Context, token, nameFirst, nameLast string) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if !validName(nameFirst) {
		return apperrors.InvalidArg("name_first is not between 1 and 50 characters")
	}
	if !validName(nameLast) {
		return apperrors.InvalidArg("name_last is not between 1 and 50 characters")
	}
	return s.data.SetName(userID, nameFirst, nameLast)
}

// SetEmail updates the caller's email address.
func (s *Service) SetEmail(ctx context.Context, token, email string) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if !validEmail(email) {
		return apperrors.InvalidArg("email entered is not a valid email")
	}
	return s.data.SetEmail(userID, email)
}

// SetHandle updates the caller's display handle.
func (s *Service) SetHandle(ctx context.Context, token, handle string) error {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if n := utf8.RuneCountInString(handle); n < 3 || n > 20 {
		return apperrors.InvalidArg("handle_str must be between 3 and 20 characters")
	}
	return s.data.SetHandle(userID, handle)
}

// ChangePermission sets a user's workspace-wide permission level. Only global
// owners may do this.
func (s *Service) ChangePermission(ctx context.Context, token string, targetID int64, permission rbac.Permission) error {
	actorID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	if !s.data.IsGlobalOwner(actorID) {
		return apperrors.Forbidden("the authorised user is not an owner")
	}
	if !rbac.Valid(permission) {
		return apperrors.InvalidArg("permission_id does not refer to a valid permission")
	}
	return s.data.SetPermission(targetID, permission)
}
