package app

import (
	"context"

	"huddle/api/internal/config"
	"huddle/api/internal/email"
	"huddle/api/internal/search"
	"huddle/api/internal/store"
)

// SessionStore is the token registry behind authentication. A user holds at
// most one active token at a time.
type SessionStore interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) (bool, error)
	Reset(ctx context.Context) error
}

// CommandHook lets an activity (a bot, a game) intercept messages carrying its
// in-band command syntax. The message path stays oblivious to any particular
// syntax; hooks are consulted in registration order and the first match wins.
type CommandHook interface {
	// Match reports whether the hook claims text as one of its commands.
	Match(text string) bool
	// Handle runs the command and returns the text to post in its place.
	// A non-nil error posts the error's message instead of failing the send.
	Handle(authorID, channelID int64, text string) (string, error)
	// Busy reports whether the hook has an activity running in the channel.
	// A busy channel refuses to start a standup.
	Busy(channelID int64) bool
}

// Service carries the application state and implements every operation the
// transport exposes. All mutation goes through the dataset's atomic methods;
// timers fire into those same methods.
type Service struct {
	cfg      config.Config
	data     *store.Dataset
	sessions SessionStore
	search   *search.Service
	email    *email.Service
	hooks    []CommandHook
}

// New wires a service. emailService may be nil; hooks may be empty.
func New(cfg config.Config, data *store.Dataset, sessions SessionStore, searchService *search.Service, emailService *email.Service, hooks ...CommandHook) *Service {
	return &Service{
		cfg:      cfg,
		data:     data,
		sessions: sessions,
		search:   searchService,
		email:    emailService,
		hooks:    hooks,
	}
}

// resolve maps a token to its user id, failing Unauthorized for tokens the
// registry does not recognize.
func (s *Service) resolve(ctx context.Context, token string) (int64, error) {
	return s.sessions.Resolve(ctx, token)
}

// Reset wipes the workspace: all users, channels, messages and standup
// buffers, every active session, and the search index. Id counters re-arm so
// the next registration is user 1 again. Timers already scheduled are left to
// fire; they no-op against the emptied dataset.
func (s *Service) Reset(ctx context.Context) error {
	s.data.Reset()
	s.search.Reset()
	return s.sessions.Reset(ctx)
}
