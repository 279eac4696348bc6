package app

import (
	"context"

	"huddle/api/internal/store"
)

// Search returns every message containing query across the caller's channels.
// An empty query matches nothing.
func (s *Service) Search(ctx context.Context, token, query string) ([]store.MessageView, error) {
	userID, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return []store.MessageView{}, nil
	}
	return s.search.Search(userID, query), nil
}
