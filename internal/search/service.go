package search

import (
	"log"
	"sort"

	"huddle/api/internal/store"
)

// Service is the facade that tries Meilisearch first and falls back to a
// direct dataset scan.
type Service struct {
	meili   *Meili
	scanner Scanner
}

// NewService creates a search service. meili may be nil when Meilisearch is
// not configured; the scan path then serves every query.
func NewService(meili *Meili, scanner Scanner) *Service {
	return &Service{meili: meili, scanner: scanner}
}

// Search returns every message containing query across the viewer's channels.
// Index hits are resolved back through the dataset, so messages edited or
// removed since indexing never leak stale text.
func (s *Service) Search(viewerID int64, query string) []store.MessageView {
	if s.meili != nil && s.meili.Healthy() {
		ids, err := s.meili.Search(query, s.scanner.MemberChannelIDs(viewerID))
		if err == nil {
			results := make([]store.MessageView, 0, len(ids))
			for _, id := range ids {
				view, err := s.scanner.Message(viewerID, id)
				if err != nil {
					continue
				}
				results = append(results, view)
			}
			sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
			return results
		}
		log.Printf("search: meilisearch error, falling back to scan: %v", err)
	}
	return nonNil(s.scanner.SearchMessages(viewerID, query))
}

// IndexMessage indexes a message (fire-and-forget to Meilisearch).
func (s *Service) IndexMessage(v store.MessageView) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	rec := Record(v)
	go func() {
		if err := s.meili.IndexMessage(rec); err != nil {
			log.Printf("search: index message %d: %v", rec.ID, err)
		}
	}()
}

// DeleteMessage removes a message from the index (fire-and-forget).
func (s *Service) DeleteMessage(id int64) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteMessage(id); err != nil {
			log.Printf("search: delete message %d: %v", id, err)
		}
	}()
}

// Reset clears the index alongside a workspace reset (fire-and-forget).
func (s *Service) Reset() {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteAll(); err != nil {
			log.Printf("search: clear index: %v", err)
		}
	}()
}

func nonNil(r []store.MessageView) []store.MessageView {
	if r == nil {
		return []store.MessageView{}
	}
	return r
}
