package search

import (
	"testing"
	"time"

	"huddle/api/internal/store"
)

func TestSearchFallsBackToScanWithoutMeili(t *testing.T) {
	d := store.New()
	user, err := d.CreateUser("a@example.com", "hash", "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	channelID, err := d.CreateChannel(user.ID, "general", true)
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if _, err := d.Append(user.ID, channelID, "shipping tomorrow", time.Now()); err != nil {
		t.Fatalf("Append: %v", err)
	}

	svc := NewService(nil, d)

	results := svc.Search(user.ID, "shipping")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Text != "shipping tomorrow" {
		t.Errorf("unexpected text %q", results[0].Text)
	}

	if got := svc.Search(user.ID, "nothing matches this"); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestSearchReturnsEmptySliceNotNil(t *testing.T) {
	d := store.New()
	user, err := d.CreateUser("a@example.com", "hash", "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	svc := NewService(nil, d)
	if results := svc.Search(user.ID, "anything"); results == nil {
		t.Fatal("expected non-nil slice")
	}
}

func TestRecord(t *testing.T) {
	rec := Record(store.MessageView{ID: 7, ChannelID: 3, Text: "hello"})
	if rec.ID != 7 || rec.ChannelID != 3 || rec.Text != "hello" {
		t.Errorf("unexpected record %+v", rec)
	}
}
