package app

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "huddle/api/pkg/errors"
)

func TestStandupLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	starter := register(t, s, "a@example.com", "Ada", "Lovelace")
	guest := register(t, s, "b@example.com", "Brian", "Kernighan")
	channelID := makeChannel(t, s, starter.Token, "general")
	if err := s.Invite(ctx, starter.Token, channelID, guest.UserID); err != nil {
		t.Fatalf("Invite: %v", err)
	}

	finish, err := s.StartStandup(ctx, starter.Token, channelID, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("StartStandup: %v", err)
	}

	if _, err := s.StartStandup(ctx, guest.Token, channelID, time.Second); !apperrors.Is(err, apperrors.CodeInvalidArgument) {
		t.Errorf("overlapping standup should be INVALID_ARGUMENT, got %v", err)
	}

	active, got, err := s.StandupActive(ctx, guest.Token, channelID)
	if err != nil {
		t.Fatalf("StandupActive: %v", err)
	}
	if !active || !got.Equal(finish) {
		t.Errorf("StandupActive = (%v, %v), want (true, %v)", active, got, finish)
	}

	if err := s.SendStandup(ctx, guest.Token, channelID, "wrote tests"); err != nil {
		t.Fatalf("SendStandup: %v", err)
	}
	if err := s.SendStandup(ctx, starter.Token, channelID, "reviewed them"); err != nil {
		t.Fatalf("SendStandup: %v", err)
	}

	time.Sleep(250 * time.Millisecond)

	active, _, err = s.StandupActive(ctx, starter.Token, channelID)
	if err != nil {
		t.Fatalf("StandupActive: %v", err)
	}
	if active {
		t.Error("standup should be over")
	}

	page, err := s.Messages(ctx, starter.Token, channelID, 0)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(page.Messages) != 1 {
		t.Fatalf("expected one flushed summary, got %d messages", len(page.Messages))
	}
	summary := page.Messages[0]
	if summary.AuthorID != starter.UserID {
		t.Errorf("summary author = %d, want starter %d", summary.AuthorID, starter.UserID)
	}
	want := "briankernighan: wrote tests\nadalovelace: reviewed them"
	if summary.Text != want {
		t.Errorf("summary text = %q, want %q", summary.Text, want)
	}
	if !summary.CreatedAt.Equal(finish) {
		t.Errorf("summary should be timestamped at the deadline")
	}

	if err := s.SendStandup(ctx, starter.Token, channelID, "too late"); !apperrors.Is(err, apperrors.CodeInvalidArgument) {
		t.Errorf("send after close should be INVALID_ARGUMENT, got %v", err)
	}
}

func TestStandupEmptyBufferProducesNothing(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	starter := register(t, s, "a@example.com", "Ada", "Lovelace")
	channelID := makeChannel(t, s, starter.Token, "general")

	if _, err := s.StartStandup(ctx, starter.Token, channelID, 50*time.Millisecond); err != nil {
		t.Fatalf("StartStandup: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	page, err := s.Messages(ctx, starter.Token, channelID, 0)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(page.Messages) != 0 {
		t.Errorf("empty standup should flush nothing, got %d messages", len(page.Messages))
	}
}

func TestStandupValidation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	starter := register(t, s, "a@example.com", "Ada", "Lovelace")
	outsider := register(t, s, "b@example.com", "Brian", "Kernighan")
	channelID := makeChannel(t, s, starter.Token, "general")

	if _, err := s.StartStandup(ctx, starter.Token, channelID, -time.Second); !apperrors.Is(err, apperrors.CodeInvalidArgument) {
		t.Errorf("negative length should be INVALID_ARGUMENT, got %v", err)
	}
	if _, err := s.StartStandup(ctx, outsider.Token, channelID, time.Second); !apperrors.Is(err, apperrors.CodePermissionDenied) {
		t.Errorf("non-member start should be PERMISSION_DENIED, got %v", err)
	}
	if err := s.SendStandup(ctx, starter.Token, channelID, ""); !apperrors.Is(err, apperrors.CodeInvalidArgument) {
		t.Errorf("empty line should be INVALID_ARGUMENT, got %v", err)
	}
	if err := s.SendStandup(ctx, starter.Token, channelID, strings.Repeat("x", 1001)); !apperrors.Is(err, apperrors.CodeInvalidArgument) {
		t.Errorf("oversized line should be INVALID_ARGUMENT, got %v", err)
	}
	if err := s.SendStandup(ctx, starter.Token, channelID, "hello"); !apperrors.Is(err, apperrors.CodeInvalidArgument) {
		t.Errorf("send with no open window should be INVALID_ARGUMENT, got %v", err)
	}
}

func TestStandupHookExclusion(t *testing.T) {
	hook := &fakeHook{prefix: "/trivia", busy: true}
	s := newTestService(t, hook)
	ctx := context.Background()

	starter := register(t, s, "a@example.com", "Ada", "Lovelace")
	channelID := makeChannel(t, s, starter.Token, "general")

	if _, err := s.StartStandup(ctx, starter.Token, channelID, time.Second); !apperrors.Is(err, apperrors.CodeInvalidArgument) {
		t.Errorf("busy hook should block standup start, got %v", err)
	}

	hook.busy = false
	if _, err := s.StartStandup(ctx, starter.Token, channelID, time.Minute); err != nil {
		t.Fatalf("StartStandup: %v", err)
	}
	if err := s.SendStandup(ctx, starter.Token, channelID, "/trivia answer 4"); !apperrors.Is(err, apperrors.CodeInvalidArgument) {
		t.Errorf("command line should be refused by standup send, got %v", err)
	}
	if err := s.SendStandup(ctx, starter.Token, channelID, "ordinary note"); err != nil {
		t.Errorf("ordinary note should buffer: %v", err)
	}
}
