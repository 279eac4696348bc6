package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	apperrors "huddle/api/pkg/errors"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestIssueAndResolve(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	token, err := store.Issue(ctx, 7)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	userID, err := store.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if userID != 7 {
		t.Errorf("expected user 7, got %d", userID)
	}
}

func TestIssueReturnsActiveToken(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	first, err := store.Issue(ctx, 3)
	if err != nil {
		t.Fatalf("first Issue failed: %v", err)
	}
	second, err := store.Issue(ctx, 3)
	if err != nil {
		t.Fatalf("second Issue failed: %v", err)
	}
	if first != second {
		t.Errorf("expected the active token back, got %q then %q", first, second)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	_, err := store.Resolve(ctx, "never-issued")
	if !apperrors.Is(err, apperrors.CodeUnauthenticated) {
		t.Errorf("expected UNAUTHENTICATED, got %v", err)
	}

	_, err = store.Resolve(ctx, "")
	if !apperrors.Is(err, apperrors.CodeUnauthenticated) {
		t.Errorf("expected UNAUTHENTICATED for empty token, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	token, err := store.Issue(ctx, 5)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	revoked, err := store.Revoke(ctx, token)
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if !revoked {
		t.Error("expected revoke to report an active token")
	}

	if _, err := store.Resolve(ctx, token); err == nil {
		t.Error("expected error resolving a revoked token")
	}

	// A fresh login after logout gets a new token.
	next, err := store.Issue(ctx, 5)
	if err != nil {
		t.Fatalf("Issue after revoke failed: %v", err)
	}
	if next == token {
		t.Error("expected a new token after revoke")
	}
}

func TestRevokeUnknownToken(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	revoked, err := store.Revoke(context.Background(), "non-existent-token")
	if err != nil {
		t.Errorf("Revoke for non-existent token failed: %v", err)
	}
	if revoked {
		t.Error("expected revoke of unknown token to report false")
	}
}

func TestReset(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	first, err := store.Issue(ctx, 1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := store.Issue(ctx, 2); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if _, err := store.Resolve(ctx, first); err == nil {
		t.Error("expected error resolving token after reset")
	}
}
