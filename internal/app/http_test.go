package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestHTTP(t *testing.T) *httptest.Server {
	t.Helper()
	service := newTestService(t)
	srv := httptest.NewServer(NewHTTPServer(service, "*").Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]json.RawMessage{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func registerHTTP(t *testing.T, srv *httptest.Server, email string) (userID int64, token string) {
	t.Helper()
	resp, body := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":      email,
		"password":   "hunter22",
		"name_first": "Ada",
		"name_last":  "Lovelace",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register returned %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body["u_id"], &userID); err != nil {
		t.Fatalf("decode u_id: %v", err)
	}
	if err := json.Unmarshal(body["token"], &token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return userID, token
}

func TestHTTPHealth(t *testing.T) {
	srv := newTestHTTP(t)
	resp, _ := doJSON(t, srv, http.MethodGet, "/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health returned %d", resp.StatusCode)
	}
}

func TestHTTPMessageRoundTrip(t *testing.T) {
	srv := newTestHTTP(t)
	_, token := registerHTTP(t, srv, "a@example.com")

	resp, body := doJSON(t, srv, http.MethodPost, "/api/channels/create", token, map[string]any{
		"name":      "general",
		"is_public": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("channels/create returned %d", resp.StatusCode)
	}
	var channelID int64
	if err := json.Unmarshal(body["channel_id"], &channelID); err != nil {
		t.Fatalf("decode channel_id: %v", err)
	}

	resp, body = doJSON(t, srv, http.MethodPost, "/api/message/send", token, map[string]any{
		"channel_id": channelID,
		"message":    "hello over http",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("message/send returned %d", resp.StatusCode)
	}
	var messageID int64
	if err := json.Unmarshal(body["message_id"], &messageID); err != nil {
		t.Fatalf("decode message_id: %v", err)
	}

	resp, body = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/channel/messages?channel_id=%d&start=0", channelID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("channel/messages returned %d", resp.StatusCode)
	}
	var messages []struct {
		ID   int64  `json:"message_id"`
		Text string `json:"message"`
	}
	if err := json.Unmarshal(body["messages"], &messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 1 || messages[0].ID != messageID || messages[0].Text != "hello over http" {
		t.Errorf("unexpected messages %+v", messages)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	srv := newTestHTTP(t)
	_, token := registerHTTP(t, srv, "a@example.com")

	// Bad token -> 401.
	resp, _ := doJSON(t, srv, http.MethodGet, "/api/channels/list", "bogus", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token returned %d, want 401", resp.StatusCode)
	}

	// Unknown channel -> 404.
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/channel/join", token, map[string]any{"channel_id": 9999})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown channel returned %d, want 404", resp.StatusCode)
	}

	// Private channel joined by a non-owner -> 403.
	_, ownerToken := registerHTTP(t, srv, "b@example.com")
	resp, body := doJSON(t, srv, http.MethodPost, "/api/channels/create", ownerToken, map[string]any{
		"name":      "secret",
		"is_public": false,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("channels/create returned %d", resp.StatusCode)
	}
	var channelID int64
	if err := json.Unmarshal(body["channel_id"], &channelID); err != nil {
		t.Fatalf("decode channel_id: %v", err)
	}
	_, member2 := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "c@example.com", "password": "hunter22", "name_first": "Carol", "name_last": "Shaw",
	})
	var memberToken string
	_ = json.Unmarshal(member2["token"], &memberToken)
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/channel/join", memberToken, map[string]any{"channel_id": channelID})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("private join returned %d, want 403", resp.StatusCode)
	}

	// Oversized message -> 400.
	longText := make([]byte, 1001)
	for i := range longText {
		longText[i] = 'x'
	}
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/message/send", token, map[string]any{
		"channel_id": channelID, "message": string(longText),
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized message returned %d, want 400", resp.StatusCode)
	}
}

func TestHTTPClear(t *testing.T) {
	srv := newTestHTTP(t)
	_, token := registerHTTP(t, srv, "a@example.com")

	resp, _ := doJSON(t, srv, http.MethodDelete, "/api/clear", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear returned %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/channels/list", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("token should be dead after clear, got %d", resp.StatusCode)
	}
}
