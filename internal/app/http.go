package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"huddle/api/internal/rbac"
	apperrors "huddle/api/pkg/errors"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	// Auth routes (no session required)
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/register" {
		var body struct {
			Email     string `json:"email"`
			Password  string `json:"password"`
			NameFirst string `json:"name_first"`
			NameLast  string `json:"name_last"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		result, err := s.service.Register(r.Context(), body.Email, body.Password, body.NameFirst, body.NameLast)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/login" {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		result, err := s.service.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout" {
		ok, err := s.service.Logout(r.Context(), bearerToken(r))
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"is_success": ok})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/passwordreset/request" {
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		if err := s.service.RequestPasswordReset(r.Context(), body.Email); err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/passwordreset/reset" {
		var body struct {
			ResetCode   string `json:"reset_code"`
			NewPassword string `json:"new_password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		if err := s.service.ResetPassword(r.Context(), body.ResetCode, body.NewPassword); err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}

	if r.Method == http.MethodDelete && r.URL.Path == "/api/clear" {
		if err := s.service.Reset(r.Context()); err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}

	token := bearerToken(r)

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/user/profile":
		userID, ok := queryInt64(w, r, "u_id")
		if !ok {
			return
		}
		profile, err := s.service.Profile(r.Context(), token, userID)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": profile})

	case r.Method == http.MethodPut && r.URL.Path == "/api/user/profile/setname":
		var body struct {
			NameFirst string `json:"name_first"`
			NameLast  string `json:"name_last"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.SetName(r.Context(), token, body.NameFirst, body.NameLast))

	case r.Method == http.MethodPut && r.URL.Path == "/api/user/profile/setemail":
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.SetEmail(r.Context(), token, body.Email))

	case r.Method == http.MethodPut && r.URL.Path == "/api/user/profile/sethandle":
		var body struct {
			Handle string `json:"handle_str"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.SetHandle(r.Context(), token, body.Handle))

	case r.Method == http.MethodGet && r.URL.Path == "/api/users/all":
		users, err := s.service.AllUsers(r.Context(), token)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})

	case r.Method == http.MethodPost && r.URL.Path == "/api/admin/userpermission/change":
		var body struct {
			UserID     int64 `json:"u_id"`
			Permission int   `json:"permission_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.ChangePermission(r.Context(), token, body.UserID, rbac.Permission(body.Permission)))

	case r.Method == http.MethodPost && r.URL.Path == "/api/channels/create":
		var body struct {
			Name   string `json:"name"`
			Public bool   `json:"is_public"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		channelID, err := s.service.CreateChannel(r.Context(), token, body.Name, body.Public)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"channel_id": channelID})

	case r.Method == http.MethodGet && r.URL.Path == "/api/channels/list":
		channels, err := s.service.ListChannels(r.Context(), token)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"channels": channels})

	case r.Method == http.MethodGet && r.URL.Path == "/api/channels/listall":
		channels, err := s.service.ListAllChannels(r.Context(), token)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"channels": channels})

	case r.Method == http.MethodPost && r.URL.Path == "/api/channel/invite":
		var body struct {
			ChannelID int64 `json:"channel_id"`
			UserID    int64 `json:"u_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.Invite(r.Context(), token, body.ChannelID, body.UserID))

	case r.Method == http.MethodPost && r.URL.Path == "/api/channel/join":
		var body struct {
			ChannelID int64 `json:"channel_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.Join(r.Context(), token, body.ChannelID))

	case r.Method == http.MethodPost && r.URL.Path == "/api/channel/leave":
		var body struct {
			ChannelID int64 `json:"channel_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.Leave(r.Context(), token, body.ChannelID))

	case r.Method == http.MethodPost && r.URL.Path == "/api/channel/addowner":
		var body struct {
			ChannelID int64 `json:"channel_id"`
			UserID    int64 `json:"u_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.AddOwner(r.Context(), token, body.ChannelID, body.UserID))

	case r.Method == http.MethodPost && r.URL.Path == "/api/channel/removeowner":
		var body struct {
			ChannelID int64 `json:"channel_id"`
			UserID    int64 `json:"u_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.RemoveOwner(r.Context(), token, body.ChannelID, body.UserID))

	case r.Method == http.MethodGet && r.URL.Path == "/api/channel/details":
		channelID, ok := queryInt64(w, r, "channel_id")
		if !ok {
			return
		}
		details, err := s.service.ChannelDetails(r.Context(), token, channelID)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, details)

	case r.Method == http.MethodGet && r.URL.Path == "/api/channel/messages":
		channelID, ok := queryInt64(w, r, "channel_id")
		if !ok {
			return
		}
		start, err := strconv.Atoi(r.URL.Query().Get("start"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_QUERY", "start must be an integer")
			return
		}
		page, err := s.service.Messages(r.Context(), token, channelID, start)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)

	case r.Method == http.MethodPost && r.URL.Path == "/api/message/send":
		var body struct {
			ChannelID int64  `json:"channel_id"`
			Message   string `json:"message"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		messageID, err := s.service.SendMessage(r.Context(), token, body.ChannelID, body.Message)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message_id": messageID})

	case r.Method == http.MethodPost && r.URL.Path == "/api/message/sendlater":
		var body struct {
			ChannelID int64     `json:"channel_id"`
			Message   string    `json:"message"`
			TimeSent  time.Time `json:"time_sent"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		messageID, err := s.service.SendMessageLater(r.Context(), token, body.ChannelID, body.Message, body.TimeSent)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message_id": messageID})

	case r.Method == http.MethodPut && r.URL.Path == "/api/message/edit":
		var body struct {
			MessageID int64  `json:"message_id"`
			Message   string `json:"message"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.EditMessage(r.Context(), token, body.MessageID, body.Message))

	case r.Method == http.MethodDelete && r.URL.Path == "/api/message/remove":
		var body struct {
			MessageID int64 `json:"message_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.RemoveMessage(r.Context(), token, body.MessageID))

	case r.Method == http.MethodPost && r.URL.Path == "/api/message/react":
		var body struct {
			MessageID int64 `json:"message_id"`
			ReactID   int   `json:"react_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.ReactMessage(r.Context(), token, body.MessageID, body.ReactID))

	case r.Method == http.MethodPost && r.URL.Path == "/api/message/unreact":
		var body struct {
			MessageID int64 `json:"message_id"`
			ReactID   int   `json:"react_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.UnreactMessage(r.Context(), token, body.MessageID, body.ReactID))

	case r.Method == http.MethodPost && r.URL.Path == "/api/message/pin":
		var body struct {
			MessageID int64 `json:"message_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.PinMessage(r.Context(), token, body.MessageID))

	case r.Method == http.MethodPost && r.URL.Path == "/api/message/unpin":
		var body struct {
			MessageID int64 `json:"message_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.UnpinMessage(r.Context(), token, body.MessageID))

	case r.Method == http.MethodGet && r.URL.Path == "/api/search":
		results, err := s.service.Search(r.Context(), token, r.URL.Query().Get("query_str"))
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": results})

	case r.Method == http.MethodPost && r.URL.Path == "/api/standup/start":
		var body struct {
			ChannelID int64 `json:"channel_id"`
			Length    int   `json:"length"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		finish, err := s.service.StartStandup(r.Context(), token, body.ChannelID, time.Duration(body.Length)*time.Second)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"time_finish": finish})

	case r.Method == http.MethodGet && r.URL.Path == "/api/standup/active":
		channelID, ok := queryInt64(w, r, "channel_id")
		if !ok {
			return
		}
		active, finish, err := s.service.StandupActive(r.Context(), token, channelID)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		payload := map[string]any{"is_active": active, "time_finish": nil}
		if active {
			payload["time_finish"] = finish
		}
		writeJSON(w, http.StatusOK, payload)

	case r.Method == http.MethodPost && r.URL.Path == "/api/standup/send":
		var body struct {
			ChannelID int64  `json:"channel_id"`
			Message   string `json:"message"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.respond(w, s.service.SendStandup(r.Context(), token, body.ChannelID, body.Message))

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	}
}

// respond writes an empty success object or maps the error.
func (s *HTTPServer) respond(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *HTTPServer) writeAppError(w http.ResponseWriter, err error) {
	status, code, message := mapError(err)
	writeError(w, status, code, message)
}

type requestIDKey struct{}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":  code,
		"error": message,
	})
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func queryInt64(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	value, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", key+" must be an integer")
		return 0, false
	}
	return value, true
}

func mapError(err error) (status int, code, message string) {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeUnauthenticated:
		return http.StatusUnauthorized, "UNAUTHORIZED", err.Error()
	case apperrors.CodePermissionDenied:
		return http.StatusForbidden, "FORBIDDEN", err.Error()
	case apperrors.CodeNotFound:
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case apperrors.CodeInvalidArgument:
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	default:
		return http.StatusInternalServerError, "SERVER_ERROR", "Server error"
	}
}
