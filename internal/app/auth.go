package app

import (
	"context"
	"crypto/rand"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "huddle/api/pkg/errors"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	UserID int64  `json:"u_id"`
	Token  string `json:"token"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9]+([._-][a-zA-Z0-9]+)*@[a-zA-Z0-9]+([.-][a-zA-Z0-9]+)*\.[a-zA-Z]{2,}$`)

const (
	minPasswordLen = 6
	maxNameLen     = 50
)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= maxNameLen
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, email, password, nameFirst, nameLast string) (AuthResult, error) {
	if !validEmail(email) {
		return AuthResult{}, apperrors.InvalidArg("email entered is not a valid email")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return AuthResult{}, apperrors.InvalidArg("password entered is less than 6 characters long")
	}
	if !validName(nameFirst) {
		return AuthResult{}, apperrors.InvalidArg("name_first is not between 1 and 50 characters")
	}
	if !validName(nameLast) {
		return AuthResult{}, apperrors.InvalidArg("name_last is not between 1 and 50 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, apperrors.Wrap(apperrors.CodeInternal, "hash password", err)
	}

	user, err := s.data.CreateUser(email, string(hash), nameFirst, nameLast)
	if err != nil {
		return AuthResult{}, err
	}
	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{UserID: user.ID, Token: token}, nil
}

// Login authenticates an account. A user who is already logged in gets their
// existing token back.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, ok := s.data.UserByEmail(email)
	if !ok {
		return AuthResult{}, apperrors.InvalidArg("email entered does not belong to a user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, apperrors.InvalidArg("password is not correct")
	}
	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{UserID: user.ID, Token: token}, nil
}

// Logout invalidates the token. Unknown tokens report false, never an error.
func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	return s.sessions.Revoke(ctx, token)
}

const resetCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func (s *Service) newResetCode() string {
	for {
		buf := make([]byte, 6)
		_, _ = rand.Read(buf)
		code := make([]byte, 6)
		for i, b := range buf {
			code[i] = resetCodeAlphabet[int(b)%len(resetCodeAlphabet)]
		}
		if !s.data.ResetCodeInUse(string(code)) {
			return string(code)
		}
	}
}

// RequestPasswordReset records a single-use reset code for the account and,
// when an SMTP sender is configured, mails it out. Unknown emails succeed
// silently so the endpoint never reveals which addresses are registered.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	code := s.newResetCode()
	if !s.data.AssignResetCode(emailAddr, code) {
		return nil
	}
	if s.email != nil && s.email.IsConfigured() {
		user, _ := s.data.UserByEmail(emailAddr)
		go func() {
			if err := s.email.SendPasswordResetEmail(emailAddr, user.Handle, code); err != nil {
				log.Printf("auth: send reset email: %v", err)
			}
		}()
	}
	return nil
}

// ResetPassword consumes a reset code and installs the new password.
func (s *Service) ResetPassword(ctx context.Context, code, newPassword string) error {
	if strings.TrimSpace(code) == "" {
		return apperrors.InvalidArg("reset code invalid")
	}
	if utf8.RuneCountInString(newPassword) < minPasswordLen {
		return apperrors.InvalidArg("password entered is less than 6 characters long")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "hash password", err)
	}
	return s.data.RedeemResetCode(code, string(hash))
}
