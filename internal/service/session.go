package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasks-client/internal/model"
	"github.com/BuzzLyutic/tasks-client/internal/remote"
	"github.com/BuzzLyutic/tasks-client/internal/store"
)

const (
	fallbackAuthMessage = "Erro desconhecido. Tente novamente."
	fallbackUsername    = "Usuário"
)

// AuthError is a rejected sign-in or sign-up. Message is meant for the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// AuthAPI is the slice of the task service used for accounts.
type AuthAPI interface {
	SignIn(ctx context.Context, creds model.Credentials) (string, error)
	SignUp(ctx context.Context, reg model.Registration) error
}

type Session struct {
	Token    string
	Username string
}

type SessionService struct {
	api    AuthAPI
	kv     store.KV
	logger *zap.Logger

	mu      sync.RWMutex
	session *Session
}

func NewSessionService(api AuthAPI, kv store.KV, logger *zap.Logger) *SessionService {
	return &SessionService{
		api:    api,
		kv:     kv,
		logger: logger,
	}
}

func (s *SessionService) SignIn(ctx context.Context, email, password string) (string, error) {
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}

	token, err := s.api.SignIn(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		s.logger.Warn("sign in rejected", zap.String("email", email), zap.Error(err))
		return "", authError(err)
	}

	if err := s.kv.Set(ctx, store.KeyToken, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	s.setSession(&Session{Token: token, Username: s.displayName(token)})
	return token, nil
}

// SignUp creates an account; it does not sign the user in.
func (s *SessionService) SignUp(ctx context.Context, name, email, password, confirmPassword string) error {
	if password != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if !ValidName(name) {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	if err := s.api.SignUp(ctx, model.Registration{Name: name, Email: email, Password: password}); err != nil {
		s.logger.Warn("sign up rejected", zap.String("email", email), zap.Error(err))
		return authError(err)
	}
	return nil
}

// RestoreSession rehydrates the session from a stored token. The token is
// decoded without signature verification; it only feeds the display name.
func (s *SessionService) RestoreSession(ctx context.Context) (*Session, bool) {
	token, err := s.kv.Get(ctx, store.KeyToken)
	if err != nil {
		if !errors.Is(err, store.ErrorNotFound) {
			s.logger.Error("failed to read token", zap.Error(err))
		}
		return nil, false
	}

	name, err := DecodeUsername(token)
	if err != nil {
		s.logger.Error("failed to decode stored token", zap.Error(err))
		return nil, false
	}

	sess := &Session{Token: token, Username: name}
	s.setSession(sess)
	return sess, true
}

func (s *SessionService) SignOut(ctx context.Context) error {
	if err := s.kv.Remove(ctx, store.KeyToken); err != nil {
		s.logger.Error("failed to remove token", zap.Error(err))
		return err
	}
	s.setSession(nil)
	return nil
}

// Token reads the stored token on every call, so a sign-out elsewhere is seen immediately.
func (s *SessionService) Token(ctx context.Context) (string, error) {
	token, err := s.kv.Get(ctx, store.KeyToken)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", store.ErrorNotFound
	}
	return token, nil
}

func (s *SessionService) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

func (s *SessionService) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Username
}

func (s *SessionService) setSession(sess *Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

func (s *SessionService) displayName(token string) string {
	name, err := DecodeUsername(token)
	if err != nil {
		s.logger.Warn("token payload unreadable", zap.Error(err))
		return fallbackUsername
	}
	return name
}

// DecodeUsername reads the "name" claim of a JWT without verifying it.
func DecodeUsername(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	if name, ok := claims["name"].(string); ok && name != "" {
		return name, nil
	}
	return fallbackUsername, nil
}

func authError(err error) error {
	msg := remote.Message(err)
	if msg == "" {
		msg = fallbackAuthMessage
	}
	return &AuthError{Message: msg, Err: err}
}
