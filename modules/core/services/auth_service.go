package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/session"
	"github.com/iota-uz/mailstock/pkg/configuration"
)

type AuthService struct {
	users    user.Repository
	sessions session.Repository
}

func NewAuthService(users user.Repository, sessions session.Repository) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Login verifies credentials and opens a session. Non-admin users without a
// team assignment are rejected; they cannot participate in the workflow yet.
func (s *AuthService) Login(ctx context.Context, username, password string) (*user.User, *session.Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, newServiceError(http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS", "invalid username or password", err)
	}
	if !u.CheckPassword(password) {
		return nil, nil, newServiceError(http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS", "invalid username or password", nil)
	}
	if !u.IsAdmin && !u.InTeam() {
		return nil, nil, newServiceError(http.StatusForbidden, "AUTH_NO_TEAM", "you are not assigned to a team yet", nil)
	}

	conf := configuration.Use()
	sess := &session.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(conf.SessionDuration),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, nil, mapPgErrorToServiceError(err)
	}
	return u, sess, nil
}

// Cookie builds the session cookie for a freshly opened session.
func (s *AuthService) Cookie(sess *session.Session) *http.Cookie {
	conf := configuration.Use()
	return &http.Cookie{
		Name:     conf.SidCookieKey,
		Value:    sess.Token,
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   conf.GoAppEnvironment == configuration.Production,
		Path:     "/",
	}
}

// Authorize resolves a session token to its user. Expired sessions are
// deleted and rejected.
func (s *AuthService) Authorize(ctx context.Context, token string) (*user.User, *session.Session, error) {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, mapPgErrorToServiceError(err)
	}
	if sess.Expired() {
		_ = s.sessions.Delete(ctx, token)
		return nil, nil, newServiceError(http.StatusUnauthorized, "AUTH_SESSION_EXPIRED", "session expired", nil)
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, nil, mapPgErrorToServiceError(err)
	}
	return u, sess, nil
}

// DeleteExpiredSessions drops all sessions past their expiry and returns
// how many were removed.
func (s *AuthService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	deleted, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, mapPgErrorToServiceError(err)
	}
	return deleted, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return mapPgErrorToServiceError(err)
	}
	return nil
}
