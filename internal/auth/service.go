// Package auth resolves the signed-in user. Sessions are the profile id
// kept in the credential vault; profiles live in the store.
package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/credential"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/store"
	"github.com/nhle/tasknest/internal/validate"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

var _ TokenStore = (*credential.Vault)(nil)

// Service is the identity provider used by the repositories.
type Service struct {
	profiles store.ProfileStore
	tokens   TokenStore
	val      *validate.Validator
	log      *zap.SugaredLogger
}

var _ store.UserSource = (*Service)(nil)

// New creates an auth service.
func New(profiles store.ProfileStore, tokens TokenStore, log *zap.SugaredLogger) *Service {
	return &Service{
		profiles: profiles,
		tokens:   tokens,
		val:      validate.New(),
		log:      log,
	}
}

// CurrentUser returns the signed-in user, or nil when nobody is signed in.
// A session pointing at a deleted profile yields ErrSessionExpired.
func (s *Service) CurrentUser(ctx context.Context) (*model.User, error) {
	token, err := s.tokens.Token()
	if errors.Is(err, credential.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnauthenticated, err)
	}

	u, err := s.profiles.GetProfile(ctx, token)
	if apperrors.IsNotFound(err) {
		s.log.Infow("stored session has no profile", "user_id", token)
		return nil, apperrors.Wrap(apperrors.ErrSessionExpired, err)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CurrentUserID returns the signed-in user's id, or "" if signed out.
// An expired session counts as signed out.
func (s *Service) CurrentUserID(ctx context.Context) (string, error) {
	u, err := s.CurrentUser(ctx)
	if errors.Is(err, apperrors.ErrSessionExpired) {
		return "", nil
	}
	if err != nil || u == nil {
		return "", err
	}
	return u.ID, nil
}

// SignIn finds or creates the profile for email and stores the session.
// A non-empty displayName replaces the stored one.
func (s *Service) SignIn(ctx context.Context, email, displayName string) (*model.User, error) {
	if err := s.val.Email(email); err != nil {
		return nil, err
	}

	in := model.User{Email: strings.TrimSpace(email)}
	if name := strings.TrimSpace(displayName); name != "" {
		in.DisplayName = &name
	}

	u, err := s.profiles.UpsertProfile(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.SetToken(u.ID); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnauthenticated, err)
	}

	s.log.Infow("signed in", "user_id", u.ID, "email", u.Email)
	return &u, nil
}

// SignOut forgets the stored session.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.tokens.Clear(); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	s.log.Info("signed out")
	return nil
}
