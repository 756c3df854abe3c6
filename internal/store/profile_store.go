package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
)

var _ ProfileStore = (*SQLiteStore)(nil)

type profileRow struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	DisplayName *string   `db:"display_name"`
	AvatarURL   *string   `db:"avatar_url"`
	CreatedAt   time.Time `db:"created_at"`
}

// UpsertProfile creates the profile for u.Email, or updates the display
// name and avatar of the existing one, and returns the stored row.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, u model.User) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email == "" {
		return model.User{}, apperrors.ErrInvalidEmail
	}

	existing, err := s.GetProfileByEmail(ctx, email)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx,
			"UPDATE profiles SET display_name = COALESCE(?, display_name), avatar_url = COALESCE(?, avatar_url) WHERE id = ?",
			nullable(u.DisplayName), nullable(u.AvatarURL), existing.ID)
		if err != nil {
			return model.User{}, classify(err, fmt.Sprintf("updating profile %s", existing.ID))
		}
		updated, err := s.GetProfile(ctx, existing.ID)
		if err != nil {
			return model.User{}, err
		}
		return *updated, nil
	case !apperrors.IsNotFound(err):
		return model.User{}, err
	}

	u.ID = uuid.New().String()
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO profiles (id, email, display_name, avatar_url, created_at) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Email, nullable(u.DisplayName), nullable(u.AvatarURL), u.CreatedAt)
	if err != nil {
		return model.User{}, classify(err, "creating profile")
	}
	return u, nil
}

// GetProfile retrieves a profile by id.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*model.User, error) {
	return s.getProfile(ctx, "id", id)
}

// GetProfileByEmail retrieves a profile by its (case-insensitive) email.
func (s *SQLiteStore) GetProfileByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getProfile(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (s *SQLiteStore) getProfile(ctx context.Context, column, value string) (*model.User, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, email, display_name, avatar_url, created_at FROM profiles WHERE "+column+" = ?",
		value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.WithMessage(apperrors.ErrProfileNotFound,
			fmt.Sprintf("profile with %s %q not found", column, value))
	}
	if err != nil {
		return nil, classify(err, "getting profile")
	}
	u := model.User(row)
	return &u, nil
}
