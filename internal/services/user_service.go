package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/repo"
)

const maxDisplayNameRunes = 80

// UserService registers rider profiles and answers role checks.
type UserService struct {
	DB *gorm.DB
}

// Register creates the caller's profile or refreshes its display name.
func (s *UserService) Register(ctx context.Context, userID, displayName string) (*domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalid("user_id", "required")
	}
	if len(userID) > 64 {
		return nil, invalid("user_id", "too long")
	}
	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) > maxDisplayNameRunes {
		return nil, invalid("display_name", "too long")
	}
	if _, err := repo.UpsertUser(ctx, s.DB, userID, displayName); err != nil {
		return nil, dataAccess("upsert user", err)
	}
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return nil, dataAccess("get user", err)
	}
	return u, nil
}

// IsMaster reports whether userID holds the admin role. Unknown users are not
// masters.
func (s *UserService) IsMaster(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, nil
	}
	u, err := repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dataAccess("get user", err)
	}
	return u.IsMaster, nil
}
