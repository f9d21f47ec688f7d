package service

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"

	"github.com/AdamBeresnev/aux-analytics/internal/store"
	users "github.com/AdamBeresnev/aux-analytics/internal/user"
	"github.com/AdamBeresnev/aux-analytics/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
)

const GuestUserID = "00000000-0000-0000-0000-000000000001"

type UserService struct {
	db          *sqlx.DB
	store       *store.UserStore
	adminEmails []string
}

func NewUserService(db *sqlx.DB, store *store.UserStore, adminEmails []string) *UserService {
	normalized := make([]string, 0, len(adminEmails))
	for _, email := range adminEmails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			normalized = append(normalized, email)
		}
	}
	return &UserService{db: db, store: store, adminEmails: normalized}
}

func (s *UserService) isAdminEmail(email string) bool {
	return slices.Contains(s.adminEmails, strings.ToLower(strings.TrimSpace(email)))
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		isAdmin := user.IsAdmin || s.isAdminEmail(user.Email)
		if utils.Deref(user.AvatarURL) != gothUser.AvatarURL || user.Username != displayName(gothUser) || isAdmin != user.IsAdmin {
			user.AvatarURL = utils.NilIfBlank(gothUser.AvatarURL)
			user.Username = displayName(gothUser)
			user.IsAdmin = isAdmin
			if err := s.store.UpdateUserProfile(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		newUser := &users.User{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   displayName(gothUser),
			Provider:   &gothUser.Provider,
			ProviderID: &gothUser.UserID,
			AvatarURL:  utils.NilIfBlank(gothUser.AvatarURL),
			IsAdmin:    s.isAdminEmail(gothUser.Email),
		}
		err := s.store.CreateUser(ctx, newUser)
		return newUser, err
	}

	return nil, err
}

func displayName(gothUser goth.User) string {
	if gothUser.NickName != "" {
		return gothUser.NickName
	}
	if gothUser.Name != "" {
		return gothUser.Name
	}
	return gothUser.Email
}

// EnsureGuestUser returns the shared guest account, creating it on first use. The guest is the
// local superuser and may run admin actions.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	guestID := uuid.MustParse(GuestUserID)
	user, err := s.store.GetUser(ctx, guestID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		guestUser := &users.User{
			ID:       guestID,
			Email:    "guest@aux-analytics.app",
			Username: "Guest User",
			IsAdmin:  true,
		}
		err := s.store.CreateUser(ctx, guestUser)
		return guestUser, err
	}
	return nil, err
}
