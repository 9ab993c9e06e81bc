package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"
)

const searchLimit = 10

type UserService struct {
	store store.Store
	cache RoleCache
	log   *slog.Logger
	now   func() time.Time
}

// Search returns up to ten users whose email contains fragment, ignoring case
func (s *UserService) Search(ctx context.Context, fragment string) ([]models.User, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, newError(ErrValidation, "Email is required")
	}
	return s.store.Users().SearchEmail(ctx, fragment, searchLimit)
}

// SetRole grants role to the user with id. Only user and admin can be granted.
func (s *UserService) SetRole(ctx context.Context, id string, role models.UserRole) error {
	if !role.Assignable() {
		return newError(ErrValidation, "Invalid role")
	}
	if err := s.store.Users().SetRole(ctx, id, role); err != nil {
		return notFound(err, "User not found")
	}
	user, err := s.store.Users().ByID(ctx, id)
	if err != nil {
		return notFound(err, "User not found")
	}
	s.forget(ctx, user.Email)
	s.log.Info("user role updated", "user", id, "role", role)
	return nil
}

// RoleOf returns the role of email, "user" when none was ever stored
func (s *UserService) RoleOf(ctx context.Context, email string) (models.UserRole, error) {
	if email == "" {
		return "", newError(ErrValidation, "Email is required")
	}
	if role, ok, err := s.cache.Get(ctx, email); err != nil {
		s.log.Warn("role cache read failed", "email", email, "error", err)
	} else if ok {
		return role, nil
	}

	user, err := s.store.Users().ByEmail(ctx, email)
	if err != nil {
		return "", notFound(err, "User not found")
	}
	role := user.EffectiveRole()
	if err := s.cache.Set(ctx, email, role); err != nil {
		s.log.Warn("role cache write failed", "email", email, "error", err)
	}
	return role, nil
}

// IsAdmin reports whether email belongs to an existing admin
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	role, err := s.RoleOf(ctx, email)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}

// EnsureUser stores u on first sign-in. Any role sent by the client is
// replaced with user. It reports whether a new document was written.
func (s *UserService) EnsureUser(ctx context.Context, u *models.User) (bool, string, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return false, "", newError(ErrValidation, "Email is required")
	}
	now := s.now()
	u.ID = ""
	u.Role = models.RoleUser
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.LastLogIn.IsZero() {
		u.LastLogIn = now
	}

	inserted, err := s.store.Users().Insert(ctx, u)
	if err != nil {
		return false, "", err
	}
	if !inserted {
		return false, "", nil
	}
	s.log.Info("user created", "user", u.ID, "email", u.Email)
	return true, u.ID, nil
}

// PromoteAdmin makes email an admin, creating the user when missing
func (s *UserService) PromoteAdmin(ctx context.Context, email string) error {
	if _, _, err := s.EnsureUser(ctx, &models.User{Email: email}); err != nil {
		return err
	}
	if _, err := s.store.Users().SetRoleByEmail(ctx, strings.TrimSpace(email), models.RoleAdmin); err != nil {
		return err
	}
	s.forget(ctx, email)
	s.log.Info("user promoted to admin", "email", email)
	return nil
}

func (s *UserService) forget(ctx context.Context, email string) {
	if err := s.cache.Delete(ctx, email); err != nil {
		s.log.Warn("role cache invalidation failed", "email", email, "error", err)
	}
}
