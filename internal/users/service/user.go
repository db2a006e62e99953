package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/crewhub/internal/users/auth"
	"github.com/aussiebroadwan/crewhub/internal/users/domain"
	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/pkg/cryptox"
	"github.com/aussiebroadwan/crewhub/pkg/idx"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrForbidden      = errors.New("operation not permitted")
	ErrEmailTaken     = errors.New("email already registered")
	ErrInvalidRequest = errors.New("invalid request")
)

type UserService struct {
	Store store.Store

	// BaseGrant is the number of invitations a freshly created account
	// starts with.
	BaseGrant int
}

// GetUserByEmail returns a user's info. Permitted for admins and for the
// user looking themself up; anyone else gets ErrForbidden regardless of
// whether the target exists.
func (s *UserService) GetUserByEmail(
	ctx context.Context,
	caller auth.Principal,
	email string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	if !caller.IsAdmin() && caller.Email != email {
		log.Warn("cross-user info lookup denied",
			slog.String("caller_id", caller.UserID),
			slog.String("target_email", email),
		)
		return domain.User{}, ErrForbidden
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, err
	}

	return user, nil
}

// Register creates a user directly, bypassing the invitation workflow.
// Administrative seeding only. The invitation account is created in the
// same transaction as the user.
func (s *UserService) Register(
	ctx context.Context,
	caller auth.Principal,
	firstName, lastName, email, password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if !caller.IsAdmin() {
		log.Warn("direct registration denied",
			slog.String("caller_id", caller.UserID),
			slog.String("email", email),
		)
		return domain.User{}, ErrForbidden
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || firstName == "" || lastName == "" || password == "" {
		return domain.User{}, ErrInvalidRequest
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Accounts().CreateAccount(ctx, domain.InvitationAccount{
			UserID:        user.ID,
			OriginalCount: s.BaseGrant,
			CurrentCount:  s.BaseGrant,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to register user", slog.String("email", email), slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("registered_by", caller.UserID),
	)

	return user, nil
}

// Delete removes a user. Admin only. Connections, the invitation account
// and session tokens cascade; pending registrations the user sent survive
// (the inviter reference is weak, and in-flight registrations must still
// complete).
func (s *UserService) Delete(ctx context.Context, caller auth.Principal, userID string) error {
	log := slogx.FromContext(ctx)

	if !caller.IsAdmin() {
		log.Warn("user deletion denied",
			slog.String("caller_id", caller.UserID),
			slog.String("target_id", userID),
		)
		return ErrForbidden
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().DeleteUser(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to delete user", slog.String("user_id", userID), slog.Any("error", err))
		return err
	}

	log.Info("user deleted",
		slog.String("user_id", userID),
		slog.String("deleted_by", caller.UserID),
	)
	return nil
}

// EnsureAdmin seeds the first admin account on an empty database. A no-op
// once any user exists.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	log := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return ErrInvalidRequest
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	admin := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FirstName:    "admin",
		LastName:     "admin",
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			return err
		}
		return tx.Accounts().CreateAccount(ctx, domain.InvitationAccount{
			UserID:        admin.ID,
			OriginalCount: s.BaseGrant,
			CurrentCount:  s.BaseGrant,
		})
	})
	if err != nil {
		return err
	}

	log.Info("admin account seeded", slog.String("user_id", admin.ID), slog.String("email", email))
	return nil
}
