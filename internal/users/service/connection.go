package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/crewhub/internal/users/auth"
	"github.com/aussiebroadwan/crewhub/internal/users/domain"
	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/pkg/slogx"
)

// ConnectionService manages the directed follow graph. Every operation is
// owner-only: admins get no special access here.
type ConnectionService struct {
	Store store.Store
}

// List returns the users ownerID connects to, oldest edge first.
func (s *ConnectionService) List(
	ctx context.Context,
	caller auth.Principal,
	ownerID string,
) ([]domain.User, error) {
	if caller.UserID != ownerID {
		return nil, ErrForbidden
	}

	if _, err := s.Store.Users().GetUserByID(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.Store.Connections().ListConnections(ctx, ownerID)
}

// Add records the edge ownerID -> targetID. Re-adding an existing edge
// succeeds without changing anything.
func (s *ConnectionService) Add(
	ctx context.Context,
	caller auth.Principal,
	ownerID, targetID string,
) error {
	log := slogx.FromContext(ctx)

	if caller.UserID != ownerID {
		log.Warn("connection change on another user's graph denied",
			slog.String("caller_id", caller.UserID),
			slog.String("owner_id", ownerID),
		)
		return ErrForbidden
	}

	// Self-loops are a permission error, not a validation error, matching
	// the ownership failures above.
	if ownerID == targetID {
		return ErrForbidden
	}

	if _, err := s.Store.Users().GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.Store.Connections().AddConnection(ctx, ownerID, targetID); err != nil {
		log.Error("failed to add connection",
			slog.String("owner_id", ownerID),
			slog.String("target_id", targetID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("connection added",
		slog.String("owner_id", ownerID),
		slog.String("target_id", targetID),
	)
	return nil
}
