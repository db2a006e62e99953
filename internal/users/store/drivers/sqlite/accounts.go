package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/crewhub/internal/users/domain"
)

type accountsRepo struct {
	q dbtx
}

func (r *accountsRepo) GetAccount(ctx context.Context, userID string) (domain.InvitationAccount, error) {
	var a domain.InvitationAccount
	err := r.q.QueryRowContext(ctx,
		`SELECT user_id, original_count, current_count, created_at, updated_at
		 FROM invitation_accounts WHERE user_id = ?`, userID,
	).Scan(&a.UserID, &a.OriginalCount, &a.CurrentCount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.InvitationAccount{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.InvitationAccount) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO invitation_accounts (user_id, original_count, current_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.OriginalCount, a.CurrentCount, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting invitation account for %s: %w", a.UserID, mapConstraint(err))
	}
	return nil
}

// Debit decrements current_count by one, guarded in SQL so a concurrent
// debit of a count-of-one account yields exactly one success.
func (r *accountsRepo) Debit(ctx context.Context, userID string) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE invitation_accounts
		 SET current_count = current_count - 1, updated_at = ?
		 WHERE user_id = ? AND current_count > 0`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: debiting invitation account for %s: %w", userID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *accountsRepo) Credit(ctx context.Context, userID string, amount int) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO invitation_accounts (user_id, original_count, current_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     original_count = original_count + excluded.original_count,
		     current_count  = current_count + excluded.current_count,
		     updated_at     = excluded.updated_at`,
		userID, amount, amount, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: crediting invitation account for %s: %w", userID, err)
	}
	return nil
}
