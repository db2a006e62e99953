package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/crewhub/internal/users/domain"
)

type sessionsRepo struct {
	q dbtx
}

func (r *sessionsRepo) CreateSessionToken(ctx context.Context, t domain.SessionToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO session_tokens (id, user_id, token_hash, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session token %s: %w", t.ID, mapConstraint(err))
	}
	return nil
}

func (r *sessionsRepo) GetSessionTokenByHash(ctx context.Context, hash string) (domain.SessionToken, error) {
	var t domain.SessionToken
	err := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, created_at
		 FROM session_tokens
		 WHERE token_hash = ? AND expires_at > ?`,
		hash, time.Now().UTC(),
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.SessionToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *sessionsRepo) DeleteExpiredSessionTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM session_tokens WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite: deleting expired session tokens: %w", err)
	}
	return nil
}
