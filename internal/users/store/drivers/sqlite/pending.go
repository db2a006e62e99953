package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/crewhub/internal/users/domain"
)

type pendingRepo struct {
	q dbtx
}

const pendingColumns = `id, email, first_name, last_name, login_token, secret_key_hash, inviter_id, created_at`

func scanPending(row interface{ Scan(...any) error }) (domain.PendingRegistration, error) {
	var p domain.PendingRegistration
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.LoginToken,
		&p.SecretKeyHash,
		&p.InviterID,
		&p.CreatedAt,
	)
	return p, err
}

func (r *pendingRepo) CreatePending(ctx context.Context, p domain.PendingRegistration) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO pending_registrations (id, email, first_name, last_name, login_token, secret_key_hash, inviter_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.FirstName, p.LastName, p.LoginToken, p.SecretKeyHash, p.InviterID, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting pending registration for %s: %w", p.Email, mapConstraint(err))
	}
	return nil
}

func (r *pendingRepo) GetPendingByToken(ctx context.Context, loginToken string) (domain.PendingRegistration, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+pendingColumns+` FROM pending_registrations WHERE login_token = ?`, loginToken)

	p, err := scanPending(row)
	if err != nil {
		return domain.PendingRegistration{}, mapNotFound(err)
	}
	return p, nil
}

func (r *pendingRepo) GetPendingByEmail(ctx context.Context, email string) (domain.PendingRegistration, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+pendingColumns+` FROM pending_registrations WHERE email = ?`, email)

	p, err := scanPending(row)
	if err != nil {
		return domain.PendingRegistration{}, mapNotFound(err)
	}
	return p, nil
}

func (r *pendingRepo) DeletePending(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM pending_registrations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting pending registration %s: %w", id, err)
	}
	return nil
}
