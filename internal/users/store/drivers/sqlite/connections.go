package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/crewhub/internal/users/domain"
)

type connectionsRepo struct {
	q dbtx
}

// AddConnection inserts the directed edge; INSERT OR IGNORE gives the edge
// set its idempotent no-duplicate semantics at the schema level.
func (r *connectionsRepo) AddConnection(ctx context.Context, ownerID, targetID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO connections (owner_id, target_id, created_at)
		 VALUES (?, ?, ?)`,
		ownerID, targetID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting connection %s -> %s: %w", ownerID, targetID, err)
	}
	return nil
}

func (r *connectionsRepo) ListConnections(ctx context.Context, ownerID string) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT u.id, u.email, u.first_name, u.last_name, u.password_hash, u.role, u.created_at, u.updated_at
		 FROM connections c
		 JOIN users u ON u.id = c.target_id
		 WHERE c.owner_id = ?
		 ORDER BY c.created_at`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing connections for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
