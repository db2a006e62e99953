package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/crewhub/internal/users/auth"
	"github.com/aussiebroadwan/crewhub/internal/users/domain"
	"github.com/aussiebroadwan/crewhub/internal/users/mail"
	"github.com/aussiebroadwan/crewhub/internal/users/store"
	"github.com/aussiebroadwan/crewhub/internal/users/store/drivers/sqlite"
	"github.com/aussiebroadwan/crewhub/pkg/cryptox"
	"github.com/aussiebroadwan/crewhub/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// recordingNotifier captures enqueued messages so tests can pull the
// registration key out of the invitation mail.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (n *recordingNotifier) Enqueue(msg mail.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// lastKey returns the registration key from the most recent message. The
// key is the final line of the invitation body.
func (n *recordingNotifier) lastKey(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.messages)

	body := strings.TrimSpace(n.messages[len(n.messages)-1].Body)
	lines := strings.Split(body, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// seedUser inserts a user with an invitation account of the given quota and
// returns the user along with a matching principal.
func seedUser(t *testing.T, st store.Store, email string, role domain.Role, quota int) (domain.User, auth.Principal) {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: hash,
		Role:         role,
	}

	err = st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Accounts().CreateAccount(ctx, domain.InvitationAccount{
			UserID:        user.ID,
			OriginalCount: quota,
			CurrentCount:  quota,
		})
	})
	require.NoError(t, err)

	return user, auth.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
}

func requireAccount(t *testing.T, st store.Store, userID string, original, current int) {
	t.Helper()

	account, err := st.Accounts().GetAccount(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, original, account.OriginalCount)
	require.Equal(t, current, account.CurrentCount)
}
