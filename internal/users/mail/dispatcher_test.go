package mail

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu       sync.Mutex
	sent     []Message
	attempts int
	err      error
}

func (m *captureMailer) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *captureMailer) attemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func TestDispatcher(t *testing.T) {
	t.Parallel()

	t.Run("delivers enqueued messages", func(t *testing.T) {
		mailer := &captureMailer{}
		d := NewDispatcher(mailer, 8, slog.Default())
		d.Start()

		d.Enqueue(Message{To: "bob@example.com", Subject: "hi"})
		d.Enqueue(Message{To: "carol@example.com", Subject: "hi"})

		require.Eventually(t, func() bool {
			return mailer.count() == 2
		}, 2*time.Second, 10*time.Millisecond)

		d.Stop()
	})

	t.Run("full queue drops instead of blocking", func(t *testing.T) {
		mailer := &captureMailer{}
		d := NewDispatcher(mailer, 1, slog.Default())
		// Worker never started: the queue stays full after one message.

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 10; i++ {
				d.Enqueue(Message{To: "bob@example.com"})
			}
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Enqueue blocked on a full queue")
		}
	})

	t.Run("delivery failure does not stop the worker", func(t *testing.T) {
		mailer := &captureMailer{err: errors.New("smtp down")}
		d := NewDispatcher(mailer, 8, slog.Default())
		d.Start()

		d.Enqueue(Message{To: "bob@example.com"})

		require.Eventually(t, func() bool {
			return mailer.attemptCount() == 1
		}, 2*time.Second, 10*time.Millisecond)

		mailer.mu.Lock()
		mailer.err = nil
		mailer.mu.Unlock()

		d.Enqueue(Message{To: "carol@example.com"})

		require.Eventually(t, func() bool {
			return mailer.count() == 1
		}, 2*time.Second, 10*time.Millisecond)

		d.Stop()
		require.Equal(t, "carol@example.com", mailer.sent[0].To)
	})
}

func TestSendGridMailer(t *testing.T) {
	t.Parallel()

	t.Run("posts the expected payload", func(t *testing.T) {
		var got sgPayload
		var auth string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		m := &SendGridMailer{
			APIKey:    "sg-key",
			FromEmail: "noreply@example.com",
			Endpoint:  srv.URL,
		}

		err := m.Send(context.Background(), Message{
			To:      "bob@example.com",
			Subject: "welcome",
			Body:    "hello",
		})
		require.NoError(t, err)

		require.Equal(t, "Bearer sg-key", auth)
		require.Equal(t, "welcome", got.Subject)
		require.Equal(t, "noreply@example.com", got.From.Email)
		require.Len(t, got.Personalizations, 1)
		require.Equal(t, "bob@example.com", got.Personalizations[0].To[0].Email)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnauthorized)
		}))
		defer srv.Close()

		m := &SendGridMailer{APIKey: "bad", Endpoint: srv.URL}
		err := m.Send(context.Background(), Message{To: "bob@example.com"})
		require.Error(t, err)
	})
}
