package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const sendgridMailEndpoint = "https://api.sendgrid.com/v3/mail/send"

// SendGridMailer delivers messages through the SendGrid HTTP API.
type SendGridMailer struct {
	APIKey    string
	FromEmail string
	FromName  string

	// Endpoint overrides the SendGrid API URL, used by tests.
	Endpoint string

	Client *http.Client
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	payload := sgPayload{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: msg.To}}}},
		From:             sgAddress{Email: m.FromEmail, Name: m.FromName},
		Subject:          msg.Subject,
		Content:          []sgContent{{Type: "text/plain", Value: msg.Body}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mail: marshaling payload: %w", err)
	}

	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = sendgridMailEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mail: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("mail: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail: provider returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
