package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const resendURL = "https://api.resend.com/emails"

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	ReplyTo string
}

// Mailer delivers a rendered email.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// ResendMailer delivers mail through the Resend HTTP API.
type ResendMailer struct {
	APIKey  string
	From    string
	BaseURL string
	Client  *http.Client
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		APIKey:  apiKey,
		From:    from,
		BaseURL: resendURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if m.APIKey == "" {
		return fmt.Errorf("mail delivery not configured")
	}
	body, err := json.Marshal(resendRequest{
		From:    m.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}

// Render builds the message for an email task.
func Render(taskType string, p EmailPayload) (Message, error) {
	greeting := "Hi"
	if p.Name != "" {
		greeting = "Hi " + p.Name
	}
	m := Message{To: p.To}
	switch taskType {
	case TypeVerificationEmail:
		m.Subject = "Verify your Road Darts account"
		m.Text = fmt.Sprintf("%s,\n\nConfirm your email address: %s\n", greeting, p.Link)
	case TypeWelcomeEmail:
		m.Subject = "Welcome to Road Darts"
		m.Text = fmt.Sprintf("%s,\n\nThanks for joining Road Darts.\n", greeting)
	case TypePasswordResetEmail:
		m.Subject = "Reset your Road Darts password"
		m.Text = fmt.Sprintf("%s,\n\nReset your password within the hour: %s\n", greeting, p.Link)
	case TypeContactOwnerEmail:
		m.Subject = fmt.Sprintf("New message about %s", p.ListingName)
		m.Text = fmt.Sprintf("%s (%s) wrote:\n\n%s\n", p.SenderName, p.ReplyTo, p.Message)
		m.ReplyTo = p.ReplyTo
	default:
		return m, fmt.Errorf("unknown email task %q", taskType)
	}
	return m, nil
}
