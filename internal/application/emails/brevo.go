package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"setu-backend/internal/domain"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches the Brevo API v3 transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ReviewNotice describes a review decision on a field submission.
type ReviewNotice struct {
	ProjectTitle   string
	CheckpointName string
	Status         domain.SubmissionStatus
	ReviewNotes    string
}

// Sender sends transactional emails. Callers treat a nil Sender as "notifications off".
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, name, role string) error
	SendReviewOutcome(ctx context.Context, toEmail, name string, n ReviewNotice) error
}

// BrevoClient sends emails through Brevo (Sendinblue). An empty APIKey makes every send a no-op.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@gramsetu.gov.in"
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

func (c *BrevoClient) send(ctx context.Context, toEmail, toName, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Gram Pragati Setu"},
		To:          []BrevoTo{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: c.from(), Name: "Gram Pragati Setu"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome tells a newly provisioned user which role they hold.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, name, role string) error {
	if name == "" {
		name = "there"
	}
	return c.send(ctx, toEmail, name, "Welcome to Gram Pragati Setu", Layout(welcomeContent(name, role)))
}

// SendReviewOutcome tells the submitter how their checkpoint evidence was reviewed.
func (c *BrevoClient) SendReviewOutcome(ctx context.Context, toEmail, name string, n ReviewNotice) error {
	subject := fmt.Sprintf("%s: %s", reviewHeadline(n.Status), n.CheckpointName)
	return c.send(ctx, toEmail, name, subject, Layout(reviewContent(name, n)))
}
