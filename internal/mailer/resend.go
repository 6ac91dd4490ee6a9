package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

type Resend struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

// NewResend returns nil unless both the key and sender address are set.
func NewResend(apiKey, from string) *Resend {
	if apiKey == "" || from == "" {
		return nil
	}
	return &Resend{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Resend) Name() string { return "resend" }

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(resendRequest{
		From: r.from, To: []string{msg.To}, Subject: msg.Subject, Text: msg.Text,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
