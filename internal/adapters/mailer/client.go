package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client talks to the mail-delivery service over HTTP. Transient
// failures are retried with exponential backoff; the caller treats the
// whole call as best-effort anyway.
type Client struct {
	baseURL     string
	frontendURL string
	client      *http.Client
}

func NewClient(baseURL, frontendURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, frontendURL: frontendURL, client: &http.Client{Timeout: timeout}}
}

func (c *Client) SendUserSignUp(ctx context.Context, to, firstName string) error {
	payload := map[string]string{"to": to, "first_name": firstName}
	return c.post(ctx, "/api/v1/mail/user-signup", payload)
}

func (c *Client) SendForgotPassword(ctx context.Context, to, hash string) error {
	payload := map[string]string{
		"to":        to,
		"reset_url": fmt.Sprintf("%s/password-change?hash=%s", c.frontendURL, hash),
	}
	return c.post(ctx, "/api/v1/mail/forgot-password", payload)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("mailer returned %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("mailer returned %d", resp.StatusCode))
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(operation, policy)
}
