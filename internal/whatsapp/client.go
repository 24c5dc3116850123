// Package whatsapp sends messages through the Twilio WhatsApp API.
package whatsapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reportes_backend/platform/config"
	"reportes_backend/platform/logger"
)

const defaultBaseURL = "https://api.twilio.com"

// Client talks to the Twilio Messages API. A nil *Client is a valid
// disabled sender: NewClient returns nil when the Twilio credentials are
// incomplete, Enabled reports false and SendMessage silently succeeds.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	http       *http.Client
	log        *logger.Logger
}

// NewClient creates a Twilio WhatsApp client. Returns nil unless account SID,
// auth token and sender number are all configured.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetTwilioAccountSID() == "" || cfg.GetTwilioAuthToken() == "" || cfg.GetTwilioWhatsAppFrom() == "" {
		return nil
	}

	return &Client{
		baseURL:    defaultBaseURL,
		accountSID: cfg.GetTwilioAccountSID(),
		authToken:  cfg.GetTwilioAuthToken(),
		from:       cfg.GetTwilioWhatsAppFrom(),
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Enabled reports whether the gateway is configured. Callers that need to
// tell a real delivery from the disabled no-op check this before counting
// sends.
func (c *Client) Enabled() bool {
	return c != nil
}

// SendMessage delivers a WhatsApp message to an E.164 phone number.
func (c *Client) SendMessage(ctx context.Context, phoneNumber string, message string) error {
	if c == nil {
		return nil
	}

	form := url.Values{}
	form.Set("From", "whatsapp:"+c.from)
	form.Set("To", "whatsapp:"+phoneNumber)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("whatsapp sent", "to", phoneNumber)
	return nil
}
