// Package mailer sends transactional email through an HTTP delivery API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rosewood-bakery/storefront/pkg/logger"
)

// Message is a single outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPSender delivers mail through a JSON-over-HTTP provider endpoint.
type HTTPSender struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
	log      *logger.Logger
}

var _ Sender = (*HTTPSender)(nil)

// NewHTTPSender constructs a sender for the given provider endpoint.
func NewHTTPSender(endpoint, apiKey, from string, log *logger.Logger) *HTTPSender {
	if log == nil {
		log = logger.NewDefault("mailer")
	}
	return &HTTPSender{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send posts the message to the provider.
func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	s.log.WithField("to", msg.To).WithField("subject", msg.Subject).Info("mail sent")
	return nil
}

// NoopSender drops all messages. Used when no provider is configured.
type NoopSender struct{}

var _ Sender = NoopSender{}

// Send discards the message.
func (NoopSender) Send(context.Context, Message) error { return nil }
