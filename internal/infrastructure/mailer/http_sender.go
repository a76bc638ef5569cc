// Package mailer delivers rendered emails to the transactional mail API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"atelier/internal/domain"

	"go.uber.org/zap"
)

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type HTTPSender struct {
	client *http.Client
	apiURL string
	apiKey string
	from   string
	logger *zap.Logger
}

func NewHTTPSender(apiURL, apiKey, from string, timeout time.Duration, logger *zap.Logger) *HTTPSender {
	return &HTTPSender{
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		logger: logger,
	}
}

func (s *HTTPSender) Send(ctx context.Context, email domain.Email) error {
	body, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshaling email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling mail api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail api returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	s.logger.Info("email sent", zap.String("to", email.To), zap.String("subject", email.Subject))
	return nil
}

// LogSender only logs emails. Used when no mail API is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, email domain.Email) error {
	s.logger.Info("email not sent, log transport",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.Int("htmlBytes", len(email.HTML)),
	)
	return nil
}
