package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kontorapp/kontor/internal/config"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/httpclient"
	"github.com/kontorapp/kontor/internal/logger"
)

// Sender delivers a due-task reminder to a user. Delivery is best effort:
// false with a nil error means the message was dropped on purpose.
type Sender interface {
	Notify(ctx context.Context, email, subject string, dueDate time.Time) (bool, error)
}

// NewSender returns a webhook sender when a webhook url is configured and a
// log-only sender otherwise.
func NewSender(cfg *config.Configuration, log *logger.Logger) Sender {
	if cfg.Notification.WebhookURL == "" {
		return NewLogSender(log)
	}

	client := httpclient.NewRetryingClient(httpclient.ClientConfig{
		Timeout:  cfg.Notification.Timeout,
		RetryMax: cfg.Notification.Retries,
	}, log)
	return NewWebhookSender(cfg.Notification.WebhookURL, client, log)
}

type logSender struct {
	logger *logger.Logger
}

// NewLogSender writes notifications to the log only
func NewLogSender(log *logger.Logger) Sender {
	return &logSender{logger: log}
}

func (s *logSender) Notify(_ context.Context, email, subject string, dueDate time.Time) (bool, error) {
	s.logger.Infow("task notification",
		"email", email,
		"subject", subject,
		"due_date", dueDate.Format(time.DateOnly),
	)
	return true, nil
}

// WebhookPayload is the JSON body posted to the notification webhook
type WebhookPayload struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	DueDate string `json:"due_date"`
	SentAt  string `json:"sent_at"`
}

type webhookSender struct {
	url    string
	client httpclient.Client
	logger *logger.Logger
}

// NewWebhookSender posts every notification to url
func NewWebhookSender(url string, client httpclient.Client, log *logger.Logger) Sender {
	return &webhookSender{url: url, client: client, logger: log}
}

func (s *webhookSender) Notify(ctx context.Context, email, subject string, dueDate time.Time) (bool, error) {
	if email == "" {
		s.logger.Debugw("skipping notification without recipient", "subject", subject)
		return false, nil
	}

	body, err := json.Marshal(WebhookPayload{
		Email:   email,
		Subject: subject,
		DueDate: dueDate.Format(time.DateOnly),
		SentAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("failed to encode notification").
			Mark(ierr.ErrSystem)
	}

	if _, err := s.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    s.url,
		Body:   body,
	}); err != nil {
		return false, err
	}
	return true, nil
}
