package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/kontorapp/kontor/internal/notification"
)

var _ notification.Sender = (*RecordingSender)(nil)

// SentNotification is one call recorded by RecordingSender
type SentNotification struct {
	Email   string
	Subject string
	DueDate time.Time
}

// RecordingSender records every notification. Err, when set, is returned
// from Notify instead.
type RecordingSender struct {
	mu   sync.Mutex
	sent []SentNotification
	Err  error
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

func (r *RecordingSender) Notify(_ context.Context, email, subject string, dueDate time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return false, r.Err
	}
	r.sent = append(r.sent, SentNotification{Email: email, Subject: subject, DueDate: dueDate})
	return true, nil
}

func (r *RecordingSender) Sent() []SentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SentNotification(nil), r.sent...)
}
