// Package notify publishes platform events to a message broker so
// external collaborators (mail delivery, audit sinks, dashboards) can
// react without being called inline. The auth core publishes
// password-reset events here; actual email delivery lives outside this
// service.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Channels events are published to.
const (
	ChannelPasswordReset   = "auth.password-reset"
	ChannelPasswordChanged = "auth.password-changed"
	ChannelNoticePublished = "notices.published"
)

// Publisher is the broker-agnostic side of the notifier.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// PasswordResetEvent asks an external collaborator to deliver a reset
// message for the account. The core only validates the account exists.
type PasswordResetEvent struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// PasswordChangedEvent records a completed password reset.
type PasswordChangedEvent struct {
	UserID    string    `json:"user_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// NoticeEvent announces a freshly published notice.
type NoticeEvent struct {
	NoticeID    string    `json:"notice_id"`
	Title       string    `json:"title"`
	Audience    string    `json:"audience,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Notifier JSON-encodes events onto a Publisher. Publish failures are
// the caller's to log; the notifier never retries.
type Notifier struct {
	publisher Publisher
}

// New constructs a Notifier. A nil publisher yields a notifier that
// drops every event, which keeps single-process deployments working
// without a broker.
func New(publisher Publisher) *Notifier {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Notifier{publisher: publisher}
}

// PasswordReset publishes a password-reset request event.
func (n *Notifier) PasswordReset(ctx context.Context, event PasswordResetEvent) error {
	return n.publish(ctx, ChannelPasswordReset, event)
}

// PasswordChanged publishes a password-changed event.
func (n *Notifier) PasswordChanged(ctx context.Context, event PasswordChangedEvent) error {
	return n.publish(ctx, ChannelPasswordChanged, event)
}

// NoticePublished publishes a notice announcement event.
func (n *Notifier) NoticePublished(ctx context.Context, event NoticeEvent) error {
	return n.publish(ctx, ChannelNoticePublished, event)
}

// Close closes the underlying publisher.
func (n *Notifier) Close() error {
	return n.publisher.Close()
}

func (n *Notifier) publish(ctx context.Context, channel string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = n.publisher.Publish(ctx, channel, data, map[string]string{
		"content-type": "application/json",
	})
	return err
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, []byte, map[string]string) (string, error) {
	return "", nil
}

func (noopPublisher) Close() error { return nil }
