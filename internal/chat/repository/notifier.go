package repository

import (
	"context"
	"encoding/json"
	"errors"

	"farmlink_service/internal/chat/domain"
)

// UserChannelPrefix redis channel prefix of per-user notifications
const UserChannelPrefix = "chat:user:"

// Notifier delivers an out-of-band alert to one user
type Notifier interface {
	Notify(ctx context.Context, userID string, n domain.Notification) error
}

// UserChannel channel a user's sockets subscribe to
func UserChannel(userID string) string {
	return UserChannelPrefix + userID
}

// notificationEnvelope wire body shared by every driver
type notificationEnvelope struct {
	UserID string `json:"user_id"`
	domain.Notification
}

// DecodeNotification reads a broker body written by a Notifier
func DecodeNotification(body []byte) (string, domain.Notification, error) {
	var env notificationEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", domain.Notification{}, err
	}
	if env.UserID == "" {
		return "", domain.Notification{}, errors.New("notification without user_id")
	}
	return env.UserID, env.Notification, nil
}

// MultiNotifier fans out to every configured driver
type MultiNotifier []Notifier

// Notify tries every driver and joins their errors
func (m MultiNotifier) Notify(ctx context.Context, userID string, n domain.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, userID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopNotifier discards notifications
type NopNotifier struct{}

// Notify does nothing
func (NopNotifier) Notify(context.Context, string, domain.Notification) error { return nil }
