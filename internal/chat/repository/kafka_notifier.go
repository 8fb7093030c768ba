package repository

import (
	"context"
	"encoding/json"

	"farmlink_service/internal/chat/domain"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter subset of *kafka.Writer
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier writes notifications keyed by user so one user's alerts stay ordered
type KafkaNotifier struct {
	w KafkaWriter
}

// NewKafkaNotifier create KafkaNotifier
func NewKafkaNotifier(w KafkaWriter) *KafkaNotifier {
	return &KafkaNotifier{w: w}
}

// Notify writes one record
func (k *KafkaNotifier) Notify(ctx context.Context, userID string, n domain.Notification) error {
	value, err := json.Marshal(notificationEnvelope{UserID: userID, Notification: n})
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}
	err = k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(userID),
		Value: value,
	})
	return errors.Wrap(err, "kafka notify")
}
