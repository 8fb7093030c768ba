package repository

import (
	"context"
	"encoding/json"
	"sync"

	"farmlink_service/internal/chat/domain"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

// AMQPPublisher subset of *amqp.Channel used for publishing
type AMQPPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitNotifier pushes notifications to a durable queue consumed by the push gateway
type RabbitNotifier struct {
	mu    sync.Mutex
	ch    AMQPPublisher
	queue string
}

// NewRabbitNotifier create RabbitNotifier on an already declared queue
func NewRabbitNotifier(ch AMQPPublisher, queue string) *RabbitNotifier {
	return &RabbitNotifier{ch: ch, queue: queue}
}

// Notify publishes a persistent message, ctx is only checked before publishing
func (r *RabbitNotifier) Notify(ctx context.Context, userID string, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(notificationEnvelope{UserID: userID, Notification: n})
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.ch.Publish("", r.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	return errors.Wrap(err, "rabbitmq notify")
}
