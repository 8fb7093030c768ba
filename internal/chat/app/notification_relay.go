package app

import (
	"context"
	"time"

	"farmlink_service/internal/chat/repository"
	"farmlink_service/pkg/logger"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// AMQPConsumer subset of *amqp.Channel used for consuming
type AMQPConsumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// NotificationRelay drains the broker queue into a Notifier, usually the redis channels live sockets listen on
type NotificationRelay struct {
	source     AMQPConsumer
	queue      string
	sink       repository.Notifier
	retryDelay time.Duration
}

// NewNotificationRelay retryDelay is waited before a failed delivery is requeued
func NewNotificationRelay(source AMQPConsumer, queue string, sink repository.Notifier, retryDelay time.Duration) *NotificationRelay {
	return &NotificationRelay{
		source:     source,
		queue:      queue,
		sink:       sink,
		retryDelay: retryDelay,
	}
}

// Run consumes with manual ack until ctx is done or the broker closes the channel
func (r *NotificationRelay) Run(ctx context.Context) error {
	deliveries, err := r.source.Consume(r.queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "consume "+r.queue)
	}

	logger.Log.Info("notification relay started", zap.String("queue", r.queue))
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				logger.Log.Warn("notification delivery channel closed", zap.String("queue", r.queue))
				return nil
			}
			r.handle(ctx, d)
		case <-ctx.Done():
			logger.Log.Info("notification relay stopped", zap.String("queue", r.queue))
			return nil
		}
	}
}

func (r *NotificationRelay) handle(ctx context.Context, d amqp.Delivery) {
	userID, n, err := repository.DecodeNotification(d.Body)
	if err != nil {
		// undecodable bodies never succeed, drop them
		logger.Log.Errorf("drop malformed notification", err, zap.Uint64("delivery_tag", d.DeliveryTag))
		if err := d.Nack(false, false); err != nil {
			logger.Log.Errorf("nack notification", err)
		}
		return
	}

	if err := r.sink.Notify(ctx, userID, n); err != nil {
		logger.Log.Errorf("relay notification", err, zap.String("user_id", userID))
		select {
		case <-time.After(r.retryDelay):
		case <-ctx.Done():
		}
		if err := d.Nack(false, true); err != nil {
			logger.Log.Errorf("nack notification", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		logger.Log.Errorf("ack notification", err)
	}
}
