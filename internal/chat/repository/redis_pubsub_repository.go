package repository

import (
	"context"
	"encoding/json"

	"farmlink_service/internal/chat/domain"
	"farmlink_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
	}
}

// Publish serializes message and publishes it to channel
func (r *RedisPubSub) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "marshal pubsub message")
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Notify publishes n on the user's channel
func (r *RedisPubSub) Notify(ctx context.Context, userID string, n domain.Notification) error {
	err := r.Publish(ctx, UserChannel(userID), notificationEnvelope{UserID: userID, Notification: n})
	return errors.Wrap(err, "redis notify")
}

// Subscribe listens on channel until ctx is done, handler gets every notification as a websocket push
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return errors.Wrap(err, "redis subscribe")
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var env notificationEnvelope
				if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
					logger.Log.Errorf("failed to unmarshal notification", err, zap.String("channel", channel))
					continue
				}
				handler(NotificationResponse(env.Notification))
			case <-ctx.Done():
				logger.Log.Debug("subscription closed", zap.String("channel", channel))
				return
			}
		}
	}()
	return nil
}

// NotificationResponse websocket push for a notification
func NotificationResponse(n domain.Notification) domain.WSResponse {
	payload := map[string]interface{}{
		"title": n.Title,
		"body":  n.Body,
	}
	for k, v := range n.Data {
		payload[k] = v
	}
	return domain.WSResponse{
		Action:  string(domain.NotifyMessage),
		Success: true,
		Payload: payload,
	}
}
