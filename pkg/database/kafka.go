package database

import (
	"context"
	"fmt"
	"time"

	"farmlink_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewKafkaWriterWithRetry builds a writer for k.Topic and checks the brokers by dialing the topic leader
func NewKafkaWriterWithRetry(ctx context.Context, k KafkaConnection) (*kafka.Writer, error) {
	if len(k.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}

	var err error
	for attempt := 1; attempt <= max(k.RetryCount, 1); attempt++ {
		var conn *kafka.Conn
		conn, err = kafka.DialLeader(ctx, "tcp", k.Brokers[0], k.Topic, 0)
		if err == nil {
			_ = conn.Close()
			return &kafka.Writer{
				Addr:                   kafka.TCP(k.Brokers...),
				Topic:                  k.Topic,
				Balancer:               &kafka.Hash{},
				AllowAutoTopicCreation: true,
			}, nil
		}

		logger.Log.Warn("kafka dial failed, retrying...", zap.Int("attempt", attempt), zap.Strings("brokers", k.Brokers), zap.Error(err))
		time.Sleep(k.RetryInterval)
	}

	return nil, fmt.Errorf("kafka writer for %s not ready after %d attempts: %w", k.Topic, k.RetryCount, err)
}
