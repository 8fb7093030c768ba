package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"farmlink_service/internal/chat/app"
	"farmlink_service/internal/chat/repository"
	"farmlink_service/pkg/config"
	"farmlink_service/pkg/database"
	"farmlink_service/pkg/logger"

	"go.uber.org/zap"
)

// notify_worker relays notifications the chat service queued on rabbitmq to the redis channels of live sockets
func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService+"_notify", config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()

	cfg, err := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	if err != nil {
		logger.Log.Fatal("load config", zap.Error(err))
	}

	conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    cfg.Notify.RabbitURL,
		RetryCount:    cfg.Notify.RetryCount,
		RetryInterval: cfg.Notify.RetryDelay(),
	})
	if err != nil {
		logger.Log.Fatal("connect rabbitmq", zap.Error(err))
	}
	defer conn.Close()

	ch, err := database.OpenQueueChannel(conn, cfg.Notify.RabbitQueue)
	if err != nil {
		logger.Log.Fatal("open rabbitmq channel", zap.Error(err))
	}
	defer ch.Close()

	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.Addr, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay := app.NewNotificationRelay(ch, cfg.Notify.RabbitQueue, repository.NewRedisPubSub(redisClient), cfg.Notify.RetryDelay())
	if err := relay.Run(ctx); err != nil {
		logger.Log.Error("notification relay", zap.Error(err))
	}
}
