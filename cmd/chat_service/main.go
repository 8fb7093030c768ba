package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmlink_service/internal/chat/app"
	"farmlink_service/internal/chat/repository"
	"farmlink_service/internal/chat/router"
	memberrepo "farmlink_service/internal/member/repository"
	productrepo "farmlink_service/internal/product/repository"
	"farmlink_service/pkg/config"
	"farmlink_service/pkg/database"
	errprocess "farmlink_service/pkg/err"
	"farmlink_service/pkg/logger"
	"farmlink_service/pkg/middlewares"
	testtool "farmlink_service/pkg/test_tool"
	"farmlink_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

// @title						Farmlink Chat API
// @version					1.0
// @description				Buyer and seller conversations about farm waste listings
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
//
// swag init -g cmd/chat_service/main.go -o ./docs
func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()

	cfg, err := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	if err != nil {
		logger.Log.Fatal("load config", zap.Error(err))
	}
	logger.Log.SetDebugMode(!config.IsProduction())

	ctx := context.Background()
	testtool.StartPprof(":6060")

	// 1. Mongo (conversations, messages)
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: cfg.MongoSQL.RetryDelay(),
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("host", cfg.MongoSQL.Host),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	if err := repository.EnsureRoomIndexes(ctx, mongo.Database); err != nil {
		logger.Log.Fatal("ensure conversation indexes", zap.Error(err))
	}
	if err := repository.EnsureMessageIndexes(ctx, mongo.Database); err != nil {
		logger.Log.Fatal("ensure message indexes", zap.Error(err))
	}

	// 2. Redis (pub/sub)
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.Addr, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	defer redisClient.Close()

	// 3. PostgreSQL (member profiles through pgx, product listings through gorm)
	pgURL := database.PostgresURL(cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pgConn := database.Connection{
		ConnectStr:    pgURL,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: cfg.PostgreSQL.RetryDelay(),
	}
	pool, err := database.NewDatabaseConnection(pgConn)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("host", cfg.PostgreSQL.Host),
			zap.Error(err),
		)
	}
	defer pool.Close()

	gormDB, err := database.NewGormConnection(pgConn)
	if err != nil {
		logger.Log.Fatal("Unable to open gorm connection", zap.Error(err))
	}
	if err := productrepo.Migrate(gormDB); err != nil {
		logger.Log.Fatal("migrate products", zap.Error(err))
	}

	// 4. Repository
	roomRepo := repository.NewMongoChatRepository(mongo.Database)
	msgRepo := repository.NewMongoChatMessageRepository(mongo.Database)
	pubsub := repository.NewRedisPubSub(redisClient)
	profiles := repository.NewProfileRepository(memberrepo.NewMemberRepository(pool))
	products := productrepo.NewProductRepository(gormDB)

	notifier, closeNotifiers := buildNotifier(ctx, cfg.Notify, pubsub)
	defer closeNotifiers()

	// 5. UseCases
	tokens := token.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireMinutes)*time.Minute, config.EnvConfig.MemberService)
	sanitizer := app.NewParticipantSanitizer(tokens, cfg.Tuning.CredentialDecodeTimeout())
	authorizer := app.NewMembershipAuthorizer(roomRepo, sanitizer, profiles)
	roomUC := app.NewRoomUseCase(roomRepo, sanitizer, authorizer, profiles, products)
	msgUC := app.NewMessageUseCase(authorizer, roomRepo, msgRepo, notifier, cfg.Tuning.MaxMessageLength, cfg.Tuning.NotifyTimeout())

	// 6. Fiber
	r := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"code": errprocess.CodeInternal, "error": e.Message})
			}
			return middlewares.ErrorResponse(c, err)
		},
	})

	if err := os.MkdirAll(config.EnvConfig.ChatServiceLogPath, 0o755); err != nil {
		log.Fatalf("Failed to create log dir: %v", err)
	}
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, tokens, app.NewChatHandler(roomUC, msgUC), app.NewChatWebsocketHandler(msgUC, pubsub))

	go func() {
		port := ":" + cfg.Port
		logger.Log.Info(fmt.Sprintf("Chat Service listening on %s", port))
		if err := r.Listen(port); err != nil {
			logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Chat Service shutting down")
	if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.Error("fiber shutdown", zap.Error(err))
	}
	msgUC.Wait()
}

// buildNotifier fans notifications out to every configured driver, redis when none is set
func buildNotifier(ctx context.Context, cfg config.NotifyConfig, pubsub *repository.RedisPubSub) (repository.Notifier, func()) {
	var (
		notifiers repository.MultiNotifier
		closers   []func()
	)

	drivers := cfg.Drivers
	if len(drivers) == 0 {
		drivers = []string{"redis"}
	}

	for _, driver := range drivers {
		switch driver {
		case "redis":
			notifiers = append(notifiers, pubsub)
		case "rabbitmq":
			conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
				ConnectStr:    cfg.RabbitURL,
				RetryCount:    cfg.RetryCount,
				RetryInterval: cfg.RetryDelay(),
			})
			if err != nil {
				logger.Log.Fatal("connect rabbitmq", zap.Error(err))
			}
			ch, err := database.OpenQueueChannel(conn, cfg.RabbitQueue)
			if err != nil {
				logger.Log.Fatal("open rabbitmq channel", zap.Error(err))
			}
			notifiers = append(notifiers, repository.NewRabbitNotifier(ch, cfg.RabbitQueue))
			closers = append(closers, func() {
				_ = ch.Close()
				_ = conn.Close()
			})
		case "kafka":
			w, err := database.NewKafkaWriterWithRetry(ctx, database.KafkaConnection{
				Brokers:       cfg.KafkaBrokers,
				Topic:         cfg.KafkaTopic,
				RetryCount:    cfg.RetryCount,
				RetryInterval: cfg.RetryDelay(),
			})
			if err != nil {
				logger.Log.Fatal("connect kafka", zap.Error(err))
			}
			notifiers = append(notifiers, repository.NewKafkaNotifier(w))
			closers = append(closers, func() { _ = w.Close() })
		default:
			logger.Log.Warn("unknown notify driver", zap.String("driver", driver))
		}
	}

	return notifiers, func() {
		for _, c := range closers {
			c()
		}
	}
}
