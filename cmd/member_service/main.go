package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmlink_service/internal/member/app"
	"farmlink_service/internal/member/domain"
	"farmlink_service/internal/member/repository"
	"farmlink_service/internal/member/router"
	"farmlink_service/pkg/config"
	"farmlink_service/pkg/database"
	"farmlink_service/pkg/logger"
	"farmlink_service/pkg/middlewares"
	testtool "farmlink_service/pkg/test_tool"
	"farmlink_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "member:session:"

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MemberService, config.EnvConfig.MemberServiceLogPath)
	defer logger.Log.Sync()

	cfg, err := config.LoadConfig[config.Member](config.EnvConfig.MemberService, config.EnvConfig.MemberServiceYAMLPath)
	if err != nil {
		logger.Log.Fatal("load config", zap.Error(err))
	}
	logger.Log.SetDebugMode(!config.IsProduction())

	ctx := context.Background()
	testtool.StartPprof(":6061")

	sqlParams := database.PostgresURL(cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    sqlParams,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: cfg.PostgreSQL.RetryDelay(),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("host", cfg.PostgreSQL.Host),
			zap.Error(err),
		)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		logger.Log.Fatal("migrate members", zap.Error(err))
	}

	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.RedisMember.Addr, cfg.RedisMember.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	defer redisClient.Close()

	tokens := token.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireMinutes)*time.Minute, config.EnvConfig.MemberService)
	usecase := app.NewMemberUseCase(
		repository.NewMemberRepository(pool),
		cfg.SessionTTL*time.Minute,
		database.NewRedisRepository[domain.MemberSession](redisClient, sessionKeyPrefix),
		tokens,
		nil,
	)

	r := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return middlewares.ErrorResponse(c, err)
		},
	})
	r.Use(fiber_log.New(fiber_log.Config{
		Output: os.Stdout,
	}))
	router.RegisterRoutes(r, app.NewMemberHandler(usecase), tokens)

	go func() {
		addr := cfg.IP + ":" + cfg.Port
		logger.Log.Info(fmt.Sprintf("MemberService listening on : %s", addr))
		if err := r.Listen(addr); err != nil {
			logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("MemberService shutting down")
	if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.Error("fiber shutdown", zap.Error(err))
	}
}
