package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chatrelaygo/internal/auth"
	"chatrelaygo/internal/config"
	"chatrelaygo/internal/database/db_client"
	"chatrelaygo/internal/http/chathandler"
	"chatrelaygo/internal/http/http_server"
	"chatrelaygo/internal/presence"
	"chatrelaygo/internal/redis/redis_client"
	"chatrelaygo/internal/services/chatroom"
	"chatrelaygo/internal/services/user"
	"chatrelaygo/internal/syncpresence"
	"chatrelaygo/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis (presence mirror)
	redisClient, err = redis_client.NewRedisClient(cfg.RedisPresenceHost, int(cfg.RedisPresencePort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres db client + schema
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()
	if err := db_client.EnsureSchema(ctx, pgDb); err != nil {
		Log.Fatal("pg-schema", zap.Error(err))
	}

	// 5. Services: users, chat rooms, tokens
	userService := user.NewUserService(pgDb, cfg.BcryptCost)
	roomService := chatroom.NewChatRoomService(pgDb)
	tokens := auth.NewTokenManager(cfg.JwtSecret)

	// 6. Presence store + background flush into the user store
	presenceStore := presence.NewStore(redisClient)
	syncpresence.Run(ctx, presenceStore, userService)

	// 7. WebSockets: hub, session manager, server
	hub := ws.NewHub()
	sessions := ws.NewSessionManager(hub, presenceStore)
	wsSrv := ws.NewWsServer(sessions, tokens, cfg.AllowedOrigin)

	// 8. HTTP + WS server
	handler := chathandler.New(userService, roomService, presenceStore, tokens)
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, cfg.AllowedOrigin, wsSrv, handler)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
