// Package main runs the lunch ordering HTTP server with the live board
// WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/office-lunch/backend/config"
	"github.com/office-lunch/backend/internal/auth"
	"github.com/office-lunch/backend/internal/middleware"
	"github.com/office-lunch/backend/internal/optin"
	"github.com/office-lunch/backend/internal/orders"
	"github.com/office-lunch/backend/internal/organizations"
	"github.com/office-lunch/backend/internal/realtime"
	"github.com/office-lunch/backend/internal/restaurants"
	"github.com/office-lunch/backend/internal/tokens"
	"github.com/office-lunch/backend/internal/users"
	"github.com/office-lunch/backend/pkg/crypto"
	"github.com/office-lunch/backend/pkg/database"
	"github.com/office-lunch/backend/pkg/queue"
	"github.com/office-lunch/backend/pkg/redis"
	"github.com/office-lunch/backend/pkg/response"
	"github.com/office-lunch/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			LogoBucket:           cfg.AWS.LogoBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		logger.Fatal("timezone", zap.Error(err), zap.String("tz", cfg.App.Timezone))
	}

	enc, err := crypto.NewEncryptor(cfg.Token.EncryptionKey)
	if err != nil {
		logger.Fatal("encryptor", zap.Error(err))
	}
	if !enc.Enabled() {
		logger.Warn("token reveal disabled (TOKEN_ENCRYPTION_KEY not set)")
	}

	// Live board
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth
	authRepo := auth.NewRepository(pool)

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgSvc := organizations.NewService(orgRepo)
	orgHandler := organizations.NewHandler(orgSvc, orgRepo, authRepo, s3Client, logger)

	// API tokens
	tokenRepo := tokens.NewRepository(pool)
	tokenSvc := tokens.NewService(tokenRepo, enc, cfg.Token.Prefix)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	tokenHandler := tokens.NewHandler(tokenSvc, jobQueue, logger)

	// Opt-ins
	optinRepo := optin.NewRepository(pool)
	optinSvc := optin.NewService(optinRepo, orgSvc, hub, loc)
	optinHandler := optin.NewHandler(optinSvc, logger)

	// Orders
	orderRepo := orders.NewRepository(pool)
	orderSvc := orders.NewService(orderRepo)
	orderHandler := orders.NewHandler(orderSvc, logger)

	// Restaurants
	restaurantRepo := restaurants.NewRepository(pool)
	restaurantHandler := restaurants.NewHandler(restaurantRepo, logger)

	// Users (admin provisioning)
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo, orgSvc)
	userHandler := users.NewHandler(userSvc, logger)

	// Board access: same credentials as the API, boards limited to
	// administered organizations.
	wsAuthorize := func(ctx context.Context, token string) (uuid.UUID, []uuid.UUID, error) {
		var userID uuid.UUID
		if strings.HasPrefix(token, tokenSvc.Prefix()) {
			id, err := tokenSvc.Validate(ctx, token)
			if err != nil {
				return uuid.Nil, nil, err
			}
			userID = id
		} else {
			session, err := authRepo.GetSessionByToken(ctx, token)
			if err != nil {
				return uuid.Nil, nil, err
			}
			userID = session.UserID
		}
		user, err := authRepo.GetUserByID(ctx, userID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		if user.BanActive(time.Now()) {
			return uuid.Nil, nil, auth.ErrUserNotFound
		}
		orgIDs, err := orgRepo.ListAdministeredOrgIDs(ctx, userID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		return userID, orgIDs, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			response.ServiceUnavailable(c, "database unreachable")
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})

	// Authenticated API (session cookie or API token)
	api := router.Group("/api")
	api.Use(middleware.Authenticate(authRepo, tokenSvc, logger))
	api.Use(middleware.AutoJoin(orgSvc, logger))
	api.Use(middleware.OrgContext(orgSvc, authRepo, logger))
	{
		// Organizations
		api.GET("/organizations", orgHandler.ListMine)
		api.POST("/organization/switch", orgHandler.Switch)

		// Restaurants (reads for members, writes for active-org admins)
		api.GET("/restaurants", restaurantHandler.List)
		activeAdmin := middleware.RequireActiveOrgAdmin(orgSvc, logger)
		api.POST("/restaurants", activeAdmin, restaurantHandler.Create)
		api.PATCH("/restaurants/:id", activeAdmin, restaurantHandler.Update)
		api.DELETE("/restaurants/:id", activeAdmin, restaurantHandler.Delete)

		// Orders (self service)
		api.GET("/orders", orderHandler.List)
		api.POST("/orders", orderHandler.Create)
		api.DELETE("/orders", orderHandler.Delete)

		// Opt-in (token-friendly variant plus the link-friendly one)
		api.GET("/v1/opt-in", optinHandler.Status)
		api.POST("/v1/opt-in", optinHandler.Toggle)
		api.GET("/opt-in", optinHandler.ToggleQuery)

		// Personal API tokens
		api.GET("/tokens", tokenHandler.List)
		api.POST("/tokens", tokenHandler.Create)
		api.DELETE("/tokens", tokenHandler.DeleteAll)
		api.DELETE("/tokens/:id", tokenHandler.Delete)
		api.GET("/tokens/:id/reveal", tokenHandler.Reveal)

		// Admin: orders (active-org scope)
		admin := api.Group("/admin")
		anyAdmin := middleware.RequireAnyOrgAdmin(orgSvc, logger)
		admin.GET("/orders", activeAdmin, orderHandler.AdminList)
		admin.POST("/orders", activeAdmin, orderHandler.AdminCreate)
		admin.PATCH("/orders/:id", activeAdmin, orderHandler.AdminUpdate)
		admin.DELETE("/orders/:id", activeAdmin, orderHandler.AdminDelete)
		admin.GET("/user-orders", anyAdmin, orderHandler.UserOrders)

		// Admin: attendance reports (administered-orgs scope)
		admin.GET("/opt-ins", anyAdmin, optinHandler.AdminList)
		admin.POST("/opt-ins", anyAdmin, optinHandler.AdminToggle)
		admin.GET("/opt-outs", anyAdmin, optinHandler.AdminListOptOuts)

		// Admin: user provisioning (shared-orgs scope)
		admin.GET("/users", anyAdmin, userHandler.List)
		admin.POST("/users", activeAdmin, userHandler.Create)
		admin.PATCH("/users/:id", anyAdmin, userHandler.Update)
		admin.DELETE("/users/:id", anyAdmin, userHandler.Delete)

		// Admin: organizations
		admin.GET("/organizations", middleware.RequireSystemAdmin(), orgHandler.ListAll)
		admin.PATCH("/organizations/:id/settings", orgHandler.UpdateSettings)
		admin.POST("/organizations/:id/logo", orgHandler.UploadLogo)

		// Admin: maintenance
		admin.POST("/tokens/sweep", middleware.RequireSystemAdmin(), tokenHandler.Sweep)
	}

	// WebSocket live board (token in query; no Authorization header on
	// browser upgrades)
	router.GET("/ws", realtime.ServeWs(hub, logger, wsAuthorize))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
