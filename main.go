package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-backend/cacheutils"
	"github.com/taskflow/taskflow-backend/common"
	"github.com/taskflow/taskflow-backend/config"
	"github.com/taskflow/taskflow-backend/db"
	"github.com/taskflow/taskflow-backend/handlers"
	"github.com/taskflow/taskflow-backend/logger"
	"github.com/taskflow/taskflow-backend/oauth"
	"github.com/taskflow/taskflow-backend/routes"
	"github.com/taskflow/taskflow-backend/store"
	"github.com/taskflow/taskflow-backend/token"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	// Create a new context with a timeout for connecting to the backing stores
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = logger.WithLogger(ctx, log)

	cfg, err := config.Load()
	common.FailOnError(ctx, "failed to load configuration", err)

	// connect to mongo db
	client, err := db.Connect(ctx, cfg.MongoURI)
	common.FailOnError(ctx, "failed to connect to mongo", err)

	database := client.Database(cfg.MongoDatabase)
	usersCollection := database.Collection("users")
	tasksCollection := database.Collection("tasks")
	common.FailOnError(ctx, "failed to ensure indexes", db.EnsureIndexes(ctx, usersCollection))

	// connect to redis for the oauth state store
	redisClient, err := cacheutils.Connect(ctx, cfg.RedisURL)
	common.FailOnError(ctx, "failed to connect to redis", err)

	userStore := store.NewMongoUserStore(usersCollection)
	taskStore := store.NewMongoTaskStore(tasksCollection)

	tokenService := token.NewService(cfg.JWTSecret)
	gate := handlers.NewAuthGate(tokenService, userStore)

	providers := []oauth.Provider{
		oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.CallbackURL("google")),
		oauth.NewGithubProvider(cfg.GithubClientID, cfg.GithubClientSecret, cfg.CallbackURL("github")),
	}
	adapter := oauth.NewAdapter(userStore)
	states := cacheutils.NewStateStore(redisClient)

	authHandler := handlers.NewAuthHandler(userStore, tokenService)
	usersHandler := handlers.NewUsersHandler(userStore, tokenService)
	tasksHandler := handlers.NewTasksHandler(taskStore)
	oauthHandler := handlers.NewOAuthHandler(providers, adapter, tokenService, states, cfg.FrontendURL)

	// Ensure clean up during shutdown
	go handleShutdown(cancel, client)

	router := setupRouter(cfg, log, gate, authHandler, usersHandler, tasksHandler, oauthHandler)

	startServer(ctx, cfg, router)
}

func setupRouter(
	cfg *config.Config,
	log *zap.Logger,
	gate *handlers.AuthGate,
	authHandler *handlers.AuthHandler,
	usersHandler *handlers.UsersHandler,
	tasksHandler *handlers.TasksHandler,
	oauthHandler *handlers.OAuthHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handlers.RequestID(log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(router, cfg.Env, gate, authHandler, usersHandler, tasksHandler, oauthHandler)

	return router
}

func startServer(ctx context.Context, cfg *config.Config, router *gin.Engine) {
	log := logger.FromCtx(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		err := srv.ListenAndServe()
		common.FailIfServerErrored(ctx, "server stopped unexpectedly", err)
	}()

	// Wait for interrupt signal to gracefully shut down the server with a timeout of 10 seconds
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	common.FailOnError(ctx, "server forced to shutdown", srv.Shutdown(shutdownCtx))
	log.Info("server exiting")
}

func handleShutdown(cancel context.CancelFunc, client *mongo.Client) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	// Cancel the context to stop ongoing requests
	cancel()

	// Disconnect from MongoDB
	if err := client.Disconnect(context.Background()); err != nil {
		logger.GetLogger().Error("error while disconnecting mongo", zap.Error(err))
		return
	}

	logger.GetLogger().Info("disconnected from mongo")
}
