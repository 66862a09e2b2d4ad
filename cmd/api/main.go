package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mnaeem99/econceptions-assignment/internal/auth"
	"github.com/mnaeem99/econceptions-assignment/internal/config"
	"github.com/mnaeem99/econceptions-assignment/internal/handlers"
	"github.com/mnaeem99/econceptions-assignment/internal/middleware"
	"github.com/mnaeem99/econceptions-assignment/internal/repository"
	"github.com/mnaeem99/econceptions-assignment/internal/services"
	"github.com/mnaeem99/econceptions-assignment/pkg/cache"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
	"github.com/mnaeem99/econceptions-assignment/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level)
	logger.Info("Starting social API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	producer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.SocialEvents)
	defer producer.Close()

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireTime)

	authService := services.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost, producer, logger)
	userService := services.NewUserService(userRepo, followRepo, producer, logger)

	var postService services.PostOperations = services.NewPostService(postRepo, commentRepo, likeRepo, userRepo, producer, logger)
	if cfg.Cache.Enabled {
		postCache := services.NewRedisPostCache(redisClient, cfg.Cache.TTL)
		postService = services.NewCachedPostService(postService, postCache, logger)
	}

	userHandler := handlers.NewUserHandler(authService, userService)
	postHandler := handlers.NewPostHandler(postService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	authRequired := middleware.NewJWTAuth(tokens)

	users := router.Group("/users")
	{
		users.POST("/register", userHandler.Register)
		users.POST("/login", userHandler.Login)
		users.POST("/search", userHandler.SearchUsers)
		users.GET("/:id", userHandler.GetUser)
		users.GET("/:id/followers", userHandler.GetFollowers)
		users.GET("/:id/following", userHandler.GetFollowing)
		users.POST("/:id/follow", authRequired, userHandler.Follow)
	}

	posts := router.Group("/posts")
	{
		posts.GET("", postHandler.ListPosts)
		posts.GET("/:id", postHandler.GetPost)
		posts.POST("/search", postHandler.SearchPosts)
		posts.POST("", authRequired, postHandler.CreatePost)
		posts.PUT("/:id", authRequired, postHandler.UpdatePost)
		posts.DELETE("/:id", authRequired, postHandler.DeletePost)
		posts.POST("/:id/comments", authRequired, postHandler.AddComment)
		posts.POST("/:id/like", authRequired, postHandler.LikePost)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	if err := os.MkdirAll("configs", 0755); err != nil {
		log.Printf("Failed to create configs directory: %v", err)
	}

	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "socialuser"
  password: "socialpass"
  dbname: "socialapp"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    social_events: "social-events"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

auth:
  bcrypt_cost: 10

cache:
  enabled: true
  ttl: 10m

log:
  level: "info"`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
