package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"citysense-be/config"
	"citysense-be/controllers"
	"citysense-be/logger"
	"citysense-be/middlewares"
	"citysense-be/models"
	"citysense-be/repository"
	"citysense-be/routes"
	"citysense-be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init("citysense-be", !cfg.IsProduction())

	db := config.ConnectDB(cfg.MongoURI, cfg.MongoDB)
	log.Info().Str("database", cfg.MongoDB).Msg("MongoDB connection established")

	if err := models.EnsureVoteIndex(db.Collection("votes")); err != nil {
		log.Warn().Err(err).Msg("failed to ensure vote index")
	}

	issues := repository.NewIssueStore(db)
	users := repository.NewUserStore(db)
	mailer := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.AdminEmail)

	// Without Redis the daily issue limit is not enforced.
	limiter := passthrough()
	if cfg.RedisAddr != "" {
		redisClient, err := config.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		limiter = middlewares.IssueRateLimiter(redisClient, cfg.IssueLimitPrefix, cfg.DailyIssueLimit)
	} else {
		log.Warn().Msg("REDIS_ADDRESS not set, issue rate limiting disabled")
	}

	auth := middlewares.AuthMiddleware(cfg.JWTSecret)
	admin := middlewares.RequireAdmin(users)

	if !cfg.IsProduction() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.ErrorHandler(cfg.IsProduction()))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	r.GET("/health", healthCheck(db))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	routes.AuthRoutes(r, controllers.NewAuthController(users, cfg.JWTSecret), auth)
	routes.IssueRoutes(r, controllers.NewIssueController(issues, users, mailer), auth, admin, limiter)
	routes.AdminRoutes(r, controllers.NewAdminController(issues, users), auth, admin)
	routes.ExportRoutes(r, controllers.NewExportController(issues, users), auth, admin)

	if cfg.CloudinaryCloudName != "" {
		media, err := services.NewMediaService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure Cloudinary")
		}
		routes.MediaRoutes(r, controllers.NewMediaController(media), auth)
	} else {
		log.Warn().Msg("CLOUDINARY_CLOUD_NAME not set, media routes disabled")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

// healthCheck writes and removes a probe document so failures in the
// datastore surface as 503 instead of a healthy response.
func healthCheck(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		probe := db.Collection("health-check")
		res, err := probe.InsertOne(ctx, bson.M{"ts": time.Now()})
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		if _, err := probe.DeleteOne(ctx, bson.M{"_id": res.InsertedID}); err != nil {
			log.Warn().Err(err).Msg("failed to remove health probe document")
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func corsConfig(allowedOrigins string) cors.Config {
	conf := cors.DefaultConfig()
	conf.AllowHeaders = append(conf.AllowHeaders, "Authorization")
	if allowedOrigins == "*" {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = strings.Split(allowedOrigins, ",")
	}
	return conf
}

func passthrough() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}
