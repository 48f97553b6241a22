// Package main runs the question board HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vidya-vichar/backend/config"
	"github.com/vidya-vichar/backend/internal/auth"
	"github.com/vidya-vichar/backend/internal/courses"
	"github.com/vidya-vichar/backend/internal/emaillogs"
	"github.com/vidya-vichar/backend/internal/middleware"
	"github.com/vidya-vichar/backend/internal/models"
	"github.com/vidya-vichar/backend/internal/questions"
	"github.com/vidya-vichar/backend/pkg/database"
	"github.com/vidya-vichar/backend/pkg/queue"
	"github.com/vidya-vichar/backend/pkg/redis"
	"github.com/vidya-vichar/backend/pkg/response"
	"github.com/vidya-vichar/backend/pkg/storage"
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
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			RostersBucket:   cfg.AWS.RostersBucket,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
			s3Client = nil
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	otpStore := auth.NewOTPStore(rdb.Client, time.Duration(cfg.OTP.TTLMinutes)*time.Minute)

	// Identity
	authRepo := auth.NewRepository(pool)
	emailLogRepo := emaillogs.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, otpStore, jobQueue, emailLogRepo, logger)
	emailLogHandler := emaillogs.NewHandler(emailLogRepo)

	// Course roster
	courseRepo := courses.NewRepository(pool)
	courseService := courses.NewService(courseRepo, authRepo, logger)
	rosterImporter := courses.NewImporter(courseRepo, logger)
	courseHandler := courses.NewHandler(courseService, rosterImporter, s3Client, logger)

	// Question board
	questionRepo := questions.NewRepository(pool)
	questionService := questions.NewService(questionRepo, courseService, authRepo, logger)
	questionHandler := questions.NewHandler(questionService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/otp", authHandler.RequestOTP)
		authGroup.POST("/otp/verify", authHandler.VerifyOTP)
		authGroup.POST("/password/forgot", authHandler.ForgotPassword)
		authGroup.POST("/password/reset", authHandler.ResetPassword)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Course listings per role
		api.GET("/courses/student", middleware.RequireRole(string(models.RoleStudent)), courseHandler.ListForStudent)
		api.GET("/courses/instructor", middleware.RequireRole(string(models.RoleInstructor)), courseHandler.ListForInstructor)
		api.GET("/courses/ta", middleware.RequireRole(string(models.RoleTA)), courseHandler.ListForTA)

		// Question board
		api.POST("/questions", middleware.RequireRole(string(models.RoleStudent)), questionHandler.Submit)
		api.GET("/questions/instructor", middleware.RequireRole(string(models.RoleInstructor)), questionHandler.InstructorBoard)
		api.GET("/questions/ta", middleware.RequireRole(string(models.RoleTA)), questionHandler.TABoard)
		api.GET("/questions/student", middleware.RequireRole(string(models.RoleStudent)), questionHandler.StudentBoard)
		api.PATCH("/questions/:id/answer", middleware.RequireRole(string(models.RoleInstructor), string(models.RoleTA)), questionHandler.Answer)
		api.POST("/sessions/end", middleware.RequireRole(string(models.RoleInstructor)), questionHandler.EndSession)

		// Admin: roster bulk import and email audit
		api.POST("/admin/rosters/:kind", middleware.RequireRole(string(models.RoleAdmin)), courseHandler.ImportRoster)
		api.GET("/admin/email-logs", middleware.RequireRole(string(models.RoleAdmin)), emailLogHandler.List)
	}

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
